package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// XZ is the extension of compressed files.
const XZ = ".xz"

// MkDir makes sure the given directory exists.
func MkDir(filePath string) error {
	// check if filepath exists
	info, err := os.Stat(filePath)
	if err != nil {
		err := os.MkdirAll(filePath, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not make dir: %s: %w", filePath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path given is not a directory: %s", filePath)
	}
	return nil
}

type writer struct {
	io.Writer
	closers []io.Closer
}

func (w *writer) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Create creates the file for the given path and extension, making the parent directory if needed.
// Compressed files get the additional xz extension.
func Create(path string, ext string, compress bool) (io.WriteCloser, string, error) {
	if err := MkDir(filepath.Dir(path)); err != nil {
		return nil, "", err
	}

	p := path + ext
	if compress {
		p += XZ
	}
	f, err := os.Create(p)
	if err != nil {
		return nil, "", fmt.Errorf("could not create file '%s': %w", p, err)
	}
	if !compress {
		return f, p, nil
	}

	xw, err := xz.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("could not create xz writer for '%s': %w", p, err)
	}
	// the xz stream must be closed before the file
	return &writer{Writer: xw, closers: []io.Closer{xw, f}}, p, nil
}

type reader struct {
	io.Reader
	f *os.File
}

func (r *reader) Close() error {
	return r.f.Close()
}

// Open opens the file for the given path and extension.
// If only the compressed version exists, it is transparently decompressed.
func Open(path string, ext string) (io.ReadCloser, string, error) {
	p := path + ext
	f, err := os.Open(p)
	if err == nil {
		return f, p, nil
	}
	if !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("could not open file '%s': %w", p, err)
	}

	p += XZ
	f, err = os.Open(p)
	if err != nil {
		return nil, "", fmt.Errorf("could not open file '%s': %w", strings.TrimSuffix(p, XZ), err)
	}
	xr, err := xz.NewReader(f)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("could not create xz reader for '%s': %w", p, err)
	}
	return &reader{Reader: xr, f: f}, p, nil
}
