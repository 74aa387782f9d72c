package npy

import (
	"bufio"
	"fmt"

	"github.com/drakos74/kcurves/internal/storage"
	"github.com/drakos74/kcurves/internal/storage/file"
	"github.com/rs/zerolog/log"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

const (
	ext = ".npy"

	int64Descr = "<i8"
)

// Storage persists matrices and label vectors as numpy arrays.
type Storage struct {
	compress bool
	debug    bool
}

// NewStorage creates a new numpy array storage.
func NewStorage(compress, debug bool) *Storage {
	return &Storage{
		compress: compress,
		debug:    debug,
	}
}

// Store writes *mat.Dense as a 2-d float64 array, []float64 and []int as 1-d arrays.
func (s *Storage) Store(k storage.Key, value interface{}) error {
	var shape []int
	switch v := value.(type) {
	case *mat.Dense:
		r, c := v.Dims()
		shape = []int{r, c}
	case []float64:
		shape = []int{len(v)}
	case []int:
		ii := make([]int64, len(v))
		for i, n := range v {
			ii[i] = int64(n)
		}
		value = ii
		shape = []int{len(v)}
	default:
		return fmt.Errorf("could not store %T for '%v': %w", value, k, storage.UnsupportedErr)
	}

	f, p, err := file.Create(k.Path(), ext, s.compress)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := npyio.Write(w, value); err != nil {
		f.Close()
		return fmt.Errorf("could not write '%s': %w", p, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("could not flush '%s': %w", p, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close '%s': %w", p, err)
	}
	if s.debug {
		log.Info().Str("file", p).Ints("shape", shape).Msg("stored array")
	}
	return nil
}

// Load reads an array into *mat.Dense, *[]float64 or *[]int.
// Integer arrays can be read as floats, the way numpy casts them.
func (s *Storage) Load(k storage.Key, value interface{}) error {
	f, p, err := file.Open(k.Path(), ext)
	if err != nil {
		return fmt.Errorf("could not load '%v': %s: %w", k, err.Error(), storage.NotFoundErr)
	}
	defer f.Close()

	r, err := npyio.NewReader(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("could not read header of '%s': %s: %w", p, err.Error(), storage.CouldNotLoadErr)
	}
	descr := r.Header.Descr

	switch v := value.(type) {
	case *mat.Dense:
		if len(descr.Shape) != 2 {
			return fmt.Errorf("expected a 2-d array in '%s', got %v: %w", p, descr.Shape, storage.CouldNotLoadErr)
		}
		if err := r.Read(v); err != nil {
			return fmt.Errorf("could not read '%s': %s: %w", p, err.Error(), storage.CouldNotLoadErr)
		}
	case *[]float64:
		if descr.Type != int64Descr {
			if err := r.Read(v); err != nil {
				return fmt.Errorf("could not read '%s': %s: %w", p, err.Error(), storage.CouldNotLoadErr)
			}
			return nil
		}
		ii, err := readInts(r, p)
		if err != nil {
			return err
		}
		ff := make([]float64, len(ii))
		for i, n := range ii {
			ff[i] = float64(n)
		}
		*v = ff
	case *[]int:
		if descr.Type != int64Descr {
			return fmt.Errorf("expected '%s' in '%s', got '%s': %w", int64Descr, p, descr.Type, storage.CouldNotLoadErr)
		}
		ii, err := readInts(r, p)
		if err != nil {
			return err
		}
		out := make([]int, len(ii))
		for i, n := range ii {
			out[i] = int(n)
		}
		*v = out
	default:
		return fmt.Errorf("could not load into %T for '%v': %w", value, k, storage.UnsupportedErr)
	}
	return nil
}

func readInts(r *npyio.Reader, p string) ([]int64, error) {
	var ii []int64
	if err := r.Read(&ii); err != nil {
		return nil, fmt.Errorf("could not read '%s': %s: %w", p, err.Error(), storage.CouldNotLoadErr)
	}
	return ii, nil
}
