package storage

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
	UnsupportedErr  = errors.New("unsupported value")
)

// Format is the on-disk encoding of the stored arrays.
type Format string

const (
	NPY  Format = "npy"
	JSON Format = "json"
)

// Key is the storage key for an array.
type Key struct {
	Dir   string `json:"dir"`
	Label string `json:"label"`
}

// Path returns the file path of the key, without extension.
func (k Key) Path() string {
	return filepath.Join(k.Dir, k.Label)
}

func (k Key) String() string {
	return fmt.Sprintf("%s[%s]", k.Label, k.Dir)
}

// K is a simplified key for the registry
type K struct {
	Run   string `json:"run"`
	Label string `json:"label"`
}

// Persistence stores and loads values for a key.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}

// Registry keeps track of values across runs.
type Registry interface {
	Put(key K, value interface{}) error
	Get(key K, value interface{}) error
}
