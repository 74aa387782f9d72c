package storage

import "fmt"

// VoidRegistry is a dummy registry which ignores all calls
type VoidRegistry struct {
}

// NewVoidRegistry creates a new noop registry
func NewVoidRegistry() *VoidRegistry {
	return &VoidRegistry{}
}

func (v VoidRegistry) Put(key K, value interface{}) error {
	return nil
}

func (v VoidRegistry) Get(key K, value interface{}) error {
	return fmt.Errorf("not found '%v': %w", key, NotFoundErr)
}
