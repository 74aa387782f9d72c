package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/drakos74/kcurves/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summary struct {
	Name string `json:"name"`
	Seed int64  `json:"seed"`
}

func TestRegistry(t *testing.T) {
	registry, err := NewRegistry(filepath.Join(t.TempDir(), "db", "runs.db"))
	require.NoError(t, err)
	defer registry.Close()

	k1 := storage.K{Run: "run-1", Label: "summary"}
	k2 := storage.K{Run: "run-2", Label: "summary"}

	require.NoError(t, registry.Put(k1, summary{Name: "blobs", Seed: 1}))
	require.NoError(t, registry.Put(k2, summary{Name: "sinusoids", Seed: 2}))
	// overwrite
	require.NoError(t, registry.Put(k1, summary{Name: "blobs", Seed: 3}))

	var s summary
	require.NoError(t, registry.Get(k1, &s))
	assert.Equal(t, summary{Name: "blobs", Seed: 3}, s)

	runs, err := registry.Runs("summary")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"run-1", "run-2"}, runs)

	err = registry.Get(storage.K{Run: "run-3", Label: "summary"}, &s)
	assert.True(t, errors.Is(err, storage.NotFoundErr))
}

func TestVoidRegistry(t *testing.T) {
	registry := storage.NewVoidRegistry()
	assert.NoError(t, registry.Put(storage.K{Run: "r"}, 1))
	var v int
	assert.True(t, errors.Is(registry.Get(storage.K{Run: "r"}, &v), storage.NotFoundErr))
}
