package json

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/kcurves/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

type Event struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

func TestBlobStorage(t *testing.T) {

	type test struct {
		storage *BlobStorage
		file    string
	}

	tests := map[string]test{
		"plain": {
			storage: NewJsonBlob(false, false),
			file:    "X.json",
		},
		"indented": {
			storage: NewJsonBlob(false, true).Indented(),
			file:    "X.json",
		},
		"xz": {
			storage: NewJsonBlob(true, false),
			file:    "X.json.xz",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			k := storage.Key{Dir: dir, Label: "X"}

			x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
			require.NoError(t, tt.storage.Store(k, x))
			_, err := os.Stat(filepath.Join(dir, tt.file))
			require.NoError(t, err)

			var loaded mat.Dense
			require.NoError(t, tt.storage.Load(k, &loaded))
			assert.True(t, mat.Equal(x, &loaded))

			ev := storage.Key{Dir: dir, Label: "event"}
			require.NoError(t, tt.storage.Store(ev, Event{Name: "test", Index: 3}))
			var event Event
			require.NoError(t, tt.storage.Load(ev, &event))
			assert.Equal(t, Event{Name: "test", Index: 3}, event)
		})
	}
}

func TestBlobStorage_NotFound(t *testing.T) {
	var event Event
	err := NewJsonBlob(false, false).Load(storage.Key{Dir: t.TempDir(), Label: "none"}, &event)
	assert.True(t, errors.Is(err, storage.NotFoundErr))
}
