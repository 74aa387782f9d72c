package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/kcurves/infra/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`
name: cli
verbose: true
data:
  save: true
  train: {num_samples: 20, path: %[1]s/train/}
  test: {num_samples: 10, path: %[1]s/test/}
  plots: {path: %[1]s/logs/}
clusters: {num_centers: 2, center_box: [-10, 10], cluster_std: 0.5, dim: 3}
`, dir)), 0644))

	require.NoError(t, run(path))
	_, err := os.Stat(filepath.Join(dir, "train", "X_train_raw.npy"))
	assert.NoError(t, err)
}

func TestRun_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: spirals"), 0644))

	err := run(path)
	assert.True(t, errors.Is(err, config.ErrInvalid))

	err = run(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
