package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_WriteTo(t *testing.T) {
	m := New("run-id", "blobs")
	m.Observe("train", "raw", 100)
	m.Observe("train", "raw", 20)
	m.Observe("test", "raw", 50)
	m.Retries.Set(2)
	m.Iterations.WithLabelValues("train", "low").Set(7)
	m.Accuracy.Set(0.98)

	assert.Equal(t, 120.0, testutil.ToFloat64(m.Samples.WithLabelValues("train", "raw")))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.Samples.WithLabelValues("test", "raw")))

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, m.WriteTo(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)
	assert.Contains(t, text, `synth_samples_total{mode="blobs",run="run-id",split="train",stage="raw"} 120`)
	assert.Contains(t, text, `synth_center_retries{mode="blobs",run="run-id"} 2`)
	assert.Contains(t, text, `synth_kmeans_iterations{mode="blobs",run="run-id",space="low",split="train"} 7`)
	assert.Contains(t, text, `synth_validation_accuracy{mode="blobs",run="run-id"} 0.98`)
}

func TestMetrics_Isolated(t *testing.T) {
	// every run owns its registry, so creating several never collides
	m1 := New("a", "blobs")
	m2 := New("b", "blobs")
	m1.Observe("train", "raw", 1)

	families, err := m2.Gatherer().Gather()
	require.NoError(t, err)
	for _, f := range families {
		assert.NotEqual(t, "synth_samples_total", f.GetName())
	}
}
