package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "synth"

// Metrics collects the figures of a single generation run.
// Every run owns its registry, the result is written as a prometheus text file
// into the run directory instead of being served.
type Metrics struct {
	registry   *prometheus.Registry
	Samples    *prometheus.CounterVec
	Retries    prometheus.Gauge
	Iterations *prometheus.GaugeVec
	Accuracy   prometheus.Gauge
	Duration   prometheus.Gauge
}

// New creates the metrics for the given run.
func New(run, mode string) *Metrics {
	labels := prometheus.Labels{"run": run, "mode": mode}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "samples_total",
			Help:        "generated samples per split and stage",
			ConstLabels: labels,
		}, []string{"split", "stage"}),
		Retries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "center_retries",
			Help:        "re-seeded attempts until the blob centers were separated",
			ConstLabels: labels,
		}),
		Iterations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "kmeans_iterations",
			Help:        "k-means refinement iterations",
			ConstLabels: labels,
		}, []string{"split", "space"}),
		Accuracy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "validation_accuracy",
			Help:        "test accuracy of the separability check",
			ConstLabels: labels,
		}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "duration_seconds",
			Help:        "duration of the run",
			ConstLabels: labels,
		}),
	}
	m.registry.MustRegister(m.Samples, m.Retries, m.Iterations, m.Accuracy, m.Duration)
	return m
}

// Observe adds the generated samples for the split and stage.
func (m *Metrics) Observe(split, stage string, n int) {
	m.Samples.WithLabelValues(split, stage).Add(float64(n))
}

// Gatherer exposes the registry of the run.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTo writes the metrics in the prometheus text format.
func (m *Metrics) WriteTo(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("could not write metrics to '%s': %w", path, err)
	}
	return nil
}
