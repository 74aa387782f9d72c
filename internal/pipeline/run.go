package pipeline

import (
	"time"

	"github.com/drakos74/kcurves/infra/config"
	"github.com/drakos74/kcurves/internal/buffer"
	"github.com/drakos74/kcurves/internal/math/ml"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Run is the record of a single generation.
type Run struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Mode     string    `json:"mode"`
	Start    time.Time `json:"start"`
	Dir      string    `json:"dir"`
	Seed     int64     `json:"seed"`
	Retries  int       `json:"retries,omitempty"`
	Duration float64   `json:"duration"`
	// Shapes are the dimensions of every produced array.
	Shapes map[string][2]int `json:"shapes"`
	// Stats are the per column statistics of every produced sample matrix.
	Stats      map[string][]buffer.Summary `json:"stats"`
	Clusters   map[string]ml.Metadata      `json:"clusters,omitempty"`
	Validation *ml.Metadata                `json:"validation,omitempty"`
	Spectrum   []Spectrum                  `json:"spectrum,omitempty"`
	Files      []string                    `json:"files,omitempty"`
}

// Spectrum compares the configured frequency of an arm with the one found in its samples.
type Spectrum struct {
	Arm       int     `json:"arm"`
	Frequency float64 `json:"frequency"`
	Estimated float64 `json:"estimated"`
}

func newRun(cfg *config.Config, dir string, start time.Time) *Run {
	return &Run{
		ID:       uuid.New().String(),
		Name:     cfg.Name,
		Mode:     string(cfg.Mode),
		Start:    start,
		Dir:      dir,
		Shapes:   make(map[string][2]int),
		Stats:    make(map[string][]buffer.Summary),
		Clusters: make(map[string]ml.Metadata),
	}
}

func (r *Run) record(name string, x mat.Matrix) {
	rows, cols := x.Dims()
	r.Shapes[name] = [2]int{rows, cols}
	r.Stats[name] = buffer.Columns(x).Summary()
}
