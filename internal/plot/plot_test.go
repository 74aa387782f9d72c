package plot

import (
	"errors"
	"math"
	"testing"

	"github.com/drakos74/kcurves/internal/storage"
	"github.com/drakos74/kcurves/internal/storage/file/json"
	"github.com/drakos74/kcurves/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestClasses(t *testing.T) {

	type test struct {
		x       *mat.Dense
		labels  []int
		centers *mat.Dense
		series  []int
		err     bool
	}

	tests := map[string]test{
		"two-classes": {
			x:       mat.NewDense(4, 2, []float64{0, 0, 1, 1, 5, 5, 6, 6}),
			labels:  []int{1, 0, 1, 0},
			centers: mat.NewDense(2, 2, []float64{3.5, 3.5, 2.5, 2.5}),
			series:  []int{2, 2, 2},
		},
		"no-centers": {
			x:      mat.NewDense(3, 3, []float64{0, 0, 0, 1, 1, 1, 2, 2, 2}),
			labels: []int{0, 0, 0},
			series: []int{3},
		},
		"one-column": {
			x:      mat.NewDense(2, 1, []float64{0, 1}),
			labels: []int{0, 1},
			series: []int{1, 1},
		},
		"misaligned": {
			x:      mat.NewDense(2, 1, []float64{0, 1}),
			labels: []int{0},
			err:    true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var centers mat.Matrix
			if tt.centers != nil {
				centers = tt.centers
			}
			fig, err := Classes(name, name, tt.x, tt.labels, centers)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			sizes := make([]int, len(fig.Series))
			for i, s := range fig.Series {
				sizes[i] = s.Size()
				assert.Equal(t, Scatter, s.Kind)
			}
			assert.Equal(t, tt.series, sizes)
		})
	}
}

func TestClasses_Ordered(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{0, 0, 1, 1, 2, 2})
	fig, err := Classes("f", "f", x, []int{2, 0, 1}, nil)
	require.NoError(t, err)
	require.Equal(t, 3, len(fig.Series))
	assert.Equal(t, "class 0", fig.Series[0].Name)
	assert.Equal(t, []float64{1}, fig.Series[0].X)
	assert.Equal(t, "class 2", fig.Series[2].Name)
	assert.Equal(t, ClassStyle(2).Color, fig.Series[2].Color)
}

func TestCurves(t *testing.T) {
	f := synth.Sinusoid{
		Amplitude: 2,
		Frequency: 1,
		Interval:  synth.Box{Min: 0, Max: 2 * math.Pi},
	}
	samples, err := f.Generate(synth.NewRand(1), 10)
	require.NoError(t, err)

	fig := Curves("arms", "arms",
		Arm{Name: "F1", Function: f, Samples: samples, Style: Style{Marker: "o", Color: "blue"}},
		Arm{Name: "F2", Function: f},
	)
	require.Equal(t, 3, len(fig.Series))

	curve := fig.Series[0]
	assert.Equal(t, Line, curve.Kind)
	assert.Equal(t, resolution, curve.Size())
	assert.InDelta(t, 0, curve.X[0], 1e-12)
	assert.InDelta(t, 2*math.Pi, curve.X[resolution-1], 1e-9)
	for i, x := range curve.X {
		assert.InDelta(t, 2*math.Sin(x), curve.Y[i], 1e-12)
	}

	points := fig.Series[1]
	assert.Equal(t, Scatter, points.Kind)
	assert.Equal(t, "o", points.Marker)
	assert.Equal(t, 10, points.Size())

	assert.Equal(t, "F2", fig.Series[2].Name)
}

func TestPlotter(t *testing.T) {
	dir := t.TempDir()
	p := New(dir, json.NewJsonBlob(false, false))

	fig, err := Classes("scatter", "train", mat.NewDense(2, 2, []float64{0, 1, 2, 3}), []int{0, 1}, nil)
	require.NoError(t, err)
	require.NoError(t, p.Plot(fig))

	loaded, err := p.Load("scatter")
	require.NoError(t, err)
	assert.Equal(t, fig, loaded)

	_, err = p.Load("missing")
	assert.True(t, errors.Is(err, storage.NotFoundErr))
}
