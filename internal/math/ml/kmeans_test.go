package ml

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// blocks creates two compact blocks of points, far left and far right of the y axis.
func blocks() (*mat.Dense, []int) {
	var data []float64
	var labels []int
	for i := -20.0; i <= -14; i += 1.0 {
		for j := -3.0; j <= 3; j += 1.0 {
			data = append(data, i, j)
			labels = append(labels, 0)
		}
	}
	for i := 14.0; i <= 20; i += 1.0 {
		for j := -3.0; j <= 3; j += 1.0 {
			data = append(data, i, j)
			labels = append(labels, 1)
		}
	}
	return mat.NewDense(len(labels), 2, data), labels
}

func TestKMeans_Cluster(t *testing.T) {

	type test struct {
		init  Init
		empty Empty
		seed  int64
		// random init can start both centers in the same block and settle on a horizontal split
		split bool
	}

	tests := map[string]test{
		"kmeans++": {
			init:  PlusPlusInit,
			empty: Freeze,
			seed:  1,
			split: true,
		},
		"kmeans++-reinit": {
			init:  PlusPlusInit,
			empty: Reinit,
			seed:  7,
			split: true,
		},
		"random": {
			init:  RandomInit,
			empty: Freeze,
			seed:  3,
		},
		"random-reinit": {
			init:  RandomInit,
			empty: Reinit,
			seed:  11,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			x, truth := blocks()
			kmeans, err := NewKMeans(Config{
				K:     2,
				Init:  tt.init,
				Empty: tt.empty,
				Seed:  tt.seed,
			})
			require.NoError(t, err)

			result, err := kmeans.Cluster(x)
			require.NoError(t, err)
			assert.True(t, result.Converged)

			n, _ := x.Dims()
			assert.Equal(t, n, len(result.Labels))
			for _, l := range result.Labels {
				assert.True(t, l == 0 || l == 1)
			}

			if tt.split {
				// each block ends up in a single cluster, whatever the numbering
				left := result.Labels[0]
				for i, l := range result.Labels {
					if truth[i] == 0 {
						assert.Equal(t, left, l)
					} else {
						assert.NotEqual(t, left, l)
					}
				}
				assert.Equal(t, []int{49, 49}, sortedSizes(result.Sizes()))
			}

			// the centers are a fixed point of one more refinement
			next, empty := Refine(x, result.Centers, result.Labels)
			assert.Empty(t, empty)
			assert.True(t, mat.EqualApprox(result.Centers, next, 1e-9))
			assert.Equal(t, result.Labels, Assign(x, result.Centers))
		})
	}
}

func TestKMeans_Deterministic(t *testing.T) {
	x, _ := blocks()
	cfg := Config{K: 3, Seed: 42}

	k1, err := NewKMeans(cfg)
	require.NoError(t, err)
	k2, err := NewKMeans(cfg)
	require.NoError(t, err)

	r1, err := k1.Cluster(x)
	require.NoError(t, err)
	r2, err := k2.Cluster(x)
	require.NoError(t, err)

	assert.Equal(t, r1.Labels, r2.Labels)
	assert.True(t, mat.Equal(r1.Centers, r2.Centers))
}

func TestKMeans_InvalidK(t *testing.T) {
	_, err := NewKMeans(Config{K: 0})
	assert.True(t, errors.Is(err, ErrInvalidK))

	kmeans, err := NewKMeans(Config{K: 5})
	require.NoError(t, err)
	_, err = kmeans.Cluster(mat.NewDense(3, 1, []float64{1, 2, 3}))
	assert.True(t, errors.Is(err, ErrInvalidK))
}

func TestKMeans_UnknownOptions(t *testing.T) {
	_, err := NewKMeans(Config{K: 1, Init: "magic"})
	assert.True(t, errors.Is(err, ErrUnknownOption))

	_, err = NewKMeans(Config{K: 1, Empty: "drop"})
	assert.True(t, errors.Is(err, ErrUnknownOption))

	_, err = New("sklearn", Config{K: 1})
	assert.True(t, errors.Is(err, ErrUnknownOption))
}

func TestNearest_TieBreak(t *testing.T) {
	centers := mat.NewDense(3, 1, []float64{-1, 1, 1})
	assert.Equal(t, 0, Nearest(centers, []float64{0}))
	assert.Equal(t, 1, Nearest(centers, []float64{1}))
	assert.Equal(t, 1, Nearest(centers, []float64{5}))
}

func TestRefine_Empty(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{0, 1, 10, 11})
	centers := mat.NewDense(3, 1, []float64{0, 10, 100})
	labels := Assign(x, centers)
	assert.Equal(t, []int{0, 0, 1, 1}, labels)

	next, empty := Refine(x, centers, labels)
	assert.Equal(t, []int{2}, empty)
	assert.Equal(t, []float64{0.5, 10.5, 100}, next.RawMatrix().Data)
}

func TestKMeans_EmptyPolicy(t *testing.T) {

	// all points identical but one, k=3 forces an empty cluster on the duplicated points
	x := mat.NewDense(5, 1, []float64{0, 0, 0, 0, 10})

	type test struct {
		empty Empty
	}

	tests := map[string]test{
		"freeze": {empty: Freeze},
		"reinit": {empty: Reinit},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			kmeans, err := NewKMeans(Config{
				K:     3,
				Init:  RandomInit,
				Empty: tt.empty,
				Seed:  5,
			})
			require.NoError(t, err)
			result, err := kmeans.Cluster(x)
			require.NoError(t, err)
			assert.True(t, result.Converged)
			assert.Equal(t, 5, len(result.Labels))
			total := 0
			for _, s := range result.Sizes() {
				total += s
			}
			assert.Equal(t, 5, total)
			// the outlier always has its own cluster
			assert.NotEqual(t, result.Labels[0], result.Labels[4])
		})
	}
}

func TestGoMLKMeans(t *testing.T) {
	x, truth := blocks()
	clusterer, err := New(GoML, Config{K: 2, Iterations: 30})
	require.NoError(t, err)

	result, err := clusterer.Cluster(x)
	require.NoError(t, err)
	assert.Equal(t, len(truth), len(result.Labels))
	r, c := result.Centers.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
}

func TestDescribe(t *testing.T) {
	x, _ := blocks()
	kmeans, err := NewKMeans(Config{K: 2, Seed: 1})
	require.NoError(t, err)
	result, err := kmeans.Cluster(x)
	require.NoError(t, err)

	meta := Describe(result)
	assert.Equal(t, 98, meta.Samples)
	assert.Equal(t, 2, len(meta.Clusters))
	assert.True(t, meta.Converged)
	for _, c := range meta.Clusters {
		assert.Equal(t, 49, c.Size)
		assert.InDelta(t, 17, abs(c.Center[0]), 1e-9)
		assert.InDelta(t, 0, c.Center[1], 1e-9)
	}
}

func sortedSizes(sizes []int) []int {
	if len(sizes) == 2 && sizes[0] > sizes[1] {
		return []int{sizes[1], sizes[0]}
	}
	return sizes
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
