package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRandomForest_Validate(t *testing.T) {
	x, y := blocks()

	meta, err := Validate(20, x, y, x, y)
	require.NoError(t, err)
	assert.Equal(t, len(y), meta.Samples)
	assert.True(t, meta.Accuracy > 0.9, "accuracy %v", meta.Accuracy)
	assert.Equal(t, 2, len(meta.Features))
}

func TestRandomForest_Predict(t *testing.T) {
	rf := NewForest(10)
	_, err := rf.Predict([]float64{0, 0})
	assert.Error(t, err)

	x, y := blocks()
	_, err = rf.Train(x, y)
	require.NoError(t, err)

	p, err := rf.Predict([]float64{-17, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, p)

	p, err = rf.Predict([]float64{17, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, p)
}

func TestRandomForest_Misaligned(t *testing.T) {
	rf := NewForest(0)
	_, err := rf.Train(mat.NewDense(2, 1, []float64{1, 2}), []int{0})
	assert.Error(t, err)

	_, err = Validate(1, mat.NewDense(2, 1, []float64{1, 2}), []int{0}, mat.NewDense(1, 1, nil), []int{0})
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, Rows(x))
}
