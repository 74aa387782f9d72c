package synth

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Policy is the preprocessing applied to the generated samples.
type Policy string

const (
	NoPreprocessing Policy = "none"
	MinMax          Policy = "minmax"
	ZScore          Policy = "zscore"
	Scale           Policy = "scale"
)

// ParsePolicy parses the preprocessing policy, empty means no preprocessing.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", NoPreprocessing:
		return NoPreprocessing, nil
	case MinMax, ZScore, Scale:
		return Policy(s), nil
	}
	return "", fmt.Errorf("preprocess '%s': %w", s, ErrUnknownPolicy)
}

// Transformer rescales sample matrices.
// Parameters are learned once with Fit and re-used by every Transform call,
// so that train and test data go through the same transformation.
type Transformer interface {
	Fit(x mat.Matrix) error
	Transform(x mat.Matrix) (*mat.Dense, error)
}

// NewTransformer creates the transformer for the policy.
func NewTransformer(p Policy, factor float64) (Transformer, error) {
	switch p {
	case NoPreprocessing, "":
		return identity{}, nil
	case MinMax:
		return &minMax{}, nil
	case ZScore:
		return &zScore{}, nil
	case Scale:
		return scaler{factor: factor}, nil
	}
	return nil, fmt.Errorf("preprocess '%s': %w", p, ErrUnknownPolicy)
}

// FitTransform fits the transformer on x and returns the transformed x.
func FitTransform(t Transformer, x mat.Matrix) (*mat.Dense, error) {
	if err := t.Fit(x); err != nil {
		return nil, err
	}
	return t.Transform(x)
}

type identity struct{}

func (identity) Fit(mat.Matrix) error { return nil }

func (identity) Transform(x mat.Matrix) (*mat.Dense, error) {
	return mat.DenseCopyOf(x), nil
}

type scaler struct {
	factor float64
}

func (s scaler) Fit(mat.Matrix) error { return nil }

func (s scaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	var out mat.Dense
	out.Scale(s.factor, x)
	return &out, nil
}

// minMax maps every column into [0,1].
type minMax struct {
	min, max []float64
}

func (m *minMax) Fit(x mat.Matrix) error {
	_, c := x.Dims()
	m.min = make([]float64, c)
	m.max = make([]float64, c)
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, x)
		m.min[j] = floats.Min(col)
		m.max[j] = floats.Max(col)
	}
	return nil
}

func (m *minMax) Transform(x mat.Matrix) (*mat.Dense, error) {
	if m.min == nil {
		return nil, ErrNotFitted
	}
	return columnwise(x, len(m.min), func(j int, v float64) float64 {
		d := m.max[j] - m.min[j]
		if d == 0 {
			return 0
		}
		return (v - m.min[j]) / d
	})
}

// zScore centers every column and scales it to unit (population) variance.
type zScore struct {
	mean, std []float64
}

func (z *zScore) Fit(x mat.Matrix) error {
	_, c := x.Dims()
	z.mean = make([]float64, c)
	z.std = make([]float64, c)
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, x)
		z.mean[j] = stat.Mean(col, nil)
		if n := float64(len(col)); n > 1 {
			// population variance
			variance := stat.Variance(col, nil) * (n - 1) / n
			if variance > 0 {
				z.std[j] = math.Sqrt(variance)
			}
		}
	}
	return nil
}

func (z *zScore) Transform(x mat.Matrix) (*mat.Dense, error) {
	if z.mean == nil {
		return nil, ErrNotFitted
	}
	return columnwise(x, len(z.mean), func(j int, v float64) float64 {
		if z.std[j] == 0 {
			return 0
		}
		return (v - z.mean[j]) / z.std[j]
	})
}

func columnwise(x mat.Matrix, cols int, f func(j int, v float64) float64) (*mat.Dense, error) {
	_, c := x.Dims()
	if c != cols {
		return nil, fmt.Errorf("fitted on %d columns, got %d: %w", cols, c, ErrShapeMismatch)
	}
	var out mat.Dense
	out.Apply(func(_, j int, v float64) float64 {
		return f(j, v)
	}, x)
	return &out, nil
}
