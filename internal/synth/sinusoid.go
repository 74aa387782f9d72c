package synth

import (
	"fmt"
	"math"

	kcmath "github.com/drakos74/kcurves/internal/math"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampling defines how the x coordinates of an arm are picked.
type Sampling string

const (
	// Grid spreads the samples evenly over the interval, both ends included.
	Grid Sampling = "grid"
	// Uniform draws the samples uniformly at random within the interval.
	Uniform Sampling = "uniform"
)

// ParseSampling parses a sampling policy, empty defaults to Grid.
func ParseSampling(s string) (Sampling, error) {
	switch Sampling(s) {
	case "", Grid:
		return Grid, nil
	case Uniform:
		return Uniform, nil
	}
	return "", fmt.Errorf("sampling '%s': %w", s, ErrUnknownPolicy)
}

// Sinusoid is the parametric description of one arm of the manifold.
//   y = Amplitude * sin(Frequency * x + Shift) + N(0, Noise^2)
type Sinusoid struct {
	Amplitude float64  `json:"amplitude"`
	Frequency float64  `json:"frequency"`
	Shift     float64  `json:"shift"`
	Interval  Box      `json:"interval"`
	Noise     float64  `json:"noise"`
	Sampling  Sampling `json:"sampling"`
}

// At returns the noiseless value of the curve.
func (s Sinusoid) At(x float64) float64 {
	return s.Amplitude * math.Sin(s.Frequency*x+s.Shift)
}

// Generate draws n (x, y) rows of the arm.
func (s Sinusoid) Generate(rng *rand.Rand, n int) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("samples must be positive: %d: %w", n, ErrShapeMismatch)
	}
	if s.Interval.Width() <= 0 {
		return nil, fmt.Errorf("empty interval: %+v", s.Interval)
	}
	if s.Noise < 0 {
		return nil, fmt.Errorf("negative noise: %v", s.Noise)
	}

	var xx []float64
	switch s.Sampling {
	case "", Grid:
		xx = kcmath.Linspace(s.Interval.Min, s.Interval.Max, n)
	case Uniform:
		u := distuv.Uniform{Min: s.Interval.Min, Max: s.Interval.Max, Src: rng}
		xx = make([]float64, n)
		for i := range xx {
			xx[i] = u.Rand()
		}
	default:
		return nil, fmt.Errorf("sampling '%s': %w", s.Sampling, ErrUnknownPolicy)
	}

	var noise *distuv.Normal
	if s.Noise > 0 {
		noise = &distuv.Normal{Mu: 0, Sigma: s.Noise, Src: rng}
	}

	data := mat.NewDense(n, 2, nil)
	for i, x := range xx {
		y := s.At(x)
		if noise != nil {
			y += noise.Rand()
		}
		data.Set(i, 0, x)
		data.Set(i, 1, y)
	}
	return data, nil
}

// Stack stacks the arms row-wise and labels every row with the index of its arm.
func Stack(arms ...*mat.Dense) (*mat.Dense, []int, error) {
	if len(arms) == 0 {
		return nil, nil, fmt.Errorf("no arms to stack: %w", ErrShapeMismatch)
	}
	_, dim := arms[0].Dims()
	rows := 0
	for i, a := range arms {
		r, c := a.Dims()
		if c != dim {
			return nil, nil, fmt.Errorf("arm %d has %d columns instead of %d: %w", i, c, dim, ErrShapeMismatch)
		}
		rows += r
	}

	x := mat.NewDense(rows, dim, nil)
	y := make([]int, 0, rows)
	offset := 0
	for label, a := range arms {
		r, _ := a.Dims()
		x.Slice(offset, offset+r, 0, dim).(*mat.Dense).Copy(a)
		for i := 0; i < r; i++ {
			y = append(y, label)
		}
		offset += r
	}
	return x, y, nil
}
