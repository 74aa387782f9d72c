package synth

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Activation is the nonlinearity applied after each linear map.
type Activation string

const (
	SigmoidActivation Activation = "sigmoid"
	TanhActivation    Activation = "tanh"
)

// ParseActivation parses the activation name, empty defaults to sigmoid.
func ParseActivation(s string) (Activation, error) {
	switch Activation(s) {
	case "", SigmoidActivation:
		return SigmoidActivation, nil
	case TanhActivation:
		return TanhActivation, nil
	}
	return "", fmt.Errorf("activation '%s': %w", s, ErrUnknownPolicy)
}

func (a Activation) fn() func(float64) float64 {
	switch a {
	case TanhActivation:
		return math.Tanh
	default:
		return Sigmoid
	}
}

// Sigmoid is the logistic function.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Shape is the (rows, columns) shape of a linear map.
type Shape [2]int

// Lifter maps low dimensional samples to a higher dimensional space,
// through a chain of random linear maps, each followed by the activation.
// The same Lifter must be used for train and test data.
type Lifter struct {
	activation Activation
	maps       []*mat.Dense
}

// NewLifter draws one N(0,1) matrix per shape from the generator.
// Consecutive shapes must chain, e.g. [2,10] -> [10,50].
func NewLifter(rng *rand.Rand, activation Activation, shapes ...Shape) (*Lifter, error) {
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	maps := make([]*mat.Dense, len(shapes))
	for i, s := range shapes {
		if s[0] <= 0 || s[1] <= 0 {
			return nil, fmt.Errorf("invalid shape %v at %d: %w", s, i, ErrShapeMismatch)
		}
		if i > 0 && shapes[i-1][1] != s[0] {
			return nil, fmt.Errorf("shape %v at %d does not chain with %v: %w", s, i, shapes[i-1], ErrShapeMismatch)
		}
		w := mat.NewDense(s[0], s[1], nil)
		for r := 0; r < s[0]; r++ {
			for c := 0; c < s[1]; c++ {
				w.Set(r, c, normal.Rand())
			}
		}
		maps[i] = w
	}
	return FromMaps(activation, maps...)
}

// FromMaps creates a Lifter from already drawn maps.
func FromMaps(activation Activation, maps ...*mat.Dense) (*Lifter, error) {
	for i := 1; i < len(maps); i++ {
		_, c := maps[i-1].Dims()
		r, _ := maps[i].Dims()
		if c != r {
			return nil, fmt.Errorf("map %d [%d] does not chain with map %d [%d]: %w", i-1, c, i, r, ErrShapeMismatch)
		}
	}
	return &Lifter{
		activation: activation,
		maps:       maps,
	}, nil
}

// Maps returns the linear maps of the lifter.
func (l *Lifter) Maps() []*mat.Dense {
	return l.maps
}

// Dim returns the output dimension for the given input dimension.
func (l *Lifter) Dim(in int) int {
	if len(l.maps) == 0 {
		return in
	}
	_, c := l.maps[len(l.maps)-1].Dims()
	return c
}

// Lift applies x = f(x * W) for every map in order.
func (l *Lifter) Lift(x mat.Matrix) (*mat.Dense, error) {
	out := mat.DenseCopyOf(x)
	f := l.activation.fn()
	for i, w := range l.maps {
		_, c := out.Dims()
		r, _ := w.Dims()
		if c != r {
			return nil, fmt.Errorf("input with %d columns for map %d with %d rows: %w", c, i, r, ErrShapeMismatch)
		}
		var next mat.Dense
		next.Mul(out, w)
		next.Apply(func(_, _ int, v float64) float64 {
			return f(v)
		}, &next)
		out = &next
	}
	return out, nil
}
