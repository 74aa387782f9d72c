package synth

import (
	"errors"

	"golang.org/x/exp/rand"
)

var (
	ErrCentersNotSeparated = errors.New("centers not separated")
	ErrShapeMismatch       = errors.New("shape mismatch")
	ErrNotFitted           = errors.New("transformer not fitted")
	ErrUnknownPolicy       = errors.New("unknown policy")
)

// NewRand creates a seeded generator.
// Every stochastic step takes its generator explicitly, so that runs are reproducible.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(uint64(seed)))
}

// Box is a closed numeric range.
type Box struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Width returns the length of the range.
func (b Box) Width() float64 {
	return b.Max - b.Min
}
