package math

import (
	"math"
	"strconv"
)

// Format formats a float based on the given precision
func Format(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// SineEvolve is the plain sine of the phase.
func SineEvolve(p float64) float64 {
	return math.Sin(p)
}

// ArgMax returns the index of the largest value.
// Ties resolve to the lowest index, an empty slice returns -1.
func ArgMax(ff []float64) int {
	idx := -1
	max := math.Inf(-1)
	for i, f := range ff {
		if f > max {
			max = f
			idx = i
		}
	}
	return idx
}

// MeanAbsDiff returns the mean absolute difference of the two series.
func MeanAbsDiff(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return math.NaN()
	}
	s := 0.0
	for i := range a {
		s += math.Abs(a[i] - b[i])
	}
	return s / float64(len(a))
}
