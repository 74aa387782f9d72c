package buffer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Stats is a set of statistical properties of a set of numbers.
type Stats struct {
	count          int
	sum            float64
	min, max       float64
	mean, dSquared float64
}

// NewStats creates a new Stats.
func NewStats() *Stats {
	return &Stats{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
}

// Push adds another element to the set.
func (s *Stats) Push(v float64) {
	s.count++
	s.sum += v
	diff := (v - s.mean) / float64(s.count)
	mean := s.mean + diff
	squaredDiff := (v - mean) * (v - s.mean)
	s.dSquared += squaredDiff
	s.mean = mean

	if s.min > v {
		s.min = v
	}

	if s.max < v {
		s.max = v
	}
}

// Avg returns the average value of the set.
func (s Stats) Avg() float64 {
	return s.mean
}

// Sum returns the sum of the set.
func (s Stats) Sum() float64 {
	return s.sum
}

// Count returns the number of elements.
func (s Stats) Count() int {
	return s.count
}

// Min returns the smallest element.
func (s Stats) Min() float64 {
	return s.min
}

// Max returns the largest element.
func (s Stats) Max() float64 {
	return s.max
}

// Variance is the mathematical variance of the set.
func (s Stats) Variance() float64 {
	if s.count == 0 || s.dSquared < 0 {
		return 0
	}
	return s.dSquared / float64(s.count)
}

// StDev is the standard deviation of the set.
func (s Stats) StDev() float64 {
	return math.Sqrt(s.Variance())
}

// Summary is the serialisable form of Stats.
type Summary struct {
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
	StDev float64 `json:"stdev"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Summary exports the current values.
func (s Stats) Summary() Summary {
	return Summary{
		Count: s.count,
		Avg:   s.mean,
		StDev: s.StDev(),
		Min:   s.min,
		Max:   s.max,
	}
}

// StatsCollector is a collection of Stats variables.
// This enables multi-dimensional tracking, e.g. one Stats per feature column.
type StatsCollector struct {
	dim   int
	stats []*Stats
}

// NewStatsCollector creates a new Stats collector.
func NewStatsCollector(dim int) *StatsCollector {
	stats := make([]*Stats, dim)
	for i := 0; i < dim; i++ {
		stats[i] = NewStats()
	}
	return &StatsCollector{
		dim:   dim,
		stats: stats,
	}
}

// Columns collects the stats of every column of the matrix.
func Columns(x mat.Matrix) *StatsCollector {
	r, c := x.Dims()
	sc := NewStatsCollector(c)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, x)
		sc.Push(row...)
	}
	return sc
}

// Push pushes each value to the corresponding dimension.
func (sc *StatsCollector) Push(v ...float64) {
	if len(v) != sc.dim {
		panic(fmt.Sprintf("inconsistent dimensions %d vs %d", len(v), sc.dim))
	}
	for i := 0; i < len(sc.stats); i++ {
		sc.stats[i].Push(v[i])
	}
}

// Size returns the number of elements pushed.
func (sc *StatsCollector) Size() int {
	if len(sc.stats) == 0 {
		return 0
	}
	// we expect all buffer to have the same size
	return sc.stats[0].count
}

// Summary exports the stats of every dimension.
func (sc StatsCollector) Summary() []Summary {
	ss := make([]Summary, len(sc.stats))
	for i, s := range sc.stats {
		ss[i] = s.Summary()
	}
	return ss
}
