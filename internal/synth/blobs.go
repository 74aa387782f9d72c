package synth

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultMaxRetries is the number of re-seeded attempts for separating the blob centers.
const DefaultMaxRetries = 100

// Blobs describes a set of isotropic gaussian clusters.
type Blobs struct {
	Samples    int
	Dim        int
	Centers    int
	Box        Box
	Std        float64
	Seed       int64
	MaxRetries int
	// Fixed are explicit centers, they take precedence over Centers and Box.
	Fixed *mat.Dense
}

// BlobSet is the output of a blob generation.
type BlobSet struct {
	X       *mat.Dense
	Y       []int
	Centers *mat.Dense
	// Seed is the seed that produced the accepted centers.
	Seed    int64
	Retries int
}

// Generate draws the centers and the samples around them.
// If any two centers are closer than twice the cluster std, the generation is repeated
// with an incremented seed, up to MaxRetries times.
func (b Blobs) Generate() (BlobSet, error) {
	if err := b.check(); err != nil {
		return BlobSet{}, err
	}

	if b.Fixed != nil {
		if !Separated(b.Fixed, 2*b.Std) {
			return BlobSet{}, fmt.Errorf("explicit centers closer than %v: %w", 2*b.Std, ErrCentersNotSeparated)
		}
		rng := NewRand(b.Seed)
		x, y := SampleAround(rng, b.Fixed, b.Samples, b.Std)
		return BlobSet{
			X:       x,
			Y:       y,
			Centers: mat.DenseCopyOf(b.Fixed),
			Seed:    b.Seed,
		}, nil
	}

	retries := b.MaxRetries
	if retries <= 0 {
		retries = DefaultMaxRetries
	}

	for attempt := 0; attempt <= retries; attempt++ {
		seed := b.Seed + int64(attempt)
		rng := NewRand(seed)
		centers := placeCenters(rng, b.Centers, b.Dim, b.Box)
		if !Separated(centers, 2*b.Std) {
			log.Debug().
				Int64("seed", seed).
				Int("attempt", attempt).
				Float64("std", b.Std).
				Msg("centers too close")
			continue
		}
		x, y := SampleAround(rng, centers, b.Samples, b.Std)
		if attempt > 0 {
			log.Info().
				Int64("seed", b.Seed).
				Int64("realized", seed).
				Int("retries", attempt).
				Msg("re-seeded blob centers")
		}
		return BlobSet{
			X:       x,
			Y:       y,
			Centers: centers,
			Seed:    seed,
			Retries: attempt,
		}, nil
	}

	return BlobSet{}, fmt.Errorf("no separation after %d retries [seed=%d,centers=%d,std=%v]: %w",
		retries, b.Seed, b.Centers, b.Std, ErrCentersNotSeparated)
}

// Test generates a set of the given size around the realized centers of the set,
// so that both sets follow the same distribution.
// The noise comes from a stream derived from the realized seed, never the training one.
func (s BlobSet) Test(n int, std float64) BlobSet {
	rng := NewRand(testSeed(s.Seed))
	x, y := SampleAround(rng, s.Centers, n, std)
	return BlobSet{
		X:       x,
		Y:       y,
		Centers: s.Centers,
		Seed:    s.Seed,
		Retries: s.Retries,
	}
}

// testSeed derives the seed of the test stream from the training one.
func testSeed(seed int64) int64 {
	return int64(NewRand(seed).Uint64() >> 1)
}

func (b Blobs) check() error {
	if b.Samples <= 0 {
		return fmt.Errorf("samples must be positive: %d: %w", b.Samples, ErrShapeMismatch)
	}
	if b.Std <= 0 {
		return fmt.Errorf("std must be positive: %v", b.Std)
	}
	if b.Fixed != nil {
		return nil
	}
	if b.Dim <= 0 || b.Centers <= 0 {
		return fmt.Errorf("dim and centers must be positive [%d,%d]: %w", b.Dim, b.Centers, ErrShapeMismatch)
	}
	if b.Box.Width() <= 0 {
		return fmt.Errorf("empty center box: %+v", b.Box)
	}
	return nil
}

func placeCenters(rng *rand.Rand, k, dim int, box Box) *mat.Dense {
	u := distuv.Uniform{Min: box.Min, Max: box.Max, Src: rng}
	centers := mat.NewDense(k, dim, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < dim; j++ {
			centers.Set(i, j, u.Rand())
		}
	}
	return centers
}

// SampleAround draws n points around the given centers.
// Points are split evenly across the centers, the first n%k centers get one extra point,
// and the rows are shuffled together with their labels.
func SampleAround(rng *rand.Rand, centers *mat.Dense, n int, std float64) (*mat.Dense, []int) {
	k, dim := centers.Dims()
	noise := distuv.Normal{Mu: 0, Sigma: std, Src: rng}

	x := mat.NewDense(n, dim, nil)
	y := make([]int, n)
	row := 0
	for c := 0; c < k; c++ {
		count := n / k
		if c < n%k {
			count++
		}
		for i := 0; i < count; i++ {
			for j := 0; j < dim; j++ {
				x.Set(row, j, centers.At(c, j)+noise.Rand())
			}
			y[row] = c
			row++
		}
	}

	perm := rng.Perm(n)
	shuffled := mat.NewDense(n, dim, nil)
	labels := make([]int, n)
	for i, p := range perm {
		shuffled.SetRow(i, x.RawRowView(p))
		labels[i] = y[p]
	}
	return shuffled, labels
}

// Separated checks that all pairs of centers lie further than the given distance.
func Separated(centers *mat.Dense, min float64) bool {
	k, _ := centers.Dims()
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if floats.Distance(centers.RawRowView(i), centers.RawRowView(j), 2) <= min {
				return false
			}
		}
	}
	return true
}

// SharedRows counts the rows of b that also appear in a.
func SharedRows(a, b *mat.Dense) int {
	ra, _ := a.Dims()
	rb, _ := b.Dims()
	var shared int
	for i := 0; i < rb; i++ {
		for j := 0; j < ra; j++ {
			if floats.Equal(b.RawRowView(i), a.RawRowView(j)) {
				shared++
				break
			}
		}
	}
	return shared
}
