package ml

import (
	"errors"
	"fmt"
	"math"

	"github.com/cdipaolo/goml/cluster"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultIterations is the default upper bound of refinement iterations.
const DefaultIterations = 300

var (
	ErrInvalidK      = errors.New("invalid number of clusters")
	ErrUnknownOption = errors.New("unknown option")
)

// Init is the center initialisation policy.
type Init string

const (
	RandomInit   Init = "random"
	PlusPlusInit Init = "kmeans++"
)

// Empty is the policy for a center that lost all its points.
type Empty string

const (
	// Freeze keeps the center where it was.
	Freeze Empty = "freeze"
	// Reinit moves the center onto the point furthest from its own center.
	Reinit Empty = "reinit"
)

// Backend selects the k-means implementation.
type Backend string

const (
	Lloyd Backend = "lloyd"
	GoML  Backend = "goml"
)

// Config holds the k-means parameters.
type Config struct {
	K          int
	Iterations int
	Init       Init
	Empty      Empty
	Seed       int64
}

// Result is the outcome of a clustering.
type Result struct {
	Centers    *mat.Dense
	Labels     []int
	Iterations int
	Converged  bool
}

// Sizes returns the number of points assigned to each center.
func (r Result) Sizes() []int {
	k, _ := r.Centers.Dims()
	sizes := make([]int, k)
	for _, l := range r.Labels {
		sizes[l]++
	}
	return sizes
}

// Clusterer partitions a sample matrix.
type Clusterer interface {
	Cluster(x *mat.Dense) (Result, error)
}

// New creates the clusterer for the given backend.
func New(backend Backend, cfg Config) (Clusterer, error) {
	switch backend {
	case "", Lloyd:
		return NewKMeans(cfg)
	case GoML:
		return NewGoMLKMeans(cfg.K, cfg.Iterations), nil
	}
	return nil, fmt.Errorf("backend '%s': %w", backend, ErrUnknownOption)
}

// KMeans is a seeded Lloyd k-means.
type KMeans struct {
	cfg Config
}

// NewKMeans creates a new k-means clusterer.
func NewKMeans(cfg Config) (*KMeans, error) {
	if cfg.K <= 0 {
		return nil, fmt.Errorf("k=%d: %w", cfg.K, ErrInvalidK)
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}
	switch cfg.Init {
	case "":
		cfg.Init = PlusPlusInit
	case RandomInit, PlusPlusInit:
	default:
		return nil, fmt.Errorf("init '%s': %w", cfg.Init, ErrUnknownOption)
	}
	switch cfg.Empty {
	case "":
		cfg.Empty = Freeze
	case Freeze, Reinit:
	default:
		return nil, fmt.Errorf("empty '%s': %w", cfg.Empty, ErrUnknownOption)
	}
	return &KMeans{cfg: cfg}, nil
}

// Cluster runs the assignment / update loop until the assignments stop changing
// or the iteration budget is exhausted.
func (k *KMeans) Cluster(x *mat.Dense) (Result, error) {
	n, _ := x.Dims()
	if k.cfg.K > n {
		return Result{}, fmt.Errorf("k=%d for %d samples: %w", k.cfg.K, n, ErrInvalidK)
	}

	rng := rand.New(rand.NewSource(uint64(k.cfg.Seed)))
	var centers *mat.Dense
	switch k.cfg.Init {
	case RandomInit:
		centers = randomCenters(rng, x, k.cfg.K)
	default:
		centers = plusPlusCenters(rng, x, k.cfg.K)
	}

	labels := Assign(x, centers)
	result := Result{}
	for it := 1; it <= k.cfg.Iterations; it++ {
		next, empty := Refine(x, centers, labels)
		if len(empty) > 0 {
			log.Debug().
				Ints("clusters", empty).
				Int("iteration", it).
				Str("policy", string(k.cfg.Empty)).
				Msg("empty clusters")
			if k.cfg.Empty == Reinit {
				reinit(x, next, centers, labels, empty)
			}
		}
		centers = next
		nextLabels := Assign(x, centers)
		result.Iterations = it
		if equal(labels, nextLabels) {
			result.Converged = true
			break
		}
		labels = nextLabels
	}

	result.Centers = centers
	result.Labels = labels
	if !result.Converged {
		log.Warn().
			Int("k", k.cfg.K).
			Int("iterations", result.Iterations).
			Msg("k-means did not converge")
	}
	return result, nil
}

// Nearest returns the index of the closest center.
// Equidistant centers resolve to the lowest index.
func Nearest(centers *mat.Dense, row []float64) int {
	k, _ := centers.Dims()
	idx := 0
	min := math.Inf(1)
	for c := 0; c < k; c++ {
		d := floats.Distance(row, centers.RawRowView(c), 2)
		if d < min {
			min = d
			idx = c
		}
	}
	return idx
}

// Assign labels every row with its nearest center.
func Assign(x, centers *mat.Dense) []int {
	n, _ := x.Dims()
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		labels[i] = Nearest(centers, x.RawRowView(i))
	}
	return labels
}

// Refine computes the mean of the points assigned to each center.
// Centers without points keep their previous position and are reported back.
func Refine(x, centers *mat.Dense, labels []int) (*mat.Dense, []int) {
	k, dim := centers.Dims()
	next := mat.NewDense(k, dim, nil)
	counts := make([]int, k)
	for i, l := range labels {
		floats.Add(next.RawRowView(l), x.RawRowView(i))
		counts[l]++
	}
	var empty []int
	for c := 0; c < k; c++ {
		row := next.RawRowView(c)
		if counts[c] == 0 {
			copy(row, centers.RawRowView(c))
			empty = append(empty, c)
			continue
		}
		floats.Scale(1/float64(counts[c]), row)
	}
	return next, empty
}

// reinit moves every empty center onto the point that lies furthest from the center it was assigned to.
func reinit(x, next, previous *mat.Dense, labels []int, empty []int) {
	n, _ := x.Dims()
	taken := make(map[int]bool)
	for _, c := range empty {
		far := -1
		max := -1.0
		for i := 0; i < n; i++ {
			if taken[i] {
				continue
			}
			d := floats.Distance(x.RawRowView(i), previous.RawRowView(labels[i]), 2)
			if d > max {
				max = d
				far = i
			}
		}
		if far < 0 {
			return
		}
		taken[far] = true
		next.SetRow(c, x.RawRowView(far))
	}
}

func randomCenters(rng *rand.Rand, x *mat.Dense, k int) *mat.Dense {
	n, dim := x.Dims()
	centers := mat.NewDense(k, dim, nil)
	perm := rng.Perm(n)
	for c := 0; c < k; c++ {
		centers.SetRow(c, x.RawRowView(perm[c]))
	}
	return centers
}

// plusPlusCenters picks every next center with probability proportional to its squared distance
// from the closest center already picked.
func plusPlusCenters(rng *rand.Rand, x *mat.Dense, k int) *mat.Dense {
	n, dim := x.Dims()
	centers := mat.NewDense(k, dim, nil)
	centers.SetRow(0, x.RawRowView(rng.Intn(n)))

	d2 := make([]float64, n)
	for c := 1; c < k; c++ {
		picked := centers.Slice(0, c, 0, dim).(*mat.Dense)
		for i := 0; i < n; i++ {
			row := x.RawRowView(i)
			d := floats.Distance(row, picked.RawRowView(Nearest(picked, row)), 2)
			d2[i] = d * d
		}
		sum := floats.Sum(d2)
		idx := rng.Intn(n)
		if sum > 0 {
			r := rng.Float64() * sum
			acc := 0.0
			for i, d := range d2 {
				acc += d
				if acc >= r && d > 0 {
					idx = i
					break
				}
			}
		}
		centers.SetRow(c, x.RawRowView(idx))
	}
	return centers
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// GoMLKMeans delegates the clustering to the goml implementation.
// Its initialisation draws from the global random source, so results are not seed-reproducible.
type GoMLKMeans struct {
	k          int
	iterations int
}

// NewGoMLKMeans creates a goml backed clusterer.
func NewGoMLKMeans(k, iterations int) *GoMLKMeans {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &GoMLKMeans{
		k:          k,
		iterations: iterations,
	}
}

func (g *GoMLKMeans) Cluster(x *mat.Dense) (Result, error) {
	n, dim := x.Dims()
	if g.k <= 0 || g.k > n {
		return Result{}, fmt.Errorf("k=%d for %d samples: %w", g.k, n, ErrInvalidK)
	}
	model := cluster.NewKMeans(g.k, g.iterations, Rows(x))
	if err := model.Learn(); err != nil {
		log.Error().
			Err(err).
			Int("k", g.k).
			Msg("error during training on k-means")
		return Result{}, fmt.Errorf("could not train: %w", err)
	}
	centers := mat.NewDense(g.k, dim, nil)
	for c, centroid := range model.Centroids {
		if c < g.k {
			centers.SetRow(c, centroid)
		}
	}
	guesses := model.Guesses()
	if len(guesses) != n {
		return Result{}, fmt.Errorf("could not align results with data [ %d | %d ]", len(guesses), n)
	}
	labels := make([]int, n)
	copy(labels, guesses)
	return Result{
		Centers:    centers,
		Labels:     labels,
		Iterations: g.iterations,
		Converged:  true,
	}, nil
}
