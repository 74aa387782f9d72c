package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/drakos74/kcurves/internal/math/ml"
	"github.com/drakos74/kcurves/internal/storage"
	"github.com/drakos74/kcurves/internal/synth"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

// Mode is the generation pipeline to run.
type Mode string

const (
	Blobs     Mode = "blobs"
	Sinusoids Mode = "sinusoids"
)

// Config is the configuration of a single generation run.
type Config struct {
	Name           string         `yaml:"name"`
	Mode           Mode           `yaml:"mode"`
	Verbose        *bool          `yaml:"verbose"`
	Data           Data           `yaml:"data"`
	Clusters       *Clusters      `yaml:"clusters"`
	F1             *Arm           `yaml:"F1"`
	F2             *Arm           `yaml:"F2"`
	Arms           []Arm          `yaml:"arms"`
	Transformation Transformation `yaml:"transformation"`
	KMeans         KMeans         `yaml:"kmeans"`
	Validate       Validate       `yaml:"validate"`
}

// Data defines what happens to the generated data.
type Data struct {
	Save        bool    `yaml:"save"`
	Plot        bool    `yaml:"plot"`
	Preprocess  string  `yaml:"preprocess"`
	Normalize   bool    `yaml:"normalize"`
	Scale       bool    `yaml:"scale"`
	ScaleFactor float64 `yaml:"scale_factor"`
	Format      string  `yaml:"format"`
	Compress    string  `yaml:"compress"`
	Registry    string  `yaml:"registry"`
	Train       Split   `yaml:"train"`
	Test        Split   `yaml:"test"`
	Plots       Plots   `yaml:"plots"`
}

// Split is the size and output directory of the train or test data.
type Split struct {
	NumSamples int    `yaml:"num_samples"`
	Path       string `yaml:"path"`
}

// Plots is the prefix of the run directory.
type Plots struct {
	Path string `yaml:"path"`
}

// Clusters configures the blob generator.
type Clusters struct {
	NumCenters  int         `yaml:"num_centers"`
	Centers     [][]float64 `yaml:"centers"`
	CenterBox   []float64   `yaml:"center_box"`
	ClusterStd  float64     `yaml:"cluster_std"`
	RandomState int64       `yaml:"random_state"`
	Dim         int         `yaml:"dim"`
	MaxRetries  int         `yaml:"max_retries"`
}

// Arm configures one sinusoid arm.
type Arm struct {
	Amp             float64   `yaml:"amp"`
	Frec            float64   `yaml:"frec"`
	Shift           float64   `yaml:"shift"`
	Interval        []float64 `yaml:"interval"`
	Noise           float64   `yaml:"noise"`
	Sampling        string    `yaml:"sampling"`
	TrainNumSamples int       `yaml:"train_num_samples"`
	TestNumSamples  int       `yaml:"test_num_samples"`
	Seed            *int64    `yaml:"seed"`
	CharToPlot      string    `yaml:"char_to_plot"`
	ColorToPlot     string    `yaml:"color_to_plot"`
}

// Transformation configures the nonlinear lifting.
type Transformation struct {
	ListDimensions [][]int `yaml:"list_dimensions"`
	NonLinear      string  `yaml:"non_linear"`
	Seed           int64   `yaml:"seed"`
}

// KMeans configures the clustering of the generated data.
type KMeans struct {
	Enabled       *bool  `yaml:"enabled"`
	Init          string `yaml:"init"`
	MaxIterations int    `yaml:"max_iterations"`
	Empty         string `yaml:"empty"`
	Backend       string `yaml:"backend"`
	Seed          int64  `yaml:"seed"`
}

// Validate configures the separability check.
type Validate struct {
	Enabled bool `yaml:"enabled"`
	Trees   int  `yaml:"trees"`
}

// Load reads, completes and validates the config at the given path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config '%s': %w", path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("could not load config '%s': %w", path, err)
	}
	log.Info().
		Str("path", path).
		Str("name", cfg.Name).
		Str("mode", string(cfg.Mode)).
		Msg("loaded config")
	return cfg, nil
}

// MustLoad loads the config and panics if it is not valid.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("could not load config from %s: %s", path, err.Error()))
	}
	return cfg
}

// Parse decodes a yaml document into a validated config.
func Parse(b []byte) (*Config, error) {
	cfg := new(Config)
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal: %s: %w", err.Error(), ErrInvalid)
	}
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) defaults() {
	if c.Mode == "" {
		if len(c.Arms) > 0 || c.F1 != nil {
			c.Mode = Sinusoids
		} else {
			c.Mode = Blobs
		}
	}
	if c.Data.ScaleFactor == 0 {
		c.Data.ScaleFactor = 1
	}
	if c.Data.Format == "" {
		c.Data.Format = string(storage.NPY)
	}
	if c.Clusters != nil && c.Clusters.MaxRetries <= 0 {
		c.Clusters.MaxRetries = synth.DefaultMaxRetries
	}
	if c.KMeans.MaxIterations <= 0 {
		c.KMeans.MaxIterations = ml.DefaultIterations
	}
	if c.Validate.Trees <= 0 {
		c.Validate.Trees = ml.DefaultTrees
	}
	for i := range c.Arms {
		c.Arms[i].seed(i)
	}
	for i, arm := range []*Arm{c.F1, c.F2} {
		if arm != nil {
			arm.seed(i)
		}
	}
}

// IsVerbose reports whether the run logs its progress, true unless disabled.
func (c *Config) IsVerbose() bool {
	return c.Verbose == nil || *c.Verbose
}

// seed defaults the arm generator seed to the arm index,
// so that arms never share a noise sequence unless configured to.
func (a *Arm) seed(index int) {
	if a.Seed == nil {
		s := int64(index)
		a.Seed = &s
	}
}

// RandomState returns the seed of the arm generator.
func (a Arm) RandomState() int64 {
	if a.Seed == nil {
		return 0
	}
	return *a.Seed
}

func invalid(field string, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s: %w", field, fmt.Sprintf(format, args...), ErrInvalid)
}

func (c *Config) validate() error {
	if _, err := c.Preprocessing(); err != nil {
		return invalid("data.preprocess", "%s", err.Error())
	}
	switch storage.Format(c.Data.Format) {
	case storage.NPY, storage.JSON:
	default:
		return invalid("data.format", "unknown format '%s'", c.Data.Format)
	}
	switch c.Data.Compress {
	case "", "xz":
	default:
		return invalid("data.compress", "unknown compression '%s'", c.Data.Compress)
	}
	if _, err := synth.ParseActivation(c.Transformation.NonLinear); err != nil {
		return invalid("transformation.non_linear", "%s", err.Error())
	}
	if _, err := c.Transformation.Shapes(); err != nil {
		return err
	}
	if err := c.KMeans.check(); err != nil {
		return err
	}

	switch c.Mode {
	case Blobs:
		return c.validateBlobs()
	case Sinusoids:
		return c.validateSinusoids()
	}
	return invalid("mode", "unknown mode '%s'", c.Mode)
}

func (c *Config) validateBlobs() error {
	if c.Data.Train.NumSamples <= 0 {
		return invalid("data.train.num_samples", "must be positive: %d", c.Data.Train.NumSamples)
	}
	if c.Data.Test.NumSamples <= 0 {
		return invalid("data.test.num_samples", "must be positive: %d", c.Data.Test.NumSamples)
	}
	cl := c.Clusters
	if cl == nil {
		return invalid("clusters", "missing")
	}
	if cl.ClusterStd <= 0 {
		return invalid("clusters.cluster_std", "must be positive: %v", cl.ClusterStd)
	}
	if len(cl.Centers) > 0 {
		dim := len(cl.Centers[0])
		for i, center := range cl.Centers {
			if len(center) == 0 || len(center) != dim {
				return invalid("clusters.centers", "center %d has %d coordinates instead of %d", i, len(center), dim)
			}
		}
		return nil
	}
	if cl.NumCenters <= 0 {
		return invalid("clusters.num_centers", "must be positive: %d", cl.NumCenters)
	}
	if cl.Dim <= 0 {
		return invalid("clusters.dim", "must be positive: %d", cl.Dim)
	}
	if len(cl.CenterBox) != 2 {
		return invalid("clusters.center_box", "expected [min, max], got %v", cl.CenterBox)
	}
	if cl.CenterBox[0] >= cl.CenterBox[1] {
		return invalid("clusters.center_box", "min must be below max: %v", cl.CenterBox)
	}
	return nil
}

func (c *Config) validateSinusoids() error {
	arms := c.SinusoidArms()
	if len(arms) == 0 {
		return invalid("arms", "at least one arm is required")
	}
	for i, arm := range arms {
		field := fmt.Sprintf("arms[%d]", i)
		if len(arm.Interval) != 2 {
			return invalid(field+".interval", "expected [a, b], got %v", arm.Interval)
		}
		if arm.Interval[0] >= arm.Interval[1] {
			return invalid(field+".interval", "a must be below b: %v", arm.Interval)
		}
		if arm.TrainNumSamples <= 0 {
			return invalid(field+".train_num_samples", "must be positive: %d", arm.TrainNumSamples)
		}
		if arm.TestNumSamples <= 0 {
			return invalid(field+".test_num_samples", "must be positive: %d", arm.TestNumSamples)
		}
		if arm.Noise < 0 {
			return invalid(field+".noise", "must not be negative: %v", arm.Noise)
		}
		if _, err := synth.ParseSampling(arm.Sampling); err != nil {
			return invalid(field+".sampling", "%s", err.Error())
		}
	}
	shapes, _ := c.Transformation.Shapes()
	if len(shapes) > 0 && shapes[0][0] != 2 {
		return invalid("transformation.list_dimensions", "the first map must take 2 dimensions, got %d", shapes[0][0])
	}
	return nil
}

func (k KMeans) check() error {
	switch ml.Init(k.Init) {
	case "", ml.RandomInit, ml.PlusPlusInit:
	default:
		return invalid("kmeans.init", "unknown init '%s'", k.Init)
	}
	switch ml.Empty(k.Empty) {
	case "", ml.Freeze, ml.Reinit:
	default:
		return invalid("kmeans.empty", "unknown policy '%s'", k.Empty)
	}
	switch ml.Backend(k.Backend) {
	case "", ml.Lloyd, ml.GoML:
	default:
		return invalid("kmeans.backend", "unknown backend '%s'", k.Backend)
	}
	return nil
}

// Preprocessing resolves the preprocessing policy.
// An explicit policy wins over the normalize and scale flags, normalize wins over scale.
func (c *Config) Preprocessing() (synth.Policy, error) {
	if c.Data.Preprocess != "" {
		return synth.ParsePolicy(c.Data.Preprocess)
	}
	if c.Data.Normalize {
		return synth.ZScore, nil
	}
	if c.Data.Scale {
		return synth.Scale, nil
	}
	return synth.NoPreprocessing, nil
}

// SinusoidArms returns the configured arms, the arms list takes precedence over F1 and F2.
func (c *Config) SinusoidArms() []Arm {
	if len(c.Arms) > 0 {
		return c.Arms
	}
	var arms []Arm
	for _, arm := range []*Arm{c.F1, c.F2} {
		if arm != nil {
			arms = append(arms, *arm)
		}
	}
	return arms
}

// Blobs creates the blob generator for the given number of samples.
func (c Clusters) Blobs(samples int) synth.Blobs {
	b := synth.Blobs{
		Samples:    samples,
		Dim:        c.Dim,
		Centers:    c.NumCenters,
		Std:        c.ClusterStd,
		Seed:       c.RandomState,
		MaxRetries: c.MaxRetries,
	}
	if len(c.CenterBox) == 2 {
		b.Box = synth.Box{Min: c.CenterBox[0], Max: c.CenterBox[1]}
	}
	if len(c.Centers) > 0 {
		b.Fixed = matrix(c.Centers)
		b.Centers = len(c.Centers)
		b.Dim = len(c.Centers[0])
	}
	return b
}

// Sinusoid creates the arm descriptor.
func (a Arm) Sinusoid() synth.Sinusoid {
	s := synth.Sinusoid{
		Amplitude: a.Amp,
		Frequency: a.Frec,
		Shift:     a.Shift,
		Noise:     a.Noise,
		Sampling:  synth.Sampling(a.Sampling),
	}
	if len(a.Interval) == 2 {
		s.Interval = synth.Box{Min: a.Interval[0], Max: a.Interval[1]}
	}
	if s.Sampling == "" {
		s.Sampling = synth.Grid
	}
	return s
}

// Shapes returns the shapes of the lifting maps.
func (t Transformation) Shapes() ([]synth.Shape, error) {
	shapes := make([]synth.Shape, len(t.ListDimensions))
	for i, d := range t.ListDimensions {
		field := fmt.Sprintf("transformation.list_dimensions[%d]", i)
		if len(d) != 2 {
			return nil, invalid(field, "expected [in, out], got %v", d)
		}
		if d[0] <= 0 || d[1] <= 0 {
			return nil, invalid(field, "dimensions must be positive: %v", d)
		}
		if i > 0 && t.ListDimensions[i-1][1] != d[0] {
			return nil, invalid(field, "%v does not chain with %v", d, t.ListDimensions[i-1])
		}
		shapes[i] = synth.Shape{d[0], d[1]}
	}
	return shapes, nil
}

// Activation returns the nonlinearity of the lifting.
func (t Transformation) Activation() synth.Activation {
	a, _ := synth.ParseActivation(t.NonLinear)
	return a
}

// Active reports whether the clustering runs for the given mode.
// Sinusoid runs are clustered unless disabled, blob runs only when enabled.
func (k KMeans) Active(mode Mode) bool {
	if k.Enabled != nil {
		return *k.Enabled
	}
	return mode == Sinusoids
}

// Config creates the clusterer configuration for k clusters.
func (k KMeans) Config(clusters int) ml.Config {
	return ml.Config{
		K:          clusters,
		Iterations: k.MaxIterations,
		Init:       ml.Init(k.Init),
		Empty:      ml.Empty(k.Empty),
		Seed:       k.Seed,
	}
}

func matrix(rows [][]float64) *mat.Dense {
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		m.SetRow(i, row)
	}
	return m
}
