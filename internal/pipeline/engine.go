package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/drakos74/kcurves/infra/config"
	"github.com/drakos74/kcurves/internal/math/ml"
	"github.com/drakos74/kcurves/internal/metrics"
	"github.com/drakos74/kcurves/internal/plot"
	"github.com/drakos74/kcurves/internal/storage"
	"github.com/drakos74/kcurves/internal/storage/file"
	"github.com/drakos74/kcurves/internal/storage/file/json"
	"github.com/drakos74/kcurves/internal/storage/file/npy"
	"github.com/drakos74/kcurves/internal/storage/sqlite"
	"github.com/drakos74/kcurves/internal/synth"
	kctime "github.com/drakos74/kcurves/internal/time"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

const (
	plotsDir    = "plots"
	metricsFile = "metrics.prom"
	summaryKey  = "summary"

	trainSplit = "train"
	testSplit  = "test"
)

// Engine executes a single generation run.
type Engine struct {
	cfg      *config.Config
	run      *Run
	arrays   storage.Persistence
	summary  storage.Persistence
	plotter  *plot.Plotter
	metrics  *metrics.Metrics
	registry storage.Registry
	closers  []io.Closer
}

// New creates the engine for the config, starting now.
func New(cfg *config.Config) (*Engine, error) {
	return NewAt(cfg, time.Now())
}

// NewAt creates the engine for a run started at the given time.
func NewAt(cfg *config.Config, start time.Time) (*Engine, error) {
	dir := kctime.RunDir(cfg.Data.Plots.Path, start)
	if err := file.MkDir(dir); err != nil {
		return nil, fmt.Errorf("could not create run dir: %w", err)
	}
	run := newRun(cfg, dir, start)

	compress := cfg.Data.Compress == "xz"
	var arrays storage.Persistence
	switch storage.Format(cfg.Data.Format) {
	case storage.JSON:
		arrays = json.NewJsonBlob(compress, cfg.IsVerbose())
	default:
		arrays = npy.NewStorage(compress, cfg.IsVerbose())
	}

	e := &Engine{
		cfg:      cfg,
		run:      run,
		arrays:   arrays,
		summary:  json.NewJsonBlob(false, false).Indented(),
		plotter:  plot.New(filepath.Join(dir, plotsDir), json.NewJsonBlob(false, false)),
		metrics:  metrics.New(run.ID, run.Mode),
		registry: storage.NewVoidRegistry(),
	}

	if cfg.Data.Registry != "" {
		registry, err := sqlite.NewRegistry(cfg.Data.Registry)
		if err != nil {
			return nil, fmt.Errorf("could not open registry: %w", err)
		}
		e.registry = registry
		e.closers = append(e.closers, registry)
	}
	return e, nil
}

// Close releases the resources held by the engine.
func (e *Engine) Close() error {
	var first error
	for _, c := range e.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run returns the record of the current run.
func (e *Engine) Run() *Run {
	return e.run
}

// Execute runs the pipeline of the configured mode and writes the run artifacts.
func (e *Engine) Execute() (*Run, error) {
	log.Info().
		Str("id", e.run.ID).
		Str("name", e.run.Name).
		Str("mode", e.run.Mode).
		Str("dir", e.run.Dir).
		Msg("starting run")

	var err error
	switch e.cfg.Mode {
	case config.Blobs:
		err = e.blobs()
	case config.Sinusoids:
		err = e.sinusoids()
	default:
		err = fmt.Errorf("mode '%s': %w", e.cfg.Mode, config.ErrInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("could not complete run '%s': %w", e.run.ID, err)
	}

	if err := e.finish(); err != nil {
		return nil, err
	}
	log.Info().
		Str("id", e.run.ID).
		Float64("duration", e.run.Duration).
		Int("files", len(e.run.Files)).
		Msg("run completed")
	return e.run, nil
}

func (e *Engine) finish() error {
	e.run.Duration = kctime.Elapsed(e.run.Start)
	e.metrics.Duration.Set(e.run.Duration)
	if err := e.metrics.WriteTo(filepath.Join(e.run.Dir, metricsFile)); err != nil {
		return err
	}
	if err := e.summary.Store(storage.Key{Dir: e.run.Dir, Label: summaryKey}, e.run); err != nil {
		return fmt.Errorf("could not store summary: %w", err)
	}
	if err := e.registry.Put(storage.K{Run: e.run.ID, Label: e.run.Name}, e.run); err != nil {
		return fmt.Errorf("could not register run: %w", err)
	}
	return nil
}

// Generate executes a single run for the config.
func Generate(cfg *config.Config) (*Run, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := e.Close(); err != nil {
			log.Warn().Err(err).Msg("could not close engine")
		}
	}()
	return e.Execute()
}

// transformer creates the preprocessing of the run.
func (e *Engine) transformer() (synth.Policy, synth.Transformer, error) {
	policy, err := e.cfg.Preprocessing()
	if err != nil {
		return "", nil, err
	}
	t, err := synth.NewTransformer(policy, e.cfg.Data.ScaleFactor)
	if err != nil {
		return "", nil, err
	}
	return policy, t, nil
}

// dir returns the output directory of the split.
func (e *Engine) dir(split string) string {
	if split == testSplit {
		return e.cfg.Data.Test.Path
	}
	return e.cfg.Data.Train.Path
}

// save stores the value under the split directory, if saving is enabled.
func (e *Engine) save(split, label string, value interface{}) error {
	if !e.cfg.Data.Save {
		return nil
	}
	k := storage.Key{Dir: e.dir(split), Label: label}
	if err := e.arrays.Store(k, value); err != nil {
		return fmt.Errorf("could not save '%s' for %s: %w", label, split, err)
	}
	e.run.Files = append(e.run.Files, k.Path())
	return nil
}

// matrix records the shape and statistics of the matrix and saves it.
func (e *Engine) matrix(split, label string, x *mat.Dense) error {
	e.run.record(split+"/"+label, x)
	return e.save(split, label, x)
}

// labels records the size of the label vector and saves it.
func (e *Engine) labels(split, label string, y []int) error {
	e.run.Shapes[split+"/"+label] = [2]int{len(y), 1}
	return e.save(split, label, y)
}

// cluster runs the k-means of the config on x and records the outcome under the given name.
func (e *Engine) cluster(split, space string, x *mat.Dense, k int) (ml.Result, error) {
	clusterer, err := ml.New(ml.Backend(e.cfg.KMeans.Backend), e.cfg.KMeans.Config(k))
	if err != nil {
		return ml.Result{}, fmt.Errorf("could not create clusterer: %w", err)
	}
	result, err := clusterer.Cluster(x)
	if err != nil {
		return ml.Result{}, fmt.Errorf("could not cluster %s data in %s space: %w", split, space, err)
	}
	e.run.Clusters[split+"/"+space] = ml.Describe(result)
	e.metrics.Iterations.WithLabelValues(split, space).Set(float64(result.Iterations))
	log.Info().
		Str("split", split).
		Str("space", space).
		Int("k", k).
		Int("iterations", result.Iterations).
		Bool("converged", result.Converged).
		Ints("sizes", result.Sizes()).
		Msg("k-means")
	return result, nil
}

// validate checks how well the final classes can be told apart.
func (e *Engine) validate(xTrain *mat.Dense, yTrain []int, xTest *mat.Dense, yTest []int) error {
	if !e.cfg.Validate.Enabled {
		return nil
	}
	meta, err := ml.Validate(e.cfg.Validate.Trees, xTrain, yTrain, xTest, yTest)
	if err != nil {
		return fmt.Errorf("could not validate: %w", err)
	}
	e.run.Validation = &meta
	e.metrics.Accuracy.Set(meta.Accuracy)
	log.Info().
		Int("trees", e.cfg.Validate.Trees).
		Float64("accuracy", meta.Accuracy).
		Msg("validation")
	return nil
}

// draw stores the figures, if plotting is enabled.
func (e *Engine) draw(figures ...plot.Figure) error {
	if !e.cfg.Data.Plot {
		return nil
	}
	for _, fig := range figures {
		if err := e.plotter.Plot(fig); err != nil {
			return err
		}
	}
	return nil
}
