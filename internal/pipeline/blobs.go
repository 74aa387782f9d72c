package pipeline

import (
	"fmt"

	"github.com/drakos74/kcurves/internal/plot"
	"github.com/drakos74/kcurves/internal/synth"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

func (e *Engine) blobs() error {
	generator := e.cfg.Clusters.Blobs(e.cfg.Data.Train.NumSamples)
	train, err := generator.Generate()
	if err != nil {
		return fmt.Errorf("could not generate blobs: %w", err)
	}
	// same centers and seed for the test data
	test := train.Test(e.cfg.Data.Test.NumSamples, generator.Std)

	e.run.Seed = train.Seed
	e.run.Retries = train.Retries
	e.metrics.Retries.Set(float64(train.Retries))
	log.Info().
		Int64("seed", train.Seed).
		Int("retries", train.Retries).
		Int("centers", generator.Centers).
		Msg("generated blobs")

	policy, transformer, err := e.transformer()
	if err != nil {
		return err
	}
	xTrain, err := synth.FitTransform(transformer, train.X)
	if err != nil {
		return fmt.Errorf("could not preprocess train data with '%s': %w", policy, err)
	}
	xTest, err := transformer.Transform(test.X)
	if err != nil {
		return fmt.Errorf("could not preprocess test data with '%s': %w", policy, err)
	}
	centers, err := transformer.Transform(train.Centers)
	if err != nil {
		return fmt.Errorf("could not preprocess centers with '%s': %w", policy, err)
	}

	e.metrics.Observe(trainSplit, "raw", len(train.Y))
	e.metrics.Observe(testSplit, "raw", len(test.Y))

	if err := e.matrix(trainSplit, "X_train_raw", train.X); err != nil {
		return err
	}
	if err := e.matrix(trainSplit, "X_train", xTrain); err != nil {
		return err
	}
	if err := e.labels(trainSplit, "Y_train", train.Y); err != nil {
		return err
	}
	if err := e.matrix(testSplit, "X_test_raw", test.X); err != nil {
		return err
	}
	if err := e.matrix(testSplit, "X_test", xTest); err != nil {
		return err
	}
	if err := e.labels(testSplit, "Y_test", test.Y); err != nil {
		return err
	}

	figures := make([]plot.Figure, 0, 5)
	for _, f := range []struct {
		name, title string
		x           *mat.Dense
		y           []int
		centers     *mat.Dense
	}{
		{"01_train_raw", "Training data (raw)", train.X, train.Y, train.Centers},
		{"01.1_train", "Training data", xTrain, train.Y, centers},
		{"02_test_raw", "Test data (raw)", test.X, test.Y, test.Centers},
		{"02.1_test", "Test data", xTest, test.Y, centers},
	} {
		fig, err := plot.Classes(f.name, f.title, f.x, f.y, f.centers)
		if err != nil {
			return err
		}
		figures = append(figures, fig)
	}

	if e.cfg.KMeans.Active(e.cfg.Mode) {
		k, _ := train.Centers.Dims()
		result, err := e.cluster(trainSplit, "final", xTrain, k)
		if err != nil {
			return err
		}
		fig, err := plot.Classes("03_train_kmeans", "k-means on training data", xTrain, result.Labels, result.Centers)
		if err != nil {
			return err
		}
		figures = append(figures, fig)
	}

	if err := e.validate(xTrain, train.Y, xTest, test.Y); err != nil {
		return err
	}
	return e.draw(figures...)
}
