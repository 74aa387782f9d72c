package pipeline

import (
	"fmt"

	kcmath "github.com/drakos74/kcurves/internal/math"
	"github.com/drakos74/kcurves/internal/plot"
	"github.com/drakos74/kcurves/internal/synth"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

func (e *Engine) sinusoids() error {
	arms := e.cfg.SinusoidArms()
	functions := make([]synth.Sinusoid, len(arms))
	trainArms := make([]*mat.Dense, len(arms))
	testArms := make([]*mat.Dense, len(arms))
	for i, arm := range arms {
		f := arm.Sinusoid()
		// train and test samples come from the same generator, one after the other
		rng := synth.NewRand(arm.RandomState())
		train, err := f.Generate(rng, arm.TrainNumSamples)
		if err != nil {
			return fmt.Errorf("could not generate train samples for arm %d: %w", i, err)
		}
		test, err := f.Generate(rng, arm.TestNumSamples)
		if err != nil {
			return fmt.Errorf("could not generate test samples for arm %d: %w", i, err)
		}
		functions[i] = f
		trainArms[i] = train
		testArms[i] = test
		e.spectrum(i, f, train)
		log.Info().
			Int("arm", i).
			Float64("amplitude", f.Amplitude).
			Float64("frequency", f.Frequency).
			Float64("shift", f.Shift).
			Int("train", arm.TrainNumSamples).
			Int("test", arm.TestNumSamples).
			Msg("generated arm")
	}

	xTrainLow, yTrain, err := synth.Stack(trainArms...)
	if err != nil {
		return fmt.Errorf("could not stack train arms: %w", err)
	}
	xTestLow, yTest, err := synth.Stack(testArms...)
	if err != nil {
		return fmt.Errorf("could not stack test arms: %w", err)
	}
	e.metrics.Observe(trainSplit, "low", len(yTrain))
	e.metrics.Observe(testSplit, "low", len(yTest))

	policy, transformer, err := e.transformer()
	if err != nil {
		return err
	}
	preprocess := policy != synth.NoPreprocessing
	trainLow, testLow := xTrainLow, xTestLow
	if preprocess {
		if trainLow, err = synth.FitTransform(transformer, xTrainLow); err != nil {
			return fmt.Errorf("could not preprocess train data with '%s': %w", policy, err)
		}
		if testLow, err = transformer.Transform(xTestLow); err != nil {
			return fmt.Errorf("could not preprocess test data with '%s': %w", policy, err)
		}
	}

	shapes, err := e.cfg.Transformation.Shapes()
	if err != nil {
		return err
	}
	lifter, err := synth.NewLifter(synth.NewRand(e.cfg.Transformation.Seed), e.cfg.Transformation.Activation(), shapes...)
	if err != nil {
		return fmt.Errorf("could not create lifter: %w", err)
	}
	xTrain, err := lifter.Lift(trainLow)
	if err != nil {
		return fmt.Errorf("could not lift train data: %w", err)
	}
	xTest, err := lifter.Lift(testLow)
	if err != nil {
		return fmt.Errorf("could not lift test data: %w", err)
	}
	_, dim := xTrain.Dims()
	log.Info().
		Int("maps", len(shapes)).
		Int("dim", dim).
		Str("activation", string(e.cfg.Transformation.Activation())).
		Msg("lifted samples")

	if err := e.matrix(trainSplit, "X_low", xTrainLow); err != nil {
		return err
	}
	if err := e.matrix(testSplit, "X_low", xTestLow); err != nil {
		return err
	}
	if preprocess {
		if err := e.matrix(trainSplit, "X_low_normalized", trainLow); err != nil {
			return err
		}
		if err := e.matrix(testSplit, "X_low_normalized", testLow); err != nil {
			return err
		}
	}
	if err := e.matrix(trainSplit, "X", xTrain); err != nil {
		return err
	}
	if err := e.labels(trainSplit, "Y", yTrain); err != nil {
		return err
	}
	if err := e.matrix(testSplit, "X", xTest); err != nil {
		return err
	}
	if err := e.labels(testSplit, "Y", yTest); err != nil {
		return err
	}
	for i, w := range lifter.Maps() {
		if err := e.save(trainSplit, fmt.Sprintf("W_%d", i), w); err != nil {
			return err
		}
	}

	trainCurves := make([]plot.Arm, len(arms))
	testCurves := make([]plot.Arm, len(arms))
	for i, arm := range arms {
		style := plot.ClassStyle(i)
		if arm.CharToPlot != "" {
			style.Marker = arm.CharToPlot
		}
		if arm.ColorToPlot != "" {
			style.Color = arm.ColorToPlot
		}
		name := fmt.Sprintf("F%d", i+1)
		trainCurves[i] = plot.Arm{Name: name, Function: functions[i], Samples: trainArms[i], Style: style}
		testCurves[i] = plot.Arm{Name: name, Function: functions[i], Samples: testArms[i], Style: style}
	}
	figures := []plot.Figure{
		plot.Curves("01_functions_train", "Train data generated", trainCurves...),
		plot.Curves("02_functions_test", "Test data generated", testCurves...),
	}

	views := []view{
		{"03_train_low", "synthetic training data in low-dimensional space", trainSplit, "low", xTrainLow, yTrain},
		{"04_test_low", "synthetic test data in low-dimensional space", testSplit, "low", xTestLow, yTest},
	}
	if preprocess {
		views = append(views,
			view{"03.1_train_low_normalized", "synthetic normalized training data in low-dimensional space", trainSplit, "low_normalized", trainLow, yTrain},
			view{"04.1_test_low_normalized", "synthetic normalized test data in low-dimensional space", testSplit, "low_normalized", testLow, yTest},
		)
	}
	for _, v := range views {
		labels := v.y
		var centers mat.Matrix
		title := v.title
		if e.cfg.KMeans.Active(e.cfg.Mode) {
			result, err := e.cluster(v.split, v.space, v.x, len(arms))
			if err != nil {
				return err
			}
			labels = result.Labels
			centers = result.Centers
			title = "k-means on " + title
		}
		fig, err := plot.Classes(v.name, title, v.x, labels, centers)
		if err != nil {
			return err
		}
		figures = append(figures, fig)
	}

	if err := e.validate(xTrain, yTrain, xTest, yTest); err != nil {
		return err
	}
	return e.draw(figures...)
}

// view is a 2D figure of the low dimensional samples.
type view struct {
	name, title, split, space string
	x                         *mat.Dense
	y                         []int
}

// spectrum estimates the frequency of grid sampled arms from their noisy values.
func (e *Engine) spectrum(arm int, f synth.Sinusoid, samples *mat.Dense) {
	n, _ := samples.Dims()
	if f.Sampling != synth.Grid || n < 4 {
		return
	}
	step := f.Interval.Width() / float64(n-1)
	estimated := kcmath.FFT(mat.Col(nil, 1, samples)).AngularFrequency(step)
	e.run.Spectrum = append(e.run.Spectrum, Spectrum{
		Arm:       arm,
		Frequency: f.Frequency,
		Estimated: estimated,
	})
	log.Debug().
		Int("arm", arm).
		Str("frequency", kcmath.Format(f.Frequency)).
		Str("estimated", kcmath.Format(estimated)).
		Msg("arm spectrum")
}
