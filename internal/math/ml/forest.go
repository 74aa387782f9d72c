package ml

import (
	"fmt"

	kcmath "github.com/drakos74/kcurves/internal/math"
	randomforest "github.com/malaschitz/randomForest"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// DefaultTrees is the default size of the forest.
const DefaultTrees = 100

// RandomForest is a classifier used to check how separable the generated classes are.
type RandomForest struct {
	trees  int
	forest *randomforest.Forest
}

// NewForest creates a forest of n trees.
func NewForest(n int) *RandomForest {
	if n <= 0 {
		n = DefaultTrees
	}
	return &RandomForest{
		trees: n,
	}
}

// Train fits the forest and returns the feature importance.
func (rf *RandomForest) Train(x mat.Matrix, y []int) ([]float64, error) {
	r, _ := x.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("could not align labels with data [ %d | %d ]", len(y), r)
	}
	if r == 0 {
		return nil, fmt.Errorf("no data to train on")
	}
	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: Rows(x), Class: y}
	forest.Train(rf.trees)
	rf.forest = forest
	log.Debug().Int("trees", rf.trees).Int("samples", r).Msg("trained forest")
	return forest.FeatureImportance, nil
}

// Predict returns the class with the most votes.
func (rf *RandomForest) Predict(x []float64) (int, error) {
	if rf.forest == nil {
		return 0, fmt.Errorf("no model present")
	}
	return kcmath.ArgMax(rf.forest.Vote(x)), nil
}

// Accuracy returns the fraction of correctly predicted rows.
func (rf *RandomForest) Accuracy(x mat.Matrix, y []int) (float64, error) {
	r, _ := x.Dims()
	if r != len(y) {
		return 0, fmt.Errorf("could not align labels with data [ %d | %d ]", len(y), r)
	}
	if r == 0 {
		return 0, nil
	}
	hits := 0
	for i := 0; i < r; i++ {
		p, err := rf.Predict(mat.Row(nil, i, x))
		if err != nil {
			return 0, err
		}
		if p == y[i] {
			hits++
		}
	}
	return float64(hits) / float64(r), nil
}

// Validate trains on the train set and returns the metadata with the accuracy on the test set.
func Validate(trees int, xTrain mat.Matrix, yTrain []int, xTest mat.Matrix, yTest []int) (Metadata, error) {
	rf := NewForest(trees)
	features, err := rf.Train(xTrain, yTrain)
	if err != nil {
		return Metadata{}, fmt.Errorf("could not train forest: %w", err)
	}
	accuracy, err := rf.Accuracy(xTest, yTest)
	if err != nil {
		return Metadata{}, fmt.Errorf("could not evaluate forest: %w", err)
	}
	return Metadata{
		Samples:  len(yTest),
		Accuracy: accuracy,
		Features: features,
	}, nil
}
