// Package decider implements binary classifiers over feature points.
//
// Every decider returns, for each point, a membership score in [0, 1] for the
// searched class. Supervised deciders fit on searched points labelled 1 and
// other points labelled 0; unsupervised and rule deciders ignore the labels.
package decider

import (
	"errors"
	"fmt"
	"math"

	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/metrics"
)

// DefaultThreshold is the score at which a point passes a decider.
const DefaultThreshold = 0.5

// ErrNotLearned is returned when scoring a decider that has not been trained.
var ErrNotLearned = errors.New("decider has not learned yet")

// Decider scores feature points.
type Decider interface {
	// Name returns the registry name.
	Name() string

	// Learn trains on searched (label 1) and other (label 0) points,
	// replacing any previous state.
	Learn(searched, others [][]float64) error

	// Evaluate returns one score in [0, 1] per point.
	Evaluate(coords [][]float64) ([]float64, error)

	// Threshold returns the pass threshold.
	Threshold() float64
}

// Filter reports evaluate(coords) >= threshold elementwise.
func Filter(d Decider, coords [][]float64) ([]bool, error) {
	scores, err := d.Evaluate(coords)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(scores))
	for i, s := range scores {
		out[i] = s >= d.Threshold()
	}
	return out, nil
}

// Statistic evaluates d on a labelled sample.
func Statistic(d Decider, searched, others [][]float64) (domain.EvaluationRecord, error) {
	sp, err := Filter(d, searched)
	if err != nil {
		return domain.EvaluationRecord{}, err
	}
	op, err := Filter(d, others)
	if err != nil {
		return domain.EvaluationRecord{}, err
	}
	return metrics.Count(sp, op).Record(), nil
}

// model is the trainable core wrapped by Classifier.
type model interface {
	fit(x [][]float64, y []int) error
	score(x []float64) float64
}

// Classifier adapts a model to the Decider contract: it validates inputs,
// wraps fit failures into LearningError and sanitises scores.
type Classifier struct {
	name      string
	threshold float64
	newModel  func() model

	m   model
	dim int // feature dimension seen in Learn, 0 = any
}

func newClassifier(name string, threshold float64, newModel func() model) (*Classifier, error) {
	if threshold < 0 || threshold > 1 || math.IsNaN(threshold) {
		return nil, fmt.Errorf("%w: threshold %v outside [0, 1]", domain.ErrQueryInput, threshold)
	}
	return &Classifier{name: name, threshold: threshold, newModel: newModel}, nil
}

func (c *Classifier) Name() string {
	return c.name
}

func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Learned reports whether the classifier can score points.
func (c *Classifier) Learned() bool {
	return c.m != nil
}

func (c *Classifier) Learn(searched, others [][]float64) error {
	if len(searched) == 0 || len(others) == 0 {
		return fmt.Errorf("%w: %s needs non-empty searched and other samples (got %d and %d)",
			domain.ErrQueryInput, c.name, len(searched), len(others))
	}
	x := make([][]float64, 0, len(searched)+len(others))
	y := make([]int, 0, len(searched)+len(others))
	for _, p := range searched {
		x = append(x, p)
		y = append(y, 1)
	}
	for _, p := range others {
		x = append(x, p)
		y = append(y, 0)
	}
	dim := len(x[0])
	for _, p := range x {
		if len(p) != dim || dim == 0 {
			return fmt.Errorf("%w: %s got feature points of inconsistent dimension", domain.ErrQueryInput, c.name)
		}
	}

	m := c.newModel()
	if err := m.fit(x, y); err != nil {
		c.m = nil
		return domain.NewLearningError(c.name, x, y, err)
	}
	c.m = m
	c.dim = dim
	return nil
}

func (c *Classifier) Evaluate(coords [][]float64) ([]float64, error) {
	if c.m == nil {
		return nil, fmt.Errorf("%s: %w", c.name, ErrNotLearned)
	}
	out := make([]float64, len(coords))
	for i, p := range coords {
		if c.dim > 0 && len(p) != c.dim {
			return nil, fmt.Errorf("%w: %s expects %d coordinates, got %d", domain.ErrQueryInput, c.name, c.dim, len(p))
		}
		out[i] = sanitise(c.m.score(p))
	}
	return out, nil
}

// sanitise maps NaN to 0 and clips to [0, 1].
func sanitise(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	return math.Max(0, math.Min(1, s))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

var _ Decider = (*Classifier)(nil)
