package estimator

import (
	"fmt"

	"lightcurve-lab/internal/domain"
)

// ScoreFunc rates an evaluation record.
type ScoreFunc func(domain.EvaluationRecord) float64

// Optimisation directions.
const (
	OptMax = "max"
	OptMin = "min"
)

// Derived score names.
const (
	ScoreF1               = "f1"
	ScoreBalancedAccuracy = "balanced_accuracy"
)

// ScoreByName returns a record field or a derived score by name.
func ScoreByName(name string) (ScoreFunc, error) {
	switch name {
	case ScoreF1:
		return F1, nil
	case ScoreBalancedAccuracy:
		return BalancedAccuracy, nil
	}
	if _, err := (domain.EvaluationRecord{}).Get(name); err != nil {
		return nil, fmt.Errorf("%w: score %q", domain.ErrInvalidOption, name)
	}
	return func(r domain.EvaluationRecord) float64 {
		v, _ := r.Get(name)
		return v
	}, nil
}

// F1 is the harmonic mean of precision and true positive rate.
func F1(r domain.EvaluationRecord) float64 {
	if r.Precision+r.TruePositiveRate == 0 {
		return 0
	}
	return 2 * r.Precision * r.TruePositiveRate / (r.Precision + r.TruePositiveRate)
}

// BalancedAccuracy is the mean of the true positive and true negative rates.
func BalancedAccuracy(r domain.EvaluationRecord) float64 {
	return (r.TruePositiveRate + r.TrueNegativeRate) / 2
}

// better reports whether a beats b under opt. NaN never wins.
func better(opt string, a, b float64) bool {
	if a != a {
		return false
	}
	if b != b {
		return true
	}
	if opt == OptMin {
		return a < b
	}
	return a > b
}
