package domain

import "fmt"

// EvaluationRecord keys, in output order.
const (
	KeyPrecision         = "precision"
	KeyTruePositiveRate  = "true_positive_rate"
	KeyTrueNegativeRate  = "true_negative_rate"
	KeyFalsePositiveRate = "false_positive_rate"
	KeyFalseNegativeRate = "false_negative_rate"
)

// EvaluationKeys lists the record fields in their canonical order.
var EvaluationKeys = []string{
	KeyPrecision,
	KeyTruePositiveRate,
	KeyTrueNegativeRate,
	KeyFalsePositiveRate,
	KeyFalseNegativeRate,
}

// EvaluationRecord holds the quality statistics of a filter on a labelled sample.
// All rates lie in [0, 1].
type EvaluationRecord struct {
	Precision         float64 `json:"precision"`
	TruePositiveRate  float64 `json:"true_positive_rate"`
	TrueNegativeRate  float64 `json:"true_negative_rate"`
	FalsePositiveRate float64 `json:"false_positive_rate"`
	FalseNegativeRate float64 `json:"false_negative_rate"`
	Params            Params  `json:"params,omitempty"` // combination that produced the record
}

// Get returns a statistic by key.
func (r EvaluationRecord) Get(key string) (float64, error) {
	switch key {
	case KeyPrecision:
		return r.Precision, nil
	case KeyTruePositiveRate:
		return r.TruePositiveRate, nil
	case KeyTrueNegativeRate:
		return r.TrueNegativeRate, nil
	case KeyFalsePositiveRate:
		return r.FalsePositiveRate, nil
	case KeyFalseNegativeRate:
		return r.FalseNegativeRate, nil
	}
	return 0, fmt.Errorf("%w: evaluation key %q", ErrInvalidOption, key)
}

// Values returns the statistics in EvaluationKeys order.
func (r EvaluationRecord) Values() []float64 {
	return []float64{r.Precision, r.TruePositiveRate, r.TrueNegativeRate, r.FalsePositiveRate, r.FalseNegativeRate}
}
