// Package metrics computes the quality statistics of binary filters.
package metrics

import (
	"math"

	"lightcurve-lab/internal/domain"
)

// RecordPrecision is the number of decimal places kept in records.
const RecordPrecision = 3

// Confusion holds the confusion counts of a filter on a labelled sample.
type Confusion struct {
	TP int // searched points flagged positive
	FN int // searched points flagged negative
	TN int // other points flagged negative
	FP int // other points flagged positive
}

// Count builds confusion counts from the pass flags of searched and other points.
// TP+FN equals len(searchedPass) and TN+FP equals len(othersPass).
func Count(searchedPass, othersPass []bool) Confusion {
	var c Confusion
	for _, p := range searchedPass {
		if p {
			c.TP++
		}
	}
	c.FN = len(searchedPass) - c.TP
	for _, p := range othersPass {
		if !p {
			c.TN++
		}
	}
	c.FP = len(othersPass) - c.TN
	return c
}

// CountScores thresholds scores (score >= threshold passes) and counts them.
func CountScores(searched, others []float64, threshold float64) Confusion {
	return Count(passes(searched, threshold), passes(others, threshold))
}

func passes(scores []float64, threshold float64) []bool {
	out := make([]bool, len(scores))
	for i, s := range scores {
		out[i] = s >= threshold
	}
	return out
}

// Record converts counts to rates rounded to RecordPrecision places.
// Rates with an empty denominator are 0.
func (c Confusion) Record() domain.EvaluationRecord {
	searched := c.TP + c.FN
	others := c.TN + c.FP
	return domain.EvaluationRecord{
		Precision:         Round(ratio(c.TP, c.TP+c.FP), RecordPrecision),
		TruePositiveRate:  Round(ratio(c.TP, searched), RecordPrecision),
		TrueNegativeRate:  Round(ratio(c.TN, others), RecordPrecision),
		FalsePositiveRate: Round(ratio(c.FP, others), RecordPrecision),
		FalseNegativeRate: Round(ratio(c.FN, searched), RecordPrecision),
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Round rounds x half away from zero to places decimals.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
