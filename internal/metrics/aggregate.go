package metrics

import (
	"math"

	"github.com/montanaflynn/stats"

	"lightcurve-lab/internal/domain"
)

// DefaultROCStep is the threshold increment of ROC sweeps.
const DefaultROCStep = 0.05

// MeanRecord averages records field by field. Params of the first record are kept.
func MeanRecord(records []domain.EvaluationRecord) domain.EvaluationRecord {
	if len(records) == 0 {
		return domain.EvaluationRecord{}
	}
	cols := make([][]float64, len(domain.EvaluationKeys))
	for _, r := range records {
		for i, v := range r.Values() {
			cols[i] = append(cols[i], v)
		}
	}
	means := make([]float64, len(cols))
	for i, col := range cols {
		m, err := stats.Mean(col)
		if err != nil {
			continue
		}
		means[i] = Round(m, RecordPrecision)
	}
	return domain.EvaluationRecord{
		Precision:         means[0],
		TruePositiveRate:  means[1],
		TrueNegativeRate:  means[2],
		FalsePositiveRate: means[3],
		FalseNegativeRate: means[4],
		Params:            records[0].Params,
	}
}

// ROCPoint is one sample of a threshold sweep.
type ROCPoint struct {
	Threshold         float64
	TruePositiveRate  float64
	FalsePositiveRate float64
}

// ROC sweeps thresholds 0, step, ..., 1 over scores of searched and other points.
// A non-positive step uses DefaultROCStep.
func ROC(searched, others []float64, step float64) []ROCPoint {
	if step <= 0 {
		step = DefaultROCStep
	}
	n := int(math.Round(1/step)) + 1
	points := make([]ROCPoint, 0, n)
	for i := 0; i < n; i++ {
		th := math.Min(1, Round(float64(i)*step, 6))
		rec := CountScores(searched, others, th).Record()
		points = append(points, ROCPoint{
			Threshold:         th,
			TruePositiveRate:  rec.TruePositiveRate,
			FalsePositiveRate: rec.FalsePositiveRate,
		})
	}
	return points
}

// AUC integrates a ROC curve with the trapezoid rule over FPR.
func AUC(points []ROCPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	var area float64
	for i := 1; i < len(points); i++ {
		dx := math.Abs(points[i].FalsePositiveRate - points[i-1].FalsePositiveRate)
		area += dx * (points[i].TruePositiveRate + points[i-1].TruePositiveRate) / 2
	}
	return Round(area, RecordPrecision)
}
