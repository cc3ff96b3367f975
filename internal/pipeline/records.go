package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lightcurve-lab/internal/estimator"
	"lightcurve-lab/internal/storage"
)

// TrialRecords converts an estimator result into storage records.
func TrialRecords(res *estimator.Result, descriptors, deciders []string, now time.Time) ([]*storage.TrialRecord, error) {
	records := make([]*storage.TrialRecord, len(res.Trials))
	for i, t := range res.Trials {
		params, err := json.Marshal(t.Params.Printable())
		if err != nil {
			return nil, fmt.Errorf("trial %d params: %w", t.Index, err)
		}
		records[i] = &storage.TrialRecord{
			RunID:             res.RunID,
			TrialID:           t.ID,
			TrialIndex:        t.Index,
			Descriptors:       strings.Join(descriptors, ","),
			Deciders:          strings.Join(deciders, ","),
			Precision:         t.Record.Precision,
			TruePositiveRate:  t.Record.TruePositiveRate,
			TrueNegativeRate:  t.Record.TrueNegativeRate,
			FalsePositiveRate: t.Record.FalsePositiveRate,
			FalseNegativeRate: t.Record.FalseNegativeRate,
			Score:             t.Score,
			AUC:               t.AUC,
			Params:            string(params),
			IsBest:            i == res.Best,
			DurationMs:        t.Duration.Milliseconds(),
			CreatedAt:         now.UnixMilli(),
		}
	}
	return records, nil
}

// ROCRecords flattens the ROC curves of every trial.
func ROCRecords(res *estimator.Result) []*storage.ROCPointRecord {
	var points []*storage.ROCPointRecord
	for _, t := range res.Trials {
		for _, p := range t.ROC {
			points = append(points, &storage.ROCPointRecord{
				RunID:             res.RunID,
				TrialID:           t.ID,
				TrialIndex:        t.Index,
				Threshold:         p.Threshold,
				TruePositiveRate:  p.TruePositiveRate,
				FalsePositiveRate: p.FalsePositiveRate,
			})
		}
	}
	return points
}
