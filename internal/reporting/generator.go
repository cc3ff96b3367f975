package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/storage"
)

// Generator produces tuning reports from stored trials.
type Generator struct {
	trialStore storage.TrialStore
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(trialStore storage.TrialStore) *Generator {
	return &Generator{
		trialStore: trialStore,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the report of run. opt orders the trials: max ranks the
// highest score first, min the lowest.
func (g *Generator) Generate(ctx context.Context, runID, opt string) (*TuningReport, error) {
	if opt != "max" && opt != "min" {
		return nil, fmt.Errorf("%w: opt %q", domain.ErrInvalidOption, opt)
	}

	trials, err := g.trialStore.GetRun(ctx, runID)
	if err != nil {
		return nil, err // propagates storage.ErrNotFound
	}

	rows := make([]TrialRow, len(trials))
	scores := make([]float64, len(trials))
	for i, t := range trials {
		rows[i] = TrialRow{
			TrialIndex:        t.TrialIndex,
			TrialID:           t.TrialID,
			Score:             t.Score,
			AUC:               t.AUC,
			Precision:         t.Precision,
			TruePositiveRate:  t.TruePositiveRate,
			TrueNegativeRate:  t.TrueNegativeRate,
			FalsePositiveRate: t.FalsePositiveRate,
			FalseNegativeRate: t.FalseNegativeRate,
			Params:            t.Params,
			DurationMs:        t.DurationMs,
		}
		scores[i] = t.Score
	}

	// Rank by score, ties by trial index
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			if opt == "min" {
				return rows[i].Score < rows[j].Score
			}
			return rows[i].Score > rows[j].Score
		}
		return rows[i].TrialIndex < rows[j].TrialIndex
	})

	// The stored best flag wins over ranking
	best := rows[0]
	for _, t := range trials {
		if t.IsBest {
			for _, r := range rows {
				if r.TrialIndex == t.TrialIndex {
					best = r
				}
			}
		}
	}

	summary, err := summarise(scores)
	if err != nil {
		return nil, err
	}

	return &TuningReport{
		GeneratedAt: g.now(),
		RunID:       runID,
		Descriptors: trials[0].Descriptors,
		Deciders:    trials[0].Deciders,
		Opt:         opt,
		Best:        best,
		Trials:      rows,
		Scores:      summary,
	}, nil
}

func summarise(scores []float64) (ScoreSummary, error) {
	data := stats.Float64Data(scores)
	var s ScoreSummary
	var err error
	if s.Mean, err = data.Mean(); err != nil {
		return s, fmt.Errorf("score mean: %w", err)
	}
	if s.Median, err = data.Median(); err != nil {
		return s, fmt.Errorf("score median: %w", err)
	}
	if s.StdDev, err = data.StandardDeviationPopulation(); err != nil {
		return s, fmt.Errorf("score stddev: %w", err)
	}
	if s.Min, err = data.Min(); err != nil {
		return s, fmt.Errorf("score min: %w", err)
	}
	if s.Max, err = data.Max(); err != nil {
		return s, fmt.Errorf("score max: %w", err)
	}
	return s, nil
}
