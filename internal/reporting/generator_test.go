package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lightcurve-lab/internal/storage"
	"lightcurve-lab/internal/storage/memory"
)

func setupTrialStore(t *testing.T) *memory.TrialStore {
	store := memory.NewTrialStore()
	trials := []*storage.TrialRecord{
		{RunID: "run-1", TrialID: "a", TrialIndex: 0, Descriptors: "AbbeValueDescr", Deciders: "LDADec", Score: 0.8, Precision: 0.8, Params: `{"LDADec":{"threshold":0.4}}`},
		{RunID: "run-1", TrialID: "b", TrialIndex: 1, Descriptors: "AbbeValueDescr", Deciders: "LDADec", Score: 0.95, Precision: 0.95, IsBest: true, Params: `{"LDADec":{"threshold":0.6}}`},
		{RunID: "run-1", TrialID: "c", TrialIndex: 2, Descriptors: "AbbeValueDescr", Deciders: "LDADec", Score: 0.8, Precision: 0.8},
		{RunID: "run-2", TrialID: "z", TrialIndex: 0, Score: 0.1},
	}
	if err := store.InsertTrials(context.Background(), trials); err != nil {
		t.Fatalf("InsertTrials failed: %v", err)
	}
	return store
}

func TestGenerator_Generate(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	gen := NewGenerator(setupTrialStore(t)).WithClock(func() time.Time { return fixed })

	report, err := gen.Generate(context.Background(), "run-1", "max")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixed) {
		t.Errorf("GeneratedAt = %v, want %v", report.GeneratedAt, fixed)
	}
	if len(report.Trials) != 3 {
		t.Fatalf("Trials = %d, want 3", len(report.Trials))
	}
	// ranked by score, ties by index
	order := []int{1, 0, 2}
	for i, want := range order {
		if report.Trials[i].TrialIndex != want {
			t.Errorf("rank %d = trial %d, want %d", i, report.Trials[i].TrialIndex, want)
		}
	}
	if report.Best.TrialID != "b" {
		t.Errorf("Best = %s, want b", report.Best.TrialID)
	}
	if report.Scores.Median != 0.8 || report.Scores.Max != 0.95 || report.Scores.Min != 0.8 {
		t.Errorf("Scores = %+v", report.Scores)
	}
	if diff := report.Scores.Mean - 0.85; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("Scores.Mean = %v, want 0.85", report.Scores.Mean)
	}

	minReport, err := gen.Generate(context.Background(), "run-1", "min")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if minReport.Trials[0].TrialIndex != 0 || minReport.Trials[2].TrialIndex != 1 {
		t.Errorf("min ranking wrong: %+v", minReport.Trials)
	}
}

func TestGenerator_Errors(t *testing.T) {
	gen := NewGenerator(setupTrialStore(t))

	if _, err := gen.Generate(context.Background(), "missing", "max"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := gen.Generate(context.Background(), "run-1", "best"); err == nil {
		t.Errorf("expected error for unknown opt")
	}
}

func TestRenderMarkdown(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	gen := NewGenerator(setupTrialStore(t)).WithClock(func() time.Time { return fixed })
	report, err := gen.Generate(context.Background(), "run-1", "max")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)

	for _, want := range []string{
		"# Tuning Report",
		"Generated: 2026-01-02T03:04:05Z",
		"Run: run-1 | Trials: 3 | Opt: max",
		"| Descriptors | AbbeValueDescr |",
		"Trial 1 (`b`): score 0.9500",
		`{"LDADec":{"threshold":0.6}}`,
		"| 1 | 1 | 0.9500 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}
