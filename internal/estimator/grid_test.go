package estimator

import (
	"errors"
	"math"
	"testing"

	"lightcurve-lab/internal/domain"
)

func TestGridExpand(t *testing.T) {
	grid := Grid{
		"LDADec":         {"threshold": {0.4, 0.6}},
		"AbbeValueDescr": {"bins": {10, 20}},
	}

	trials, err := grid.Expand()
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(trials) != 4 {
		t.Fatalf("Expand() = %d trials, want 4", len(trials))
	}

	want := []struct {
		bins      int
		threshold float64
	}{
		{10, 0.4},
		{10, 0.6},
		{20, 0.4},
		{20, 0.6},
	}
	for i, w := range want {
		if got := trials[i]["AbbeValueDescr"]["bins"]; got != w.bins {
			t.Errorf("trial %d bins = %v, want %d", i, got, w.bins)
		}
		if got := trials[i]["LDADec"]["threshold"]; got != w.threshold {
			t.Errorf("trial %d threshold = %v, want %v", i, got, w.threshold)
		}
	}

	// trials must not share inner maps
	trials[0]["LDADec"]["threshold"] = 0.9
	if trials[2]["LDADec"]["threshold"] != 0.4 {
		t.Errorf("trials share parameter maps")
	}
}

func TestGridExpand_Empty(t *testing.T) {
	trials, err := Grid{}.Expand()
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(trials) != 1 || len(trials[0]) != 0 {
		t.Errorf("Expand() of empty grid = %v, want one empty trial", trials)
	}

	_, err = Grid{"LDADec": {"threshold": {}}}.Expand()
	if !errors.Is(err, domain.ErrQueryInput) {
		t.Errorf("expected ErrQueryInput, got %v", err)
	}
}

func TestScores(t *testing.T) {
	rec := domain.EvaluationRecord{
		Precision:         0.5,
		TruePositiveRate:  1,
		TrueNegativeRate:  0.5,
		FalsePositiveRate: 0.5,
	}

	tests := []struct {
		name string
		want float64
	}{
		{"precision", 0.5},
		{"true_positive_rate", 1},
		{"false_positive_rate", 0.5},
		{ScoreF1, 2.0 / 3.0},
		{ScoreBalancedAccuracy, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ScoreByName(tt.name)
			if err != nil {
				t.Fatalf("ScoreByName failed: %v", err)
			}
			if got := f(rec); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ScoreByName("accuracy"); !errors.Is(err, domain.ErrInvalidOption) {
		t.Errorf("expected ErrInvalidOption, got %v", err)
	}
	if F1(domain.EvaluationRecord{}) != 0 {
		t.Errorf("F1 of empty record must be 0")
	}
}

func TestBetter(t *testing.T) {
	if !better(OptMax, 0.8, 0.5) || better(OptMax, 0.5, 0.8) {
		t.Errorf("max comparison wrong")
	}
	if !better(OptMin, 0.5, 0.8) {
		t.Errorf("min comparison wrong")
	}
	if better(OptMax, math.NaN(), 0.1) || !better(OptMax, 0.1, math.NaN()) {
		t.Errorf("NaN must never win")
	}
}
