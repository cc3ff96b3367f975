package memory

import (
	"context"
	"errors"
	"testing"

	"lightcurve-lab/internal/storage"
)

func TestTrialStore_InsertAndGetRun(t *testing.T) {
	store := NewTrialStore()
	ctx := context.Background()

	trials := []*storage.TrialRecord{
		{RunID: "run-1", TrialID: "t1", TrialIndex: 1, Precision: 0.8, Score: 0.8},
		{RunID: "run-1", TrialID: "t0", TrialIndex: 0, Precision: 0.9, Score: 0.9, IsBest: true},
		{RunID: "run-2", TrialID: "x0", TrialIndex: 0},
	}
	if err := store.InsertTrials(ctx, trials); err != nil {
		t.Fatalf("InsertTrials failed: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetRun() returned %d trials, want 2", len(got))
	}
	if got[0].TrialID != "t0" || !got[0].IsBest || got[1].TrialID != "t1" {
		t.Errorf("trials not ordered by index: %+v %+v", got[0], got[1])
	}

	if _, err := store.GetRun(ctx, "run-3"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTrialStore_DuplicateKey(t *testing.T) {
	store := NewTrialStore()
	ctx := context.Background()

	trial := &storage.TrialRecord{RunID: "run", TrialID: "t0", TrialIndex: 0}
	if err := store.InsertTrials(ctx, []*storage.TrialRecord{trial}); err != nil {
		t.Fatalf("InsertTrials failed: %v", err)
	}
	if err := store.InsertTrials(ctx, []*storage.TrialRecord{trial}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if err := store.InsertTrials(ctx, []*storage.TrialRecord{{RunID: "run"}}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTrialStore_ROC(t *testing.T) {
	store := NewTrialStore()
	ctx := context.Background()

	points := []*storage.ROCPointRecord{
		{RunID: "run", TrialID: "t1", TrialIndex: 1, Threshold: 0, TruePositiveRate: 1, FalsePositiveRate: 1},
		{RunID: "run", TrialID: "t0", TrialIndex: 0, Threshold: 0.5, TruePositiveRate: 0.9, FalsePositiveRate: 0.1},
		{RunID: "run", TrialID: "t0", TrialIndex: 0, Threshold: 0, TruePositiveRate: 1, FalsePositiveRate: 1},
		{RunID: "other", TrialID: "o0", TrialIndex: 0},
	}
	if err := store.InsertROC(ctx, points); err != nil {
		t.Fatalf("InsertROC failed: %v", err)
	}

	got, err := store.GetROC(ctx, "run")
	if err != nil {
		t.Fatalf("GetROC failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("GetROC() returned %d points, want 3", len(got))
	}
	if got[0].TrialIndex != 0 || got[0].Threshold != 0 || got[1].Threshold != 0.5 || got[2].TrialIndex != 1 {
		t.Errorf("points not ordered: %+v %+v %+v", got[0], got[1], got[2])
	}

	empty, err := store.GetROC(ctx, "missing")
	if err != nil || len(empty) != 0 {
		t.Errorf("GetROC() of unknown run = %v, %v; want empty", empty, err)
	}
}
