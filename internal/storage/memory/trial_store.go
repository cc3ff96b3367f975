package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lightcurve-lab/internal/storage"
)

// TrialStore is an in-memory implementation of storage.TrialStore.
type TrialStore struct {
	mu     sync.RWMutex
	trials map[string]*storage.TrialRecord // keyed by run_id|trial_index
	roc    []*storage.ROCPointRecord
}

// NewTrialStore creates a new in-memory trial store.
func NewTrialStore() *TrialStore {
	return &TrialStore{
		trials: make(map[string]*storage.TrialRecord),
	}
}

func trialKey(runID string, index int) string {
	return fmt.Sprintf("%s|%d", runID, index)
}

// InsertTrials adds the trials of a run. Fails entire batch on any duplicate.
func (s *TrialStore) InsertTrials(_ context.Context, trials []*storage.TrialRecord) error {
	if len(trials) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(trials))
	for _, t := range trials {
		if err := t.Validate(); err != nil {
			return err
		}
		key := trialKey(t.RunID, t.TrialIndex)
		if _, exists := s.trials[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, t := range trials {
		tCopy := *t
		s.trials[trialKey(t.RunID, t.TrialIndex)] = &tCopy
	}
	return nil
}

// InsertROC adds ROC points of trials.
func (s *TrialStore) InsertROC(_ context.Context, points []*storage.ROCPointRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if p == nil || p.RunID == "" || p.TrialID == "" {
			return storage.ErrInvalidInput
		}
	}
	for _, p := range points {
		pCopy := *p
		s.roc = append(s.roc, &pCopy)
	}
	return nil
}

// GetRun retrieves the trials of a run ordered by trial index.
func (s *TrialStore) GetRun(_ context.Context, runID string) ([]*storage.TrialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*storage.TrialRecord
	for _, t := range s.trials {
		if t.RunID == runID {
			tCopy := *t
			result = append(result, &tCopy)
		}
	}
	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TrialIndex < result[j].TrialIndex
	})
	return result, nil
}

// GetROC retrieves ROC points of a run ordered by (trial_index, threshold).
func (s *TrialStore) GetROC(_ context.Context, runID string) ([]*storage.ROCPointRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*storage.ROCPointRecord, 0)
	for _, p := range s.roc {
		if p.RunID == runID {
			pCopy := *p
			result = append(result, &pCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].TrialIndex != result[j].TrialIndex {
			return result[i].TrialIndex < result[j].TrialIndex
		}
		return result[i].Threshold < result[j].Threshold
	})
	return result, nil
}

var _ storage.TrialStore = (*TrialStore)(nil)
