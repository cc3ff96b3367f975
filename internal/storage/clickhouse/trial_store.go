package clickhouse

import (
	"context"
	"fmt"
	"time"

	"lightcurve-lab/internal/observability"
	"lightcurve-lab/internal/storage"
)

// TrialStore implements storage.TrialStore using ClickHouse.
type TrialStore struct {
	conn *Conn
}

// NewTrialStore creates a new TrialStore.
func NewTrialStore(conn *Conn) *TrialStore {
	return &TrialStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TrialStore = (*TrialStore)(nil)

// InsertTrials adds the trials of a run. Fails entire batch on any duplicate.
func (s *TrialStore) InsertTrials(ctx context.Context, trials []*storage.TrialRecord) error {
	if len(trials) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{})
	for _, t := range trials {
		if err := t.Validate(); err != nil {
			return err
		}
		key := fmt.Sprintf("%s|%d", t.RunID, t.TrialIndex)
		if _, exists := seen[key]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	// ReplacingMergeTree would replace rows, so duplicates are checked explicitly
	for _, t := range trials {
		exists, err := s.exists(ctx, t.RunID, t.TrialIndex)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO estimator_trials (
			run_id, trial_id, trial_index, descriptors, deciders,
			precision, true_positive_rate, true_negative_rate, false_positive_rate, false_negative_rate,
			score, auc, params, is_best, duration_ms, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range trials {
		var best uint8
		if t.IsBest {
			best = 1
		}
		err = batch.Append(
			t.RunID, t.TrialID, uint32(t.TrialIndex), t.Descriptors, t.Deciders,
			t.Precision, t.TruePositiveRate, t.TrueNegativeRate, t.FalsePositiveRate, t.FalseNegativeRate,
			t.Score, t.AUC, t.Params, best, t.DurationMs, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// InsertROC adds ROC points of trials.
func (s *TrialStore) InsertROC(ctx context.Context, points []*storage.ROCPointRecord) error {
	if len(points) == 0 {
		return nil
	}
	for _, p := range points {
		if p == nil || p.RunID == "" || p.TrialID == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trial_roc_points (
			run_id, trial_id, trial_index, threshold, true_positive_rate, false_positive_rate
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(p.RunID, p.TrialID, uint32(p.TrialIndex), p.Threshold, p.TruePositiveRate, p.FalsePositiveRate)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetRun retrieves the trials of a run ordered by trial index.
func (s *TrialStore) GetRun(ctx context.Context, runID string) (result []*storage.TrialRecord, err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "get_run", time.Since(start).Seconds(), err)
	}()

	query := `
		SELECT
			run_id, trial_id, trial_index, descriptors, deciders,
			precision, true_positive_rate, true_negative_rate, false_positive_rate, false_negative_rate,
			score, auc, params, is_best, duration_ms, created_at
		FROM estimator_trials FINAL
		WHERE run_id = ?
		ORDER BY trial_index ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t storage.TrialRecord
		var index uint32
		var best uint8
		err := rows.Scan(
			&t.RunID, &t.TrialID, &index, &t.Descriptors, &t.Deciders,
			&t.Precision, &t.TruePositiveRate, &t.TrueNegativeRate, &t.FalsePositiveRate, &t.FalseNegativeRate,
			&t.Score, &t.AUC, &t.Params, &best, &t.DurationMs, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trial row: %w", err)
		}
		t.TrialIndex = int(index)
		t.IsBest = best == 1
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trial rows: %w", err)
	}

	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result, nil
}

// GetROC retrieves ROC points of a run ordered by (trial_index, threshold).
func (s *TrialStore) GetROC(ctx context.Context, runID string) ([]*storage.ROCPointRecord, error) {
	query := `
		SELECT run_id, trial_id, trial_index, threshold, true_positive_rate, false_positive_rate
		FROM trial_roc_points FINAL
		WHERE run_id = ?
		ORDER BY trial_index ASC, threshold ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query roc: %w", err)
	}
	defer rows.Close()

	result := make([]*storage.ROCPointRecord, 0)
	for rows.Next() {
		var p storage.ROCPointRecord
		var index uint32
		if err := rows.Scan(&p.RunID, &p.TrialID, &index, &p.Threshold, &p.TruePositiveRate, &p.FalsePositiveRate); err != nil {
			return nil, fmt.Errorf("scan roc row: %w", err)
		}
		p.TrialIndex = int(index)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roc rows: %w", err)
	}
	return result, nil
}

// exists checks if a trial already exists.
func (s *TrialStore) exists(ctx context.Context, runID string, index int) (bool, error) {
	query := `
		SELECT count(*) FROM estimator_trials FINAL
		WHERE run_id = ? AND trial_index = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, runID, uint32(index)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
