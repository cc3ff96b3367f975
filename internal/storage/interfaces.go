package storage

import "context"

// StarStore provides access to the local star database.
type StarStore interface {
	// Insert adds a new star. Returns ErrDuplicateKey if (origin, identifier) exists.
	Insert(ctx context.Context, r *StarRecord) error

	// InsertBulk adds multiple stars atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, records []*StarRecord) error

	// Get retrieves a star by origin and identifier. Returns ErrNotFound if not exists.
	Get(ctx context.Context, origin, identifier string) (*StarRecord, error)

	// Query retrieves stars matching q, ordered by (origin, identifier).
	// No match yields an empty slice.
	Query(ctx context.Context, q StarQuery) ([]*StarRecord, error)
}

// TrialStore provides access to persisted estimator trials.
type TrialStore interface {
	// InsertTrials adds the trials of a run. Returns ErrDuplicateKey if
	// (run_id, trial_index) exists.
	InsertTrials(ctx context.Context, trials []*TrialRecord) error

	// InsertROC adds ROC points of trials.
	InsertROC(ctx context.Context, points []*ROCPointRecord) error

	// GetRun retrieves the trials of a run ordered by trial index.
	// Returns ErrNotFound if the run has no trials.
	GetRun(ctx context.Context, runID string) ([]*TrialRecord, error)

	// GetROC retrieves ROC points of a run ordered by (trial_index, threshold).
	GetROC(ctx context.Context, runID string) ([]*ROCPointRecord, error)
}
