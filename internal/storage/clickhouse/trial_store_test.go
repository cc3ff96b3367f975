package clickhouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightcurve-lab/internal/storage"
)

func TestTrialStore_InsertAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trials := []*storage.TrialRecord{
		{
			RunID:             "run-1",
			TrialID:           "3yQ",
			TrialIndex:        1,
			Descriptors:       "AbbeValueDescr",
			Deciders:          "LDADec",
			Precision:         0.8,
			TruePositiveRate:  0.9,
			TrueNegativeRate:  0.7,
			FalsePositiveRate: 0.3,
			FalseNegativeRate: 0.1,
			Score:             0.8,
			AUC:               0.85,
			Params:            `{"LDADec":{"threshold":0.4}}`,
			DurationMs:        120,
			CreatedAt:         1700000000000,
		},
		{RunID: "run-1", TrialID: "9aB", TrialIndex: 0, Score: 0.9, IsBest: true, CreatedAt: 1700000000000},
	}
	require.NoError(t, store.InsertTrials(ctx, trials))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].TrialIndex)
	assert.True(t, got[0].IsBest)
	assert.Equal(t, "3yQ", got[1].TrialID)
	assert.Equal(t, 0.85, got[1].AUC)
	assert.Equal(t, `{"LDADec":{"threshold":0.4}}`, got[1].Params)
	assert.False(t, got[1].IsBest)

	err = store.InsertTrials(ctx, trials[:1])
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTrialStore_ROC(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertROC(ctx, []*storage.ROCPointRecord{
		{RunID: "run", TrialID: "t1", TrialIndex: 1, Threshold: 0, TruePositiveRate: 1, FalsePositiveRate: 1},
		{RunID: "run", TrialID: "t0", TrialIndex: 0, Threshold: 0.5, TruePositiveRate: 0.9, FalsePositiveRate: 0.1},
		{RunID: "run", TrialID: "t0", TrialIndex: 0, Threshold: 0, TruePositiveRate: 1, FalsePositiveRate: 1},
	}))

	got, err := store.GetROC(ctx, "run")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 0, got[0].TrialIndex)
	assert.Equal(t, 0.0, got[0].Threshold)
	assert.Equal(t, 0.5, got[1].Threshold)
	assert.Equal(t, 1, got[2].TrialIndex)
}
