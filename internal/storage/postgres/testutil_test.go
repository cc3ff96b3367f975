package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"lightcurve-lab/internal/storage/migrations"
	"lightcurve-lab/internal/storage/postgres"
)

// newTestStore starts a disposable PostgreSQL, applies the embedded
// migrations and returns a store on it. Skipped in short mode.
func newTestStore(t *testing.T) *postgres.StarStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("stars"),
		tcpostgres.WithUsername("lcc"),
		tcpostgres.WithPassword("lcc"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool))
	// migrations are idempotent
	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool))

	return postgres.NewStarStore(pool)
}

func ptr[T any](v T) *T {
	return &v
}
