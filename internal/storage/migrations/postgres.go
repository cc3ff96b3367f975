package migrations

import (
	"context"
	"fmt"
	"strings"

	"lightcurve-lab/internal/storage/postgres"
)

// RunPostgresMigrations applies the star database schema in a single
// transaction, so a failing file leaves the database untouched. Every file
// must be safe to re-apply.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer tx.Rollback(ctx)

	applied := 0
	for _, m := range files {
		if strings.TrimSpace(m.sql) == "" {
			continue
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		applied++
	}
	if applied == 0 {
		return fmt.Errorf("no postgres migrations embedded")
	}
	return tx.Commit(ctx)
}
