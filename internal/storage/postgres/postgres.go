// Package postgres stores the local star database in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lightcurve-lab/internal/storage"
)

// ApplicationName tags lcc sessions in pg_stat_activity unless the DSN sets one.
const ApplicationName = "lcc"

// Pool is a verified pgx connection pool.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects to dsn and pings the server once.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.ConnConfig.RuntimeParams["application_name"] == "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres %s: %w", cfg.ConnConfig.Host, err)
	}
	return &Pool{Pool: pool}, nil
}

// SQLSTATE codes mapped onto storage errors.
const (
	sqlstateNotNull = "23502"
	sqlstateUnique  = "23505"
	sqlstateCheck   = "23514"
)

// storeError maps a driver error of op onto the storage sentinel errors.
func storeError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateUnique:
			return storage.ErrDuplicateKey
		case sqlstateCheck, sqlstateNotNull:
			return fmt.Errorf("%w: %s (%s)", storage.ErrInvalidInput, pgErr.Message, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
