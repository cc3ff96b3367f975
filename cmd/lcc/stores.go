package main

import (
	"context"
	"fmt"

	"lightcurve-lab/internal/storage"
	"lightcurve-lab/internal/storage/clickhouse"
	"lightcurve-lab/internal/storage/memory"
	"lightcurve-lab/internal/storage/postgres"
)

// stores holds the configured stores and their cleanup.
type stores struct {
	stars  storage.StarStore
	trials storage.TrialStore
	close  []func()
}

func (s *stores) Close() {
	for i := len(s.close) - 1; i >= 0; i-- {
		s.close[i]()
	}
}

// openStores connects to PostgreSQL and ClickHouse when their DSNs are set
// and falls back to memory stores otherwise. requireStars fails without a
// PostgreSQL DSN.
func openStores(ctx context.Context, requireStars bool) (*stores, error) {
	s := &stores{
		stars:  memory.NewStarStore(),
		trials: memory.NewTrialStore(),
	}

	if postgresDSN != "" {
		pool, err := postgres.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.close = append(s.close, pool.Close)
		s.stars = postgres.NewStarStore(pool)
	} else if requireStars {
		return nil, fmt.Errorf("--postgres-dsn (or POSTGRES_DSN) is required")
	}

	if clickhouseDSN != "" {
		conn, err := clickhouse.NewConn(ctx, clickhouseDSN)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect clickhouse: %w", err)
		}
		s.close = append(s.close, func() { conn.Close() })
		s.trials = clickhouse.NewTrialStore(conn)
	}
	return s, nil
}
