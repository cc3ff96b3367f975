package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"lightcurve-lab/internal/observability"
	"lightcurve-lab/internal/storage"
)

// StarStore implements storage.StarStore using PostgreSQL.
type StarStore struct {
	pool *Pool
}

// NewStarStore creates a new StarStore.
func NewStarStore(pool *Pool) *StarStore {
	return &StarStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StarStore = (*StarStore)(nil)

const insertStarQuery = `
	INSERT INTO stars (
		origin, identifier, name, ra, dec, b_mag, v_mag, r_mag, i_mag, class, lc_path
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

const selectStarColumns = `
	SELECT origin, identifier, name, ra, dec, b_mag, v_mag, r_mag, i_mag, class, lc_path, created_at
	FROM stars
`

// Insert adds a new star. Returns ErrDuplicateKey if (origin, identifier) exists.
func (s *StarStore) Insert(ctx context.Context, r *storage.StarRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, insertStarQuery, starArgs(r)...); err != nil {
		return storeError("insert star", err)
	}
	return nil
}

// InsertBulk adds multiple stars atomically. Fails entire batch on any duplicate.
func (s *StarStore) InsertBulk(ctx context.Context, records []*storage.StarRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if _, err := tx.Exec(ctx, insertStarQuery, starArgs(r)...); err != nil {
			return storeError(fmt.Sprintf("insert star %s/%s", r.Origin, r.Identifier), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Get retrieves a star by origin and identifier. Returns ErrNotFound if not exists.
func (s *StarStore) Get(ctx context.Context, origin, identifier string) (*storage.StarRecord, error) {
	query := selectStarColumns + `WHERE origin = $1 AND identifier = $2`

	r, err := scanStar(s.pool.QueryRow(ctx, query, origin, identifier))
	if err != nil {
		return nil, storeError("get star", err)
	}
	return r, nil
}

// Query retrieves stars matching q, ordered by (origin, identifier).
// Cone searches pre-select a declination band in SQL and filter exactly here.
func (s *StarStore) Query(ctx context.Context, q storage.StarQuery) (result []*storage.StarRecord, err error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "query_stars", time.Since(start).Seconds(), err)
	}()

	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if q.Origin != "" {
		add("origin = $%d", q.Origin)
	}
	if q.Identifier != "" {
		add("identifier = $%d", q.Identifier)
	}
	if q.Name != "" {
		add("name = $%d", q.Name)
	}
	if q.Class != "" {
		add("class = $%d", q.Class)
	}
	cone := q.RA != nil
	if cone {
		margin := q.Delta / 3600
		add("dec >= $%d", *q.Dec-margin)
		add("dec <= $%d", *q.Dec+margin)
	}

	query := selectStarColumns
	if len(conds) > 0 {
		query += "WHERE " + strings.Join(conds, " AND ") + "\n"
	}
	query += "ORDER BY origin ASC, identifier ASC"
	if q.Limit > 0 && !cone {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stars: %w", err)
	}
	defer rows.Close()

	records, err := scanStars(rows)
	if err != nil {
		return nil, err
	}

	result = make([]*storage.StarRecord, 0, len(records))
	for _, r := range records {
		if cone && !q.Matches(r) {
			continue
		}
		result = append(result, r)
		if q.Limit > 0 && len(result) == q.Limit {
			break
		}
	}
	return result, nil
}

func starArgs(r *storage.StarRecord) []any {
	return []any{
		r.Origin,
		r.Identifier,
		r.Name,
		r.RA,
		r.Dec,
		r.BMag,
		r.VMag,
		r.RMag,
		r.IMag,
		r.Class,
		r.LCPath,
	}
}

// scanStar scans a single row into a StarRecord.
func scanStar(row pgx.Row) (*storage.StarRecord, error) {
	var r storage.StarRecord
	err := row.Scan(
		&r.Origin,
		&r.Identifier,
		&r.Name,
		&r.RA,
		&r.Dec,
		&r.BMag,
		&r.VMag,
		&r.RMag,
		&r.IMag,
		&r.Class,
		&r.LCPath,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// scanStars scans multiple rows into a slice of StarRecord.
func scanStars(rows pgx.Rows) ([]*storage.StarRecord, error) {
	var records []*storage.StarRecord

	for rows.Next() {
		r, err := scanStar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan star row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate star rows: %w", err)
	}

	return records, nil
}
