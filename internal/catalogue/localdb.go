package catalogue

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/storage"
)

// NameLocalDbClient is the registry name of the local star database reader.
const NameLocalDbClient = "LocalDbClient"

// LocalDbClient reads stars from a StarStore.
type LocalDbClient struct {
	store   storage.StarStore
	query   storage.StarQuery
	loadLC  bool
	baseDir string
	logger  *zap.Logger
}

// NewLocalDbClient creates a client running q against store. With loadLC set,
// light curves are read from the stored paths, resolved against baseDir.
func NewLocalDbClient(store storage.StarStore, q storage.StarQuery, loadLC bool, baseDir string, logger *zap.Logger) (*LocalDbClient, error) {
	if store == nil {
		return nil, errors.New("local db client requires a star store")
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalDbClient{store: store, query: q, loadLC: loadLC, baseDir: baseDir, logger: logger}, nil
}

func newLocalDbClientFromQuery(q Query, env Env) (Adapter, error) {
	if err := q.CheckKeys(NameLocalDbClient,
		"origin", "identifier", "name", "star_class", "ra", "dec", "delta", "limit", "load_lc"); err != nil {
		return nil, err
	}
	var sq storage.StarQuery
	var err error
	if sq.Origin, err = q.String("origin", ""); err != nil {
		return nil, err
	}
	if sq.Identifier, err = q.String("identifier", ""); err != nil {
		return nil, err
	}
	if sq.Name, err = q.String("name", ""); err != nil {
		return nil, err
	}
	if sq.Class, err = q.String("star_class", ""); err != nil {
		return nil, err
	}
	if q.Has("ra") || q.Has("dec") {
		ra, err := q.RequiredFloat("ra")
		if err != nil {
			return nil, err
		}
		dec, err := q.RequiredFloat("dec")
		if err != nil {
			return nil, err
		}
		sq.RA, sq.Dec = &ra, &dec
		if sq.Delta, err = q.RequiredFloat("delta"); err != nil {
			return nil, err
		}
	}
	if sq.Limit, err = q.Int("limit", 0); err != nil {
		return nil, err
	}
	loadLC, err := q.Bool("load_lc", true)
	if err != nil {
		return nil, err
	}

	c, err := NewLocalDbClient(env.StarStore, sq, loadLC, env.BaseDir, env.logger())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryInput, err)
	}
	return c, nil
}

// Stars runs the query and converts matching records into stars.
func (c *LocalDbClient) Stars(ctx context.Context) ([]*domain.Star, error) {
	records, err := c.store.Query(ctx, c.query)
	if err != nil {
		return nil, fmt.Errorf("query star store: %w", err)
	}
	stars := make([]*domain.Star, 0, len(records))
	for _, r := range records {
		s := r.ToStar()
		if c.loadLC && r.LCPath != "" {
			lc, err := ReadLightCurveFile(resolve(c.baseDir, r.LCPath), map[string]string{"origin": r.Origin})
			if err != nil {
				return nil, fmt.Errorf("light curve of %s: %w", s.Name(), err)
			}
			s.PutLightCurve(lc)
		}
		stars = append(stars, s)
	}
	return stars, nil
}

var _ Adapter = (*LocalDbClient)(nil)
