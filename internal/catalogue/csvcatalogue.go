package catalogue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"lightcurve-lab/internal/domain"
)

// NameCsvCatalogue is the registry name of the CSV star index reader.
const NameCsvCatalogue = "CsvCatalogue"

// CatalogueRow is one line of a CSV star index.
type CatalogueRow struct {
	Name       string `csv:"name"`
	Origin     string `csv:"origin"`
	Identifier string `csv:"identifier"`
	RA         string `csv:"ra"`
	Dec        string `csv:"dec"`
	Class      string `csv:"class"`
	LCPath     string `csv:"lc_path"` // relative to the index file
}

// CsvCatalogue reads stars listed in a CSV index.
type CsvCatalogue struct {
	path   string
	class  string
	logger *zap.Logger
}

// NewCsvCatalogue creates a reader of the index at path. A non-empty class
// keeps only rows of that class.
func NewCsvCatalogue(path, class string, logger *zap.Logger) *CsvCatalogue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CsvCatalogue{path: path, class: class, logger: logger}
}

func newCsvCatalogueFromQuery(q Query, env Env) (Adapter, error) {
	if err := q.CheckKeys(NameCsvCatalogue, "path", "star_class"); err != nil {
		return nil, err
	}
	path, err := q.String("path", "")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("%w: csv catalogue needs a path", domain.ErrQueryInput)
	}
	class, err := q.String("star_class", "")
	if err != nil {
		return nil, err
	}
	return NewCsvCatalogue(resolve(env.BaseDir, path), class, env.logger()), nil
}

// Rows reads the index.
func (c *CsvCatalogue) Rows() ([]*CatalogueRow, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open csv catalogue: %w", err)
	}
	defer f.Close()

	var rows []*CatalogueRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrQueryInput, filepath.Base(c.path), err)
	}
	return rows, nil
}

// Stars returns the stars of the index, loading light curves where lc_path is set.
func (c *CsvCatalogue) Stars(ctx context.Context) ([]*domain.Star, error) {
	rows, err := c.Rows()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(c.path)

	stars := make([]*domain.Star, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.class != "" && row.Class != c.class {
			continue
		}
		s, err := row.star(dir)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		stars = append(stars, s)
	}
	c.logger.Debug("csv catalogue read", zap.String("path", c.path), zap.Int("rows", len(rows)), zap.Int("stars", len(stars)))
	return stars, nil
}

func (r *CatalogueRow) star(dir string) (*domain.Star, error) {
	origin := r.Origin
	if origin == "" {
		origin = DefaultFileOrigin
	}
	if r.Name == "" && r.Identifier == "" {
		return nil, fmt.Errorf("%w: row needs a name or identifier", domain.ErrQueryInput)
	}
	s := domain.NewStar(origin, r.Name, r.Identifier)
	s.Class = r.Class

	if ra, dec := strings.TrimSpace(r.RA), strings.TrimSpace(r.Dec); ra != "" || dec != "" {
		raV, err := strconv.ParseFloat(ra, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: ra %q", domain.ErrQueryInput, r.RA)
		}
		decV, err := strconv.ParseFloat(dec, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: dec %q", domain.ErrQueryInput, r.Dec)
		}
		coo, err := domain.NewCoordinates(raV, decV, domain.UnitDegrees)
		if err != nil {
			return nil, err
		}
		s.Coo = &coo
	}

	if r.LCPath != "" {
		lc, err := ReadLightCurveFile(resolve(dir, r.LCPath), map[string]string{"origin": origin})
		if err != nil {
			return nil, err
		}
		s.PutLightCurve(lc)
	}
	return s, nil
}

var _ Adapter = (*CsvCatalogue)(nil)
