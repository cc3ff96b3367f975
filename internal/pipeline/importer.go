package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"lightcurve-lab/internal/catalogue"
	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/idhash"
	"lightcurve-lab/internal/observability"
	"lightcurve-lab/internal/storage"
)

// Importer stores stars in the local star database. Light curves are copied
// into lcDir under a name derived from the star identity.
type Importer struct {
	store  storage.StarStore
	lcDir  string
	logger *zap.Logger
}

// NewImporter creates an Importer.
func NewImporter(store storage.StarStore, lcDir string, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{store: store, lcDir: lcDir, logger: logger}
}

// Import writes light curves and inserts all stars atomically.
// Returns storage.ErrDuplicateKey if any star is already stored.
func (im *Importer) Import(ctx context.Context, stars []*domain.Star) (n int, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		observability.RecordJobRun("import", status, time.Since(start).Seconds())
	}()

	records := make([]*storage.StarRecord, 0, len(stars))
	for _, s := range stars {
		r, err := catalogue.ToRecord(s, "")
		if err != nil {
			return 0, err
		}
		if lc := s.LightCurve(); lc != nil {
			r.LCPath = filepath.Join(im.lcDir, idhash.ComputeStarKey(r.Origin, r.Identifier)+".dat")
			if err := catalogue.WriteLightCurveFile(r.LCPath, lc); err != nil {
				return 0, fmt.Errorf("light curve of %s: %w", s.Name(), err)
			}
		}
		records = append(records, r)
	}
	if err := im.store.InsertBulk(ctx, records); err != nil {
		return 0, fmt.Errorf("insert stars: %w", err)
	}
	im.logger.Info("stars imported", zap.Int("stars", len(records)), zap.String("lc_dir", im.lcDir))
	return len(records), nil
}
