// Package catalogue provides star sources: light-curve files, CSV indexes
// and the local star database, behind a registry keyed by adapter name.
package catalogue

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/observability"
	"lightcurve-lab/internal/storage"
)

// Adapter provides stars from an external source.
type Adapter interface {
	// Stars returns the matching stars. No match yields an empty slice;
	// read or parse failures are errors.
	Stars(ctx context.Context) ([]*domain.Star, error)
}

// Query holds adapter-specific parameters (e.g. path, ra, dec, delta).
type Query = domain.ComponentParams

// Env carries shared dependencies of adapters.
type Env struct {
	StarStore storage.StarStore // required by LocalDbClient
	BaseDir   string            // resolves relative light-curve paths
	Logger    *zap.Logger       // nil = no-op
}

func (e Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Constructor builds an adapter from a query.
type Constructor func(q Query, env Env) (Adapter, error)

var (
	mu       sync.RWMutex
	registry = make(map[string]Constructor)
)

// Register makes an adapter available under name, replacing any previous one.
func Register(name string, c Constructor) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = c
}

// Names returns the registered adapter names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds the adapter registered under name.
// Unknown names fail with domain.ErrNotFound.
func New(name string, q Query, env Env) (Adapter, error) {
	mu.RLock()
	c, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: catalogue adapter %q (known: %v)", domain.ErrNotFound, name, Names())
	}
	a, err := c(q, env)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return a, nil
}

// Load builds the adapter and returns its stars.
func Load(ctx context.Context, name string, q Query, env Env) ([]*domain.Star, error) {
	a, err := New(name, q, env)
	if err != nil {
		return nil, err
	}
	stars, err := a.Stars(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	observability.RecordStarsLoaded(name, len(stars))
	env.logger().Info("stars loaded", zap.String("adapter", name), zap.Int("stars", len(stars)))
	return stars, nil
}

func init() {
	Register(NameFileManager, newFileManagerFromQuery)
	Register(NameCsvCatalogue, newCsvCatalogueFromQuery)
	Register(NameLocalDbClient, newLocalDbClientFromQuery)
}
