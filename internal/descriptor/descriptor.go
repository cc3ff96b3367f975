// Package descriptor turns stars into feature vectors.
//
// A descriptor maps every star of a batch either to a fixed-length vector or
// to a nil row when the star lacks the inputs the descriptor needs. Descriptors
// never read the class label of a star.
package descriptor

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"lightcurve-lab/internal/domain"
)

// Registry names.
const (
	NameCurvesShape    = "CurvesShapeDescr"
	NameHistShape      = "HistShapeDescr"
	NameVariogramShape = "VariogramShapeDescr"
	NameVariogramSlope = "VariogramSlopeDescr"
	NameAbbeValue      = "AbbeValueDescr"
	NameColorIndex     = "ColorIndexDescr"
	NameProperty       = "PropertyDescr"
	NameCurve          = "CurveDescr"
)

// Descriptor extracts features from stars.
type Descriptor interface {
	// Name returns the registry name.
	Name() string

	// Labels names the coordinates of a feature vector.
	Labels() []string

	// SpaceCoords returns one row per star, nil when the star lacks features.
	SpaceCoords(stars []*domain.Star) [][]float64
}

// DefaultCacheSize is the number of template words kept per descriptor.
const DefaultCacheSize = 256

// Options holds construction settings shared by all descriptors.
type Options struct {
	Logger    *zap.Logger // nil = no-op
	CacheSize int         // template word cache, 0 = DefaultCacheSize
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) cacheSize() int {
	if o.CacheSize <= 0 {
		return DefaultCacheSize
	}
	return o.CacheSize
}

type factory func(p domain.ComponentParams, opts Options) (Descriptor, error)

var factories = map[string]factory{
	NameCurvesShape:    curvesShapeFromParams,
	NameHistShape:      histShapeFromParams,
	NameVariogramShape: variogramShapeFromParams,
	NameVariogramSlope: variogramSlopeFromParams,
	NameAbbeValue:      abbeValueFromParams,
	NameColorIndex:     colorIndexFromParams,
	NameProperty:       propertyFromParams,
	NameCurve:          curveFromParams,
}

// Names returns the registered descriptor names in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsDescriptor reports whether name is a registered descriptor.
func IsDescriptor(name string) bool {
	_, ok := factories[name]
	return ok
}

// FromParams builds the descriptor registered under name.
// Unknown names fail with domain.ErrNotFound; unknown or missing
// parameters fail with domain.ErrQueryInput.
func FromParams(name string, p domain.ComponentParams, opts Options) (Descriptor, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: descriptor %q", domain.ErrNotFound, name)
	}
	d, err := f(p, opts)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return d, nil
}

// lightCurve returns the first light curve of s or nil.
func lightCurve(s *domain.Star) *domain.LightCurve {
	if s == nil {
		return nil
	}
	lc := s.LightCurve()
	if lc == nil || lc.Len() == 0 {
		return nil
	}
	return lc
}
