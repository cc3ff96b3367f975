package descriptor

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"lightcurve-lab/internal/analysis"
	"lightcurve-lab/internal/domain"
)

// VariogramSlope is the slope of a linear fit to the log-log variogram.
type VariogramSlope struct {
	daysPerBin float64
	absolute   bool
	logger     *zap.Logger
}

// NewVariogramSlope creates a variogram slope descriptor.
func NewVariogramSlope(daysPerBin float64, absolute bool, opts Options) (*VariogramSlope, error) {
	if daysPerBin <= 0 {
		return nil, fmt.Errorf("%w: days_per_bin must be positive", domain.ErrQueryInput)
	}
	return &VariogramSlope{daysPerBin: daysPerBin, absolute: absolute, logger: opts.logger().Named(NameVariogramSlope)}, nil
}

func (d *VariogramSlope) Name() string     { return NameVariogramSlope }
func (d *VariogramSlope) Labels() []string { return []string{"variogram_slope"} }

func (d *VariogramSlope) SpaceCoords(stars []*domain.Star) [][]float64 {
	out := make([][]float64, len(stars))
	for i, s := range stars {
		lc := lightCurve(s)
		if lc == nil {
			continue
		}
		bins := analysis.ComputeBins(lc.Time, d.daysPerBin)
		lags, diffs, err := analysis.Variogram(lc.Time, lc.Mag, bins, true)
		if err != nil || len(lags) < 2 || floats.Max(lags) == floats.Min(lags) {
			d.logger.Debug("variogram unusable", zap.Stringer("star", s), zap.Error(err))
			continue
		}
		_, slope := stat.LinearRegression(lags, diffs, nil, false)
		if d.absolute {
			slope = math.Abs(slope)
		}
		out[i] = []float64{slope}
	}
	return out
}

func variogramSlopeFromParams(p domain.ComponentParams, opts Options) (Descriptor, error) {
	if err := p.CheckKeys(NameVariogramSlope, "days_per_bin", "absolute"); err != nil {
		return nil, err
	}
	dpb, err := p.RequiredFloat("days_per_bin")
	if err != nil {
		return nil, err
	}
	abs, err := p.Bool("absolute", false)
	if err != nil {
		return nil, err
	}
	return NewVariogramSlope(dpb, abs, opts)
}

// AbbeValue is the Abbe value of the light curve, optionally resampled.
type AbbeValue struct {
	bins int // 0 = raw magnitudes
}

// NewAbbeValue creates an Abbe value descriptor.
func NewAbbeValue(bins int) (*AbbeValue, error) {
	if bins < 0 {
		return nil, fmt.Errorf("%w: bins must not be negative", domain.ErrQueryInput)
	}
	return &AbbeValue{bins: bins}, nil
}

func (d *AbbeValue) Name() string     { return NameAbbeValue }
func (d *AbbeValue) Labels() []string { return []string{"abbe_value"} }

func (d *AbbeValue) SpaceCoords(stars []*domain.Star) [][]float64 {
	out := make([][]float64, len(stars))
	for i, s := range stars {
		lc := lightCurve(s)
		if lc == nil || lc.Len() < 2 {
			continue
		}
		var ratio float64
		if d.bins > 0 && d.bins < lc.Len() {
			ratio = float64(d.bins) / float64(lc.Len())
		}
		abbe, err := analysis.AbbeSmoothed(lc.Time, lc.Mag, ratio)
		if err != nil {
			continue
		}
		out[i] = []float64{abbe}
	}
	return out
}

func abbeValueFromParams(p domain.ComponentParams, _ Options) (Descriptor, error) {
	if err := p.CheckKeys(NameAbbeValue, "bins"); err != nil {
		return nil, err
	}
	bins, err := p.Int("bins", 0)
	if err != nil {
		return nil, err
	}
	return NewAbbeValue(bins)
}

// ColorPair is a color index First - Second. An empty Second uses First alone.
type ColorPair struct {
	First  string
	Second string
}

func (c ColorPair) String() string {
	if c.Second == "" {
		return c.First
	}
	return c.First + "-" + c.Second
}

// DefaultColors are B-V and V-I.
var DefaultColors = []ColorPair{{First: "b_mag", Second: "v_mag"}, {First: "v_mag", Second: "i_mag"}}

// ColorIndex reads magnitudes from the star's ancillary values.
type ColorIndex struct {
	colors []ColorPair
}

// NewColorIndex creates a color index descriptor. Empty colors use DefaultColors.
func NewColorIndex(colors []ColorPair) *ColorIndex {
	if len(colors) == 0 {
		colors = DefaultColors
	}
	return &ColorIndex{colors: colors}
}

func (d *ColorIndex) Name() string { return NameColorIndex }

func (d *ColorIndex) Labels() []string {
	labels := make([]string, len(d.colors))
	for i, c := range d.colors {
		labels[i] = c.String()
	}
	return labels
}

func (d *ColorIndex) SpaceCoords(stars []*domain.Star) [][]float64 {
	out := make([][]float64, len(stars))
	for i, s := range stars {
		if s == nil {
			continue
		}
		row := make([]float64, 0, len(d.colors))
		for _, c := range d.colors {
			v, ok := s.MoreFloat(c.First)
			if !ok {
				row = nil
				break
			}
			if c.Second != "" {
				w, ok := s.MoreFloat(c.Second)
				if !ok {
					row = nil
					break
				}
				v -= w
			}
			row = append(row, v)
		}
		out[i] = row
	}
	return out
}

func colorIndexFromParams(p domain.ComponentParams, _ Options) (Descriptor, error) {
	if err := p.CheckKeys(NameColorIndex, "colors"); err != nil {
		return nil, err
	}
	colors, err := parseColors(p["colors"])
	if err != nil {
		return nil, err
	}
	return NewColorIndex(colors), nil
}

func parseColors(v any) ([]ColorPair, error) {
	if v == nil {
		return nil, nil
	}
	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []string:
		for _, s := range list {
			items = append(items, s)
		}
	case string:
		items = []any{list}
	default:
		return nil, fmt.Errorf("%w: colors must be a list, got %T", domain.ErrQueryInput, v)
	}

	colors := make([]ColorPair, 0, len(items))
	for _, item := range items {
		switch c := item.(type) {
		case string:
			colors = append(colors, ColorPair{First: c})
		case []string:
			if len(c) != 2 {
				return nil, fmt.Errorf("%w: color pair must have two keys, got %v", domain.ErrQueryInput, c)
			}
			colors = append(colors, ColorPair{First: c[0], Second: c[1]})
		case []any:
			if len(c) != 2 {
				return nil, fmt.Errorf("%w: color pair must have two keys, got %v", domain.ErrQueryInput, c)
			}
			first, ok1 := c[0].(string)
			second, ok2 := c[1].(string)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("%w: color keys must be strings, got %v", domain.ErrQueryInput, c)
			}
			colors = append(colors, ColorPair{First: first, Second: second})
		default:
			return nil, fmt.Errorf("%w: invalid color %v", domain.ErrQueryInput, item)
		}
	}
	return colors, nil
}

// Property reads numeric ancillary values of the star.
type Property struct {
	names []string
	ifNot *float64 // substitute for missing values, nil = star is missing
}

// NewProperty creates a property descriptor.
func NewProperty(names []string, ifNot *float64) (*Property, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: attribute_names must not be empty", domain.ErrQueryInput)
	}
	return &Property{names: names, ifNot: ifNot}, nil
}

func (d *Property) Name() string     { return NameProperty }
func (d *Property) Labels() []string { return append([]string(nil), d.names...) }

func (d *Property) SpaceCoords(stars []*domain.Star) [][]float64 {
	out := make([][]float64, len(stars))
	for i, s := range stars {
		if s == nil {
			continue
		}
		row := make([]float64, 0, len(d.names))
		for _, name := range d.names {
			v, ok := s.MoreFloat(name)
			if !ok {
				if d.ifNot == nil {
					row = nil
					break
				}
				v = *d.ifNot
			}
			row = append(row, v)
		}
		out[i] = row
	}
	return out
}

func propertyFromParams(p domain.ComponentParams, _ Options) (Descriptor, error) {
	if err := p.CheckKeys(NameProperty, "attribute_names", "ifnot"); err != nil {
		return nil, err
	}
	names, err := p.Strings("attribute_names")
	if err != nil {
		return nil, err
	}
	var ifNot *float64
	if p.Has("ifnot") {
		v, err := p.Float("ifnot", 0)
		if err != nil {
			return nil, err
		}
		ifNot = &v
	}
	return NewProperty(names, ifNot)
}

// Curve uses the light curve itself, reduced to bins frames.
type Curve struct {
	bins   int
	height int // 0 = no quantisation
}

// NewCurve creates a raw curve descriptor.
func NewCurve(bins, height int) (*Curve, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("%w: bins must be positive", domain.ErrQueryInput)
	}
	if height < 0 {
		return nil, fmt.Errorf("%w: height must not be negative", domain.ErrQueryInput)
	}
	return &Curve{bins: bins, height: height}, nil
}

func (d *Curve) Name() string { return NameCurve }

func (d *Curve) Labels() []string {
	labels := make([]string, d.bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("curve_%d", i)
	}
	return labels
}

func (d *Curve) SpaceCoords(stars []*domain.Star) [][]float64 {
	out := make([][]float64, len(stars))
	for i, s := range stars {
		lc := lightCurve(s)
		if lc == nil || lc.Len() < d.bins {
			continue
		}
		row := analysis.ToPAA(lc.Mag, d.bins)
		if d.height > 0 {
			quantise(row, d.height)
		}
		out[i] = row
	}
	return out
}

// quantise scales x onto integer levels 0..height in place.
func quantise(x []float64, height int) {
	lo, hi := floats.Min(x), floats.Max(x)
	if hi == lo {
		for i := range x {
			x[i] = 0
		}
		return
	}
	for i, v := range x {
		x[i] = math.Round((v - lo) / (hi - lo) * float64(height))
	}
}

func curveFromParams(p domain.ComponentParams, _ Options) (Descriptor, error) {
	if err := p.CheckKeys(NameCurve, "bins", "height"); err != nil {
		return nil, err
	}
	bins, err := p.RequiredInt("bins")
	if err != nil {
		return nil, err
	}
	height, err := p.Int("height", 0)
	if err != nil {
		return nil, err
	}
	return NewCurve(bins, height)
}

var (
	_ Descriptor = (*VariogramSlope)(nil)
	_ Descriptor = (*AbbeValue)(nil)
	_ Descriptor = (*ColorIndex)(nil)
	_ Descriptor = (*Property)(nil)
	_ Descriptor = (*Curve)(nil)
)
