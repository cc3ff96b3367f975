package descriptor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"lightcurve-lab/internal/analysis"
	"lightcurve-lab/internal/domain"
)

var errNoLightCurve = fmt.Errorf("%w: star has no light curve", domain.ErrQueryInput)

// CurvesShapeConfig configures CurvesShape.
type CurvesShapeConfig struct {
	Templates    []*domain.Star
	DaysPerBin   float64 // word length = ComputeBins(time, DaysPerBin)
	AlphabetSize int
	Slide        bool
	Meth         string // average, closest or best<N>
}

// CurvesShape compares symbolic words of resampled light curves.
type CurvesShape struct {
	*comparative
	daysPerBin float64
}

// NewCurvesShape creates a light-curve shape comparator.
func NewCurvesShape(cfg CurvesShapeConfig, opts Options) (*CurvesShape, error) {
	if cfg.DaysPerBin <= 0 {
		return nil, fmt.Errorf("%w: days_per_bin must be positive", domain.ErrQueryInput)
	}
	d := &CurvesShape{daysPerBin: cfg.DaysPerBin}
	c, err := newComparative(NameCurvesShape, "curves_shape_dissimilarity", comparativeConfig{
		Templates:    cfg.Templates,
		AlphabetSize: cfg.AlphabetSize,
		Slide:        cfg.Slide,
		Meth:         cfg.Meth,
	}, d.word, opts)
	if err != nil {
		return nil, err
	}
	d.comparative = c
	return d, nil
}

// WordLength returns the word length used for a light curve.
func (d *CurvesShape) WordLength(lc *domain.LightCurve) int {
	return analysis.ComputeBins(lc.Time, d.daysPerBin)
}

func (d *CurvesShape) word(s *domain.Star) (analysis.Word, error) {
	lc := lightCurve(s)
	if lc == nil {
		return analysis.Word{}, errNoLightCurve
	}
	size := d.WordLength(lc)
	_, ys, err := analysis.ToEkviPAA(lc.Time, lc.Mag, size)
	if err != nil {
		return analysis.Word{}, err
	}
	return d.sax.Word(ys, size), nil
}

func curvesShapeFromParams(p domain.ComponentParams, opts Options) (Descriptor, error) {
	if err := p.CheckKeys(NameCurvesShape, "comp_stars", "days_per_bin", "alphabet_size", "slide", "meth"); err != nil {
		return nil, err
	}
	cc, err := comparativeParams(p, true)
	if err != nil {
		return nil, err
	}
	dpb, err := p.RequiredFloat("days_per_bin")
	if err != nil {
		return nil, err
	}
	return NewCurvesShape(CurvesShapeConfig{
		Templates:    cc.Templates,
		DaysPerBin:   dpb,
		AlphabetSize: cc.AlphabetSize,
		Slide:        cc.Slide,
		Meth:         cc.Meth,
	}, opts)
}

// HistShapeConfig configures HistShape.
type HistShapeConfig struct {
	Templates    []*domain.Star
	Bins         int // 0 = 0.1*N per light curve
	AlphabetSize int
	Slide        bool
	Meth         string
}

// HistShape compares symbolic words of magnitude histograms.
type HistShape struct {
	*comparative
	bins int
}

// NewHistShape creates a histogram shape comparator.
func NewHistShape(cfg HistShapeConfig, opts Options) (*HistShape, error) {
	if cfg.Bins < 0 {
		return nil, fmt.Errorf("%w: bins must not be negative", domain.ErrQueryInput)
	}
	d := &HistShape{bins: cfg.Bins}
	c, err := newComparative(NameHistShape, "hist_shape_dissimilarity", comparativeConfig{
		Templates:    cfg.Templates,
		AlphabetSize: cfg.AlphabetSize,
		Slide:        cfg.Slide,
		Meth:         cfg.Meth,
	}, d.word, opts)
	if err != nil {
		return nil, err
	}
	d.comparative = c
	return d, nil
}

func (d *HistShape) word(s *domain.Star) (analysis.Word, error) {
	lc := lightCurve(s)
	if lc == nil {
		return analysis.Word{}, errNoLightCurve
	}
	bins := d.bins
	counts, _, err := analysis.Histogram(lc.Time, lc.Mag, bins, true, true)
	if errors.Is(err, analysis.ErrBinsRequired) {
		bins = analysis.DefaultHistogramBins(lc.Len())
		d.logger.Warn("histogram bins not set, using default",
			zap.Stringer("star", s), zap.Int("bins", bins))
		counts, _, err = analysis.Histogram(lc.Time, lc.Mag, bins, true, true)
	}
	if err != nil {
		return analysis.Word{}, err
	}
	return d.sax.Word(counts, bins), nil
}

func histShapeFromParams(p domain.ComponentParams, opts Options) (Descriptor, error) {
	if err := p.CheckKeys(NameHistShape, "comp_stars", "bins", "alphabet_size", "slide", "meth"); err != nil {
		return nil, err
	}
	cc, err := comparativeParams(p, false)
	if err != nil {
		return nil, err
	}
	bins, err := p.RequiredInt("bins")
	if err != nil {
		return nil, err
	}
	return NewHistShape(HistShapeConfig{
		Templates:    cc.Templates,
		Bins:         bins,
		AlphabetSize: cc.AlphabetSize,
		Slide:        cc.Slide,
		Meth:         cc.Meth,
	}, opts)
}

// VariogramShapeConfig configures VariogramShape.
type VariogramShapeConfig struct {
	Templates    []*domain.Star
	Bins         int
	AlphabetSize int
	Slide        bool
	Meth         string
}

// VariogramShape compares symbolic words of log-log variograms.
type VariogramShape struct {
	*comparative
	bins int
}

// NewVariogramShape creates a variogram shape comparator.
func NewVariogramShape(cfg VariogramShapeConfig, opts Options) (*VariogramShape, error) {
	if cfg.Bins <= 0 {
		return nil, fmt.Errorf("%w: bins must be positive", domain.ErrQueryInput)
	}
	d := &VariogramShape{bins: cfg.Bins}
	c, err := newComparative(NameVariogramShape, "variogram_shape_dissimilarity", comparativeConfig{
		Templates:    cfg.Templates,
		AlphabetSize: cfg.AlphabetSize,
		Slide:        cfg.Slide,
		Meth:         cfg.Meth,
	}, d.word, opts)
	if err != nil {
		return nil, err
	}
	d.comparative = c
	return d, nil
}

func (d *VariogramShape) word(s *domain.Star) (analysis.Word, error) {
	lc := lightCurve(s)
	if lc == nil {
		return analysis.Word{}, errNoLightCurve
	}
	_, diffs, err := analysis.Variogram(lc.Time, lc.Mag, d.bins, true)
	if err != nil {
		return analysis.Word{}, err
	}
	if len(diffs) == 0 {
		return analysis.Word{}, fmt.Errorf("%w: empty variogram", domain.ErrQueryInput)
	}
	return d.sax.Word(diffs, d.bins), nil
}

func variogramShapeFromParams(p domain.ComponentParams, opts Options) (Descriptor, error) {
	if err := p.CheckKeys(NameVariogramShape, "comp_stars", "bins", "alphabet_size", "slide", "meth"); err != nil {
		return nil, err
	}
	cc, err := comparativeParams(p, false)
	if err != nil {
		return nil, err
	}
	bins, err := p.RequiredInt("bins")
	if err != nil {
		return nil, err
	}
	return NewVariogramShape(VariogramShapeConfig{
		Templates:    cc.Templates,
		Bins:         bins,
		AlphabetSize: cc.AlphabetSize,
		Slide:        cc.Slide,
		Meth:         cc.Meth,
	}, opts)
}

var (
	_ Descriptor = (*CurvesShape)(nil)
	_ Descriptor = (*HistShape)(nil)
	_ Descriptor = (*VariogramShape)(nil)
)
