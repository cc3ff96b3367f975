package descriptor

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"lightcurve-lab/internal/analysis"
	"lightcurve-lab/internal/domain"
)

// Aggregation methods over template distances.
const (
	MethAverage = "average"
	MethClosest = "closest"
	methBest    = "best" // followed by N, e.g. "best3" or "best0.25"
)

// wordFunc builds the symbolic word of a star.
type wordFunc func(s *domain.Star) (analysis.Word, error)

// comparative scores stars by their symbolic dissimilarity to template stars.
type comparative struct {
	name      string
	label     string
	templates []*domain.Star
	sax       *analysis.SAX
	slide     bool
	meth      string
	bestN     float64 // count (>=1) or fraction in (0,1) when meth is best
	words     *lru.Cache
	wordOf    wordFunc
	logger    *zap.Logger
}

type comparativeConfig struct {
	Templates    []*domain.Star
	AlphabetSize int
	Slide        bool
	Meth         string
}

func newComparative(name, label string, cfg comparativeConfig, wordOf wordFunc, opts Options) (*comparative, error) {
	if len(cfg.Templates) == 0 {
		return nil, fmt.Errorf("%w: %s needs at least one template star", domain.ErrQueryInput, name)
	}
	sax, err := analysis.NewSAX(cfg.AlphabetSize)
	if err != nil {
		return nil, err
	}
	meth, bestN, err := parseMeth(cfg.Meth)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New(opts.cacheSize())
	if err != nil {
		return nil, err
	}
	return &comparative{
		name:      name,
		label:     label,
		templates: cfg.Templates,
		sax:       sax,
		slide:     cfg.Slide,
		meth:      meth,
		bestN:     bestN,
		words:     cache,
		wordOf:    wordOf,
		logger:    opts.logger().Named(name),
	}, nil
}

// parseMeth accepts "average", "closest" and "best<N>".
func parseMeth(meth string) (string, float64, error) {
	switch {
	case meth == "" || meth == MethAverage:
		return MethAverage, 0, nil
	case meth == MethClosest:
		return MethClosest, 0, nil
	case strings.HasPrefix(meth, methBest):
		n, err := strconv.ParseFloat(strings.TrimPrefix(meth, methBest), 64)
		if err != nil || n <= 0 || (n > 1 && n != math.Trunc(n)) {
			return "", 0, fmt.Errorf("%w: invalid comparison method %q", domain.ErrInvalidOption, meth)
		}
		return methBest, n, nil
	}
	return "", 0, fmt.Errorf("%w: invalid comparison method %q", domain.ErrInvalidOption, meth)
}

func (c *comparative) Name() string {
	return c.name
}

func (c *comparative) Labels() []string {
	return []string{c.label}
}

func (c *comparative) SpaceCoords(stars []*domain.Star) [][]float64 {
	out := make([][]float64, len(stars))
	for i, s := range stars {
		d, ok := c.dissimilarity(s)
		if ok {
			out[i] = []float64{d}
		}
	}
	return out
}

// dissimilarity aggregates distances of s to every usable template.
func (c *comparative) dissimilarity(s *domain.Star) (float64, bool) {
	word, err := c.wordOf(s)
	if err != nil {
		c.logger.Debug("no word for star", zap.Stringer("star", s), zap.Error(err))
		return 0, false
	}

	dists := make([]float64, 0, len(c.templates))
	for _, t := range c.templates {
		tw, ok := c.templateWord(t)
		if !ok {
			continue
		}
		d, err := c.sax.Dissimilarity(word, tw, c.slide)
		if err != nil {
			c.logger.Debug("words not comparable", zap.Stringer("star", s), zap.Stringer("template", t), zap.Error(err))
			continue
		}
		dists = append(dists, d)
	}
	if len(dists) == 0 {
		return 0, false
	}
	return c.aggregate(dists), true
}

func (c *comparative) templateWord(t *domain.Star) (analysis.Word, bool) {
	if v, ok := c.words.Get(t); ok {
		w, ok := v.(analysis.Word)
		return w, ok
	}
	w, err := c.wordOf(t)
	if err != nil {
		c.logger.Warn("template star skipped", zap.Stringer("template", t), zap.Error(err))
		return analysis.Word{}, false
	}
	c.words.Add(t, w)
	return w, true
}

func (c *comparative) aggregate(dists []float64) float64 {
	switch c.meth {
	case MethClosest:
		best := dists[0]
		for _, d := range dists[1:] {
			best = math.Min(best, d)
		}
		return best
	case methBest:
		sorted := append([]float64(nil), dists...)
		sort.Float64s(sorted)
		n := int(c.bestN)
		if c.bestN < 1 {
			n = int(math.Ceil(c.bestN * float64(len(sorted))))
		}
		n = max(1, min(n, len(sorted)))
		return mean(sorted[:n])
	}
	return mean(dists)
}

func mean(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// comparativeParams reads the keys shared by comparative descriptors.
func comparativeParams(p domain.ComponentParams, defaultSlide bool) (comparativeConfig, error) {
	var cfg comparativeConfig
	var err error
	if cfg.Templates, err = p.Stars("comp_stars"); err != nil {
		return cfg, err
	}
	if cfg.AlphabetSize, err = p.RequiredInt("alphabet_size"); err != nil {
		return cfg, err
	}
	if cfg.Slide, err = p.Bool("slide", defaultSlide); err != nil {
		return cfg, err
	}
	if cfg.Meth, err = p.String("meth", MethAverage); err != nil {
		return cfg, err
	}
	return cfg, nil
}
