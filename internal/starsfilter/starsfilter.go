// Package starsfilter composes descriptors and deciders into a trainable
// star classifier.
package starsfilter

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"lightcurve-lab/internal/decider"
	"lightcurve-lab/internal/descriptor"
	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/metrics"
	"lightcurve-lab/internal/observability"
	"lightcurve-lab/internal/reduction"
)

// ErrNotLearned is returned when scoring a filter before Learn.
var ErrNotLearned = errors.New("stars filter has not learned yet")

// Aggregation methods of per-decider scores.
const (
	MethodMean    = "mean"
	MethodHighest = "highest"
	MethodLowest  = "lowest"
)

// Pass methods of FilterStars.
const (
	PassAll  = "all"
	PassMean = "mean"
	PassOne  = "one"
)

// ScorePrecision is the number of decimals kept in aggregated scores.
const ScorePrecision = 2

// Options configures a StarsFilter.
type Options struct {
	ReducedDim int         // 0 = no reduction
	Logger     *zap.Logger // nil = no-op
}

// StarsFilter scores stars by the consensus of several deciders over the
// concatenated features of several descriptors. It is not safe for
// concurrent use.
type StarsFilter struct {
	descriptors []descriptor.Descriptor
	deciders    []decider.Decider
	reducedDim  int
	logger      *zap.Logger

	learned        bool
	searchedCoords [][]float64
	othersCoords   [][]float64
	projector      *reduction.PCA
}

// New creates an unlearned filter.
func New(descriptors []descriptor.Descriptor, deciders []decider.Decider, opts Options) (*StarsFilter, error) {
	if len(descriptors) == 0 || len(deciders) == 0 {
		return nil, fmt.Errorf("%w: at least one descriptor and one decider are required", domain.ErrQueryInput)
	}
	if opts.ReducedDim < 0 {
		return nil, fmt.Errorf("%w: reduced dimension must not be negative", domain.ErrQueryInput)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StarsFilter{
		descriptors: descriptors,
		deciders:    deciders,
		reducedDim:  opts.ReducedDim,
		logger:      logger,
	}, nil
}

// Descriptors returns the descriptors in composition order.
func (f *StarsFilter) Descriptors() []descriptor.Descriptor {
	return f.descriptors
}

// Deciders returns the deciders.
func (f *StarsFilter) Deciders() []decider.Decider {
	return f.deciders
}

// Learned reports whether the filter can score stars.
func (f *StarsFilter) Learned() bool {
	return f.learned
}

// Labels returns the coordinate labels of composed feature points, before reduction.
func (f *StarsFilter) Labels() []string {
	var labels []string
	for _, d := range f.descriptors {
		labels = append(labels, d.Labels()...)
	}
	return labels
}

// TrainingCoords returns the stored (reduced) training features. Callers
// must not modify them.
func (f *StarsFilter) TrainingCoords() (searched, others [][]float64) {
	return f.searchedCoords, f.othersCoords
}

// Learn trains every decider on the features of searched and other stars.
// Stars lacking features are dropped with a warning. A failure leaves the
// filter unlearned.
func (f *StarsFilter) Learn(searched, others []*domain.Star) error {
	f.learned = false
	f.searchedCoords, f.othersCoords, f.projector = nil, nil, nil

	sc, _, sDropped := f.compose(searched)
	oc, _, oDropped := f.compose(others)
	f.reportDropped("learn", sDropped, oDropped)
	if len(sc) == 0 || len(oc) == 0 {
		return fmt.Errorf("%w: no usable stars in the training sample (searched %d of %d, others %d of %d)",
			domain.ErrQueryInput, len(sc), len(searched), len(oc), len(others))
	}

	if f.reducedDim > 0 && len(sc[0]) > f.reducedDim {
		all := append(append([][]float64{}, sc...), oc...)
		pca, err := reduction.Fit(all, f.reducedDim)
		if err != nil {
			return fmt.Errorf("fit reduction: %w", err)
		}
		if sc, err = pca.Transform(sc); err != nil {
			return err
		}
		if oc, err = pca.Transform(oc); err != nil {
			return err
		}
		f.projector = pca
	}

	for _, d := range f.deciders {
		if err := d.Learn(sc, oc); err != nil {
			observability.RecordLearnFailure(d.Name())
			f.projector = nil
			return err
		}
	}
	f.searchedCoords, f.othersCoords = sc, oc
	f.learned = true
	f.logger.Debug("learned",
		zap.Int("searched", len(sc)),
		zap.Int("others", len(oc)),
		zap.Int("dim", len(sc[0])))
	return nil
}

// Evaluation is the result of scoring a batch of stars.
type Evaluation struct {
	Stars   []*domain.Star // stars with features, in input order
	Scores  []float64      // aggregated score per star in Stars
	Dropped []*domain.Star // stars without features

	perDecider [][]float64 // raw scores, one slice per decider
}

// EvaluateStars scores stars with every decider and aggregates the scores
// per star with method (mean, highest, lowest), rounded to two decimals.
func (f *StarsFilter) EvaluateStars(stars []*domain.Star, method string) (*Evaluation, error) {
	agg, err := aggregator(method)
	if err != nil {
		return nil, err
	}
	kept, perDecider, dropped, err := f.scores(stars)
	if err != nil {
		return nil, err
	}
	ev := &Evaluation{Stars: kept, Dropped: dropped, perDecider: perDecider}
	ev.Scores = ev.aggregate(agg)
	return ev, nil
}

func (ev *Evaluation) aggregate(agg func([]float64) float64) []float64 {
	out := make([]float64, len(ev.Stars))
	column := make([]float64, len(ev.perDecider))
	for i := range ev.Stars {
		for j, s := range ev.perDecider {
			column[j] = s[i]
		}
		out[i] = metrics.Round(agg(column), ScorePrecision)
	}
	return out
}

// Passing flags the stars of ev passing the consensus rule passMethod:
// all (lowest score), mean (mean score) or one (highest score), each
// compared with threshold.
func (ev *Evaluation) Passing(passMethod string, threshold float64) ([]bool, error) {
	agg, err := passAggregator(passMethod)
	if err != nil {
		return nil, err
	}
	flags := make([]bool, len(ev.Stars))
	for i, score := range ev.aggregate(agg) {
		flags[i] = score >= threshold
	}
	return flags, nil
}

func passAggregator(passMethod string) (func([]float64) float64, error) {
	switch passMethod {
	case PassAll:
		return aggregator(MethodLowest)
	case PassMean:
		return aggregator(MethodMean)
	case PassOne:
		return aggregator(MethodHighest)
	}
	return nil, fmt.Errorf("%w: unknown pass method %q", domain.ErrQueryInput, passMethod)
}

// FilterStars returns the stars passing passMethod against the mean decider
// threshold (see Evaluation.Passing). Stars without features are returned
// as dropped.
func (f *StarsFilter) FilterStars(stars []*domain.Star, passMethod string) (passed, dropped []*domain.Star, err error) {
	if _, err := passAggregator(passMethod); err != nil {
		return nil, nil, err
	}
	ev, err := f.EvaluateStars(stars, MethodMean)
	if err != nil {
		return nil, nil, err
	}
	flags, err := ev.Passing(passMethod, f.MeanThreshold())
	if err != nil {
		return nil, nil, err
	}
	for i, s := range ev.Stars {
		if flags[i] {
			passed = append(passed, s)
		}
	}
	return passed, ev.Dropped, nil
}

// MeanThreshold returns the mean of the decider thresholds.
func (f *StarsFilter) MeanThreshold() float64 {
	var sum float64
	for _, d := range f.deciders {
		sum += d.Threshold()
	}
	return sum / float64(len(f.deciders))
}

// Statistic evaluates every decider on labelled stars and returns the mean record.
func (f *StarsFilter) Statistic(searched, others []*domain.Star) (domain.EvaluationRecord, error) {
	sc, oc, err := f.labelledCoords(searched, others)
	if err != nil {
		return domain.EvaluationRecord{}, err
	}
	records := make([]domain.EvaluationRecord, 0, len(f.deciders))
	for _, d := range f.deciders {
		rec, err := decider.Statistic(d, sc, oc)
		if err != nil {
			return domain.EvaluationRecord{}, err
		}
		records = append(records, rec)
	}
	return metrics.MeanRecord(records), nil
}

// ROC sweeps the threshold over mean scores of labelled stars.
func (f *StarsFilter) ROC(searched, others []*domain.Star, step float64) ([]metrics.ROCPoint, error) {
	s, err := f.EvaluateStars(searched, MethodMean)
	if err != nil {
		return nil, err
	}
	o, err := f.EvaluateStars(others, MethodMean)
	if err != nil {
		return nil, err
	}
	return metrics.ROC(s.Scores, o.Scores, step), nil
}

// labelledCoords composes and reduces features of both test classes.
func (f *StarsFilter) labelledCoords(searched, others []*domain.Star) ([][]float64, [][]float64, error) {
	if !f.learned {
		return nil, nil, ErrNotLearned
	}
	sc, _, sDropped := f.compose(searched)
	oc, _, oDropped := f.compose(others)
	f.reportDropped("evaluate", sDropped, oDropped)
	var err error
	if sc, err = f.reduce(sc); err != nil {
		return nil, nil, err
	}
	if oc, err = f.reduce(oc); err != nil {
		return nil, nil, err
	}
	return sc, oc, nil
}

// scores returns per-decider scores of the stars that have features.
func (f *StarsFilter) scores(stars []*domain.Star) ([]*domain.Star, [][]float64, []*domain.Star, error) {
	if !f.learned {
		return nil, nil, nil, ErrNotLearned
	}
	coords, kept, dropped := f.compose(stars)
	f.reportDropped("evaluate", dropped)
	coords, err := f.reduce(coords)
	if err != nil {
		return nil, nil, nil, err
	}
	perDecider := make([][]float64, len(f.deciders))
	for j, d := range f.deciders {
		if perDecider[j], err = d.Evaluate(coords); err != nil {
			return nil, nil, nil, fmt.Errorf("evaluate %s: %w", d.Name(), err)
		}
	}
	observability.RecordStarsEvaluated(len(kept))
	return kept, perDecider, dropped, nil
}

// compose concatenates descriptor features per star, in descriptor order.
func (f *StarsFilter) compose(stars []*domain.Star) (coords [][]float64, kept, dropped []*domain.Star) {
	parts := make([][][]float64, len(f.descriptors))
	for i, d := range f.descriptors {
		parts[i] = d.SpaceCoords(stars)
	}
	for k, s := range stars {
		var row []float64
		missing := ""
		for i, d := range f.descriptors {
			if k >= len(parts[i]) || parts[i][k] == nil {
				missing = d.Name()
				break
			}
			row = append(row, parts[i][k]...)
		}
		if missing != "" {
			f.logger.Warn("star dropped, missing features",
				zap.Stringer("star", s), zap.String("descriptor", missing))
			dropped = append(dropped, s)
			continue
		}
		coords = append(coords, row)
		kept = append(kept, s)
	}
	return coords, kept, dropped
}

func (f *StarsFilter) reduce(coords [][]float64) ([][]float64, error) {
	if f.projector == nil || len(coords) == 0 {
		return coords, nil
	}
	return f.projector.Transform(coords)
}

func (f *StarsFilter) reportDropped(phase string, groups ...[]*domain.Star) {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	observability.RecordStarsDropped(phase, n)
}

func aggregator(method string) (func([]float64) float64, error) {
	switch method {
	case MethodMean:
		return func(x []float64) float64 {
			var sum float64
			for _, v := range x {
				sum += v
			}
			return sum / float64(len(x))
		}, nil
	case MethodHighest:
		return func(x []float64) float64 {
			best := math.Inf(-1)
			for _, v := range x {
				best = math.Max(best, v)
			}
			return best
		}, nil
	case MethodLowest:
		return func(x []float64) float64 {
			best := math.Inf(1)
			for _, v := range x {
				best = math.Min(best, v)
			}
			return best
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown aggregation method %q", domain.ErrQueryInput, method)
}
