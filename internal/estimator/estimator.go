// Package estimator searches hyper-parameter combinations of a stars filter
// shape for the one scoring best on a held-out split.
package estimator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lightcurve-lab/internal/decider"
	"lightcurve-lab/internal/descriptor"
	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/idhash"
	"lightcurve-lab/internal/metrics"
	"lightcurve-lab/internal/observability"
	"lightcurve-lab/internal/starsfilter"
)

// Options configures an Estimator.
type Options struct {
	Descriptors []string // descriptor names in composition order
	Deciders    []string // decider names

	// StaticParams are merged into every trial; trial values win.
	// Descriptor entries must be mappings. Decider entries may also be a
	// list (threshold first, then extra params in order) or a scalar threshold.
	StaticParams map[string]any

	SplitRatio float64   // 0 = DefaultSplitRatio
	Seed       int64     // shuffle seed
	Workers    int       // parallel trials, <= 1 = sequential
	ROCStep    float64   // 0 = metrics.DefaultROCStep
	ScoreName  string    // "" = precision; ignored when Score is set
	Score      ScoreFunc // custom score
	Opt        string    // max (default) or min
	ReducedDim int       // passed to every stars filter

	RunID      string // "" = random UUID
	Descriptor descriptor.Options
	Logger     *zap.Logger
}

// Trial is one evaluated parameter combination.
type Trial struct {
	ID       string
	Index    int
	Params   domain.Params // trial params merged over static params
	Record   domain.EvaluationRecord
	ROC      []metrics.ROCPoint
	AUC      float64
	Score    float64
	Filter   *starsfilter.StarsFilter // learned on the train split
	Duration time.Duration
}

// Result holds every trial of a run and the index of the best one.
type Result struct {
	RunID  string
	Trials []*Trial
	Best   int

	TrainSearched, TrainOthers int
	TestSearched, TestOthers   int
}

// BestTrial returns the winning trial.
func (r *Result) BestTrial() *Trial {
	return r.Trials[r.Best]
}

// Estimator runs parameter searches. It is safe for concurrent use.
type Estimator struct {
	opts   Options
	score  ScoreFunc
	static domain.Params
	logger *zap.Logger
}

// New validates opts and creates an Estimator.
func New(opts Options) (*Estimator, error) {
	if len(opts.Descriptors) == 0 || len(opts.Deciders) == 0 {
		return nil, fmt.Errorf("%w: at least one descriptor and one decider are required", domain.ErrQueryInput)
	}
	for _, name := range opts.Descriptors {
		if !descriptor.IsDescriptor(name) {
			return nil, fmt.Errorf("%w: descriptor %q", domain.ErrNotFound, name)
		}
	}
	for _, name := range opts.Deciders {
		if !decider.IsDecider(name) {
			return nil, fmt.Errorf("%w: decider %q", domain.ErrNotFound, name)
		}
	}

	if opts.SplitRatio == 0 {
		opts.SplitRatio = DefaultSplitRatio
	}
	if opts.SplitRatio <= 0 || opts.SplitRatio >= 1 {
		return nil, fmt.Errorf("%w: split ratio %v must lie in (0, 1)", domain.ErrQueryInput, opts.SplitRatio)
	}
	if opts.ROCStep == 0 {
		opts.ROCStep = metrics.DefaultROCStep
	}
	if opts.ROCStep < 0 || opts.ROCStep > 1 {
		return nil, fmt.Errorf("%w: ROC step %v must lie in (0, 1]", domain.ErrQueryInput, opts.ROCStep)
	}
	if opts.Opt == "" {
		opts.Opt = OptMax
	}
	if opts.Opt != OptMax && opts.Opt != OptMin {
		return nil, fmt.Errorf("%w: opt %q (expected max or min)", domain.ErrInvalidOption, opts.Opt)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	score := opts.Score
	if score == nil {
		if opts.ScoreName == "" {
			opts.ScoreName = domain.KeyPrecision
		}
		var err error
		if score, err = ScoreByName(opts.ScoreName); err != nil {
			return nil, err
		}
	}

	static, err := staticParams(opts)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Descriptor.Logger == nil {
		opts.Descriptor.Logger = logger
	}

	return &Estimator{opts: opts, score: score, static: static, logger: logger}, nil
}

// staticParams normalises static params to mappings and rejects unknown components.
func staticParams(opts Options) (domain.Params, error) {
	out := make(domain.Params, len(opts.StaticParams))
	for comp, v := range opts.StaticParams {
		switch {
		case contains(opts.Deciders, comp):
			p, err := decider.Positional(comp, v)
			if err != nil {
				return nil, err
			}
			out[comp] = p
		case contains(opts.Descriptors, comp):
			switch m := v.(type) {
			case nil:
				out[comp] = domain.ComponentParams{}
			case domain.ComponentParams:
				out[comp] = m
			case map[string]any:
				out[comp] = domain.ComponentParams(m)
			default:
				return nil, fmt.Errorf("%w: static params of %s must be a mapping, got %T",
					domain.ErrQueryInput, comp, v)
			}
		default:
			return nil, fmt.Errorf("%w: static params for unused component %q", domain.ErrQueryInput, comp)
		}
	}
	return out, nil
}

// Run shuffles and splits both classes, evaluates every trial and picks the
// best by score. Any failing trial fails the run.
func (e *Estimator) Run(ctx context.Context, searched, others []*domain.Star, tuned []domain.Params) (*Result, error) {
	if len(searched) == 0 || len(others) == 0 {
		return nil, fmt.Errorf("%w: searched and other stars must not be empty", domain.ErrQueryInput)
	}
	if len(tuned) == 0 {
		tuned = []domain.Params{{}}
	}
	for i, t := range tuned {
		for comp := range t {
			if !contains(e.opts.Descriptors, comp) && !contains(e.opts.Deciders, comp) {
				return nil, fmt.Errorf("%w: trial %d sets params of unused component %q",
					domain.ErrQueryInput, i, comp)
			}
		}
	}

	// 1. Shuffle once, so the split depends only on the seed
	rng := rand.New(rand.NewSource(e.opts.Seed))
	searched = shuffled(rng, searched)
	others = shuffled(rng, others)

	// 2. Split each class
	trainS, testS, err := split(searched, e.opts.SplitRatio, "searched")
	if err != nil {
		return nil, err
	}
	trainO, testO, err := split(others, e.opts.SplitRatio, "other")
	if err != nil {
		return nil, err
	}

	runID := e.opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	res := &Result{
		RunID:         runID,
		Trials:        make([]*Trial, len(tuned)),
		TrainSearched: len(trainS),
		TrainOthers:   len(trainO),
		TestSearched:  len(testS),
		TestOthers:    len(testO),
	}
	e.logger.Info("estimator run started",
		zap.String("run_id", runID),
		zap.Int("trials", len(tuned)),
		zap.Int("workers", e.opts.Workers),
		zap.Int("train_searched", len(trainS)),
		zap.Int("train_others", len(trainO)))

	// 3. Evaluate trials; each owns its filter, descriptors and deciders
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i := range tuned {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trial, err := e.runTrial(runID, i, tuned[i], trainS, trainO, testS, testO)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			res.Trials[i] = trial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 4. Pick the best score
	for i, t := range res.Trials {
		if i == 0 || better(e.opts.Opt, t.Score, res.Trials[res.Best].Score) {
			res.Best = i
		}
	}
	best := res.BestTrial()
	observability.SetBestScore(best.Score)
	e.logger.Info("estimator run finished",
		zap.String("run_id", runID),
		zap.Int("best_trial", best.Index),
		zap.Float64("best_score", best.Score))
	return res, nil
}

func (e *Estimator) runTrial(runID string, index int, tuned domain.Params, trainS, trainO, testS, testO []*domain.Star) (*Trial, error) {
	start := time.Now()
	trial, err := e.evaluate(runID, index, tuned, trainS, trainO, testS, testO)
	elapsed := time.Since(start)
	if err != nil {
		observability.RecordTrial("error", elapsed.Seconds())
		return nil, err
	}
	observability.RecordTrial("ok", elapsed.Seconds())
	trial.Duration = elapsed
	e.logger.Debug("trial evaluated",
		zap.Int("trial", index),
		zap.String("trial_id", trial.ID),
		zap.Float64("score", trial.Score),
		zap.Duration("duration", elapsed))
	return trial, nil
}

func (e *Estimator) evaluate(runID string, index int, tuned domain.Params, trainS, trainO, testS, testO []*domain.Star) (*Trial, error) {
	params := tuned.Merge(e.static)

	filter, err := e.Build(params)
	if err != nil {
		return nil, err
	}
	if err := filter.Learn(trainS, trainO); err != nil {
		return nil, err
	}
	rec, err := filter.Statistic(testS, testO)
	if err != nil {
		return nil, err
	}
	rec.Params = params
	roc, err := filter.ROC(testS, testO, e.opts.ROCStep)
	if err != nil {
		return nil, err
	}
	id, err := idhash.ComputeTrialID(runID, index, params)
	if err != nil {
		return nil, err
	}
	return &Trial{
		ID:     id,
		Index:  index,
		Params: params,
		Record: rec,
		ROC:    roc,
		AUC:    metrics.AUC(roc),
		Score:  e.score(rec),
		Filter: filter,
	}, nil
}

// StaticParams returns a copy of the normalised static params.
func (e *Estimator) StaticParams() domain.Params {
	return e.static.Clone()
}

// Build creates an unlearned stars filter of the configured shape with params.
// Components absent from params are built with their defaults.
func (e *Estimator) Build(params domain.Params) (*starsfilter.StarsFilter, error) {
	descs := make([]descriptor.Descriptor, len(e.opts.Descriptors))
	for i, name := range e.opts.Descriptors {
		d, err := descriptor.FromParams(name, params[name], e.opts.Descriptor)
		if err != nil {
			return nil, err
		}
		descs[i] = d
	}
	decs := make([]decider.Decider, len(e.opts.Deciders))
	for i, name := range e.opts.Deciders {
		d, err := decider.FromParams(name, params[name])
		if err != nil {
			return nil, err
		}
		decs[i] = d
	}
	return starsfilter.New(descs, decs, starsfilter.Options{
		ReducedDim: e.opts.ReducedDim,
		Logger:     e.logger.Named("starsfilter"),
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
