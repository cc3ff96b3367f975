package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"lightcurve-lab/internal/catalogue"
	"lightcurve-lab/internal/config"
	"lightcurve-lab/internal/estimator"
	"lightcurve-lab/internal/observability"
	"lightcurve-lab/internal/reporting"
	"lightcurve-lab/internal/starsfilter"
)

// FilterResult summarises a finished filter job.
type FilterResult struct {
	Rows []*reporting.FilterRow
	Path string

	Passed, Rejected, Dropped int

	// training stars that kept features
	TrainSearched, TrainOthers int
}

// FilterRunner trains one stars filter and applies it to a batch of stars.
type FilterRunner struct {
	job     *config.FilterJob
	env     catalogue.Env
	outPath string
	logger  *zap.Logger
}

// NewFilterRunner creates a runner for job.
func NewFilterRunner(job *config.FilterJob, env catalogue.Env) *FilterRunner {
	if env.BaseDir == "" {
		env.BaseDir = job.BaseDir()
	}
	logger := env.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilterRunner{
		job:     job,
		env:     env,
		outPath: job.Output.Path(job.Output.Result),
		logger:  logger,
	}
}

// WithOutput overrides the result file path.
func (r *FilterRunner) WithOutput(path string) *FilterRunner {
	r.outPath = path
	return r
}

// Run trains on the job samples, filters the job stars and writes one row per star.
func (r *FilterRunner) Run(ctx context.Context) (res *FilterResult, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		observability.RecordJobRun("filter", status, time.Since(start).Seconds())
	}()
	job := r.job

	// 1. Load samples, templates and candidates
	searched, err := loadSources(ctx, job.Searched, r.env)
	if err != nil {
		return nil, fmt.Errorf("searched: %w", err)
	}
	others, err := loadSources(ctx, job.Others, r.env)
	if err != nil {
		return nil, fmt.Errorf("others: %w", err)
	}
	templates, err := loadTemplates(ctx, job.Templates, r.env)
	if err != nil {
		return nil, err
	}
	stars, err := loadSources(ctx, job.Stars, r.env)
	if err != nil {
		return nil, fmt.Errorf("stars: %w", err)
	}
	static, err := resolveStatic(job.StaticParams, templates)
	if err != nil {
		return nil, err
	}

	// 2. Build and train the filter on the whole sample
	est, err := estimator.New(estimator.Options{
		Descriptors:  job.Descriptors,
		Deciders:     job.Deciders,
		StaticParams: static,
		ReducedDim:   job.ReducedDim,
		Logger:       r.logger.Named("estimator"),
	})
	if err != nil {
		return nil, err
	}
	filter, err := est.Build(est.StaticParams())
	if err != nil {
		return nil, err
	}
	if err := filter.Learn(searched, others); err != nil {
		return nil, err
	}
	trainS, trainO := filter.TrainingCoords()
	r.logger.Debug("filter trained",
		zap.Int("searched", len(trainS)),
		zap.Int("searched_dropped", len(searched)-len(trainS)),
		zap.Int("others", len(trainO)),
		zap.Int("others_dropped", len(others)-len(trainO)))

	// 3. Score once, then apply the pass method to the same scores
	ev, err := filter.EvaluateStars(stars, starsfilter.MethodMean)
	if err != nil {
		return nil, err
	}
	flags, err := ev.Passing(job.PassMethod, filter.MeanThreshold())
	if err != nil {
		return nil, err
	}
	rows := reporting.FilterRows(ev, flags)

	// 4. Write the result file
	var buf bytes.Buffer
	if err := reporting.WriteFilterResult(&buf, rows, job.Output.Rune()); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(r.outPath), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(r.outPath, buf.Bytes(), 0644); err != nil {
		return nil, err
	}

	res = &FilterResult{
		Rows:          rows,
		Path:          r.outPath,
		Dropped:       len(ev.Dropped),
		TrainSearched: len(trainS),
		TrainOthers:   len(trainO),
	}
	for _, ok := range flags {
		if ok {
			res.Passed++
		} else {
			res.Rejected++
		}
	}
	observability.MarkJobSuccess(time.Now().Unix())
	r.logger.Info("filter job finished",
		zap.String("job", job.Name),
		zap.Int("passed", res.Passed),
		zap.Int("rejected", res.Rejected),
		zap.Int("dropped", res.Dropped),
		zap.String("path", res.Path))
	return res, nil
}
