package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"lightcurve-lab/internal/catalogue"
	"lightcurve-lab/internal/config"
	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/estimator"
	"lightcurve-lab/internal/observability"
	"lightcurve-lab/internal/reporting"
	"lightcurve-lab/internal/storage"
)

// TuneResult summarises a finished tune job.
type TuneResult struct {
	Result *estimator.Result
	Files  []string // written artifacts
}

// TuneRunner runs a parameter search job and writes its artifacts.
type TuneRunner struct {
	job        *config.TuneJob
	trialStore storage.TrialStore
	env        catalogue.Env
	workers    int    // overrides the job when > 0
	outputDir  string // overrides the job when set
	runID      string
	clock      func() time.Time
	logger     *zap.Logger
}

// NewTuneRunner creates a runner for job. Trials are persisted to trialStore,
// which also backs the Markdown report.
func NewTuneRunner(job *config.TuneJob, trialStore storage.TrialStore, env catalogue.Env) *TuneRunner {
	if env.BaseDir == "" {
		env.BaseDir = job.BaseDir()
	}
	logger := env.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TuneRunner{
		job:        job,
		trialStore: trialStore,
		env:        env,
		clock:      func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// WithClock sets a custom clock function for deterministic output.
func (r *TuneRunner) WithClock(clock func() time.Time) *TuneRunner {
	r.clock = clock
	return r
}

// WithWorkers overrides the number of parallel trials.
func (r *TuneRunner) WithWorkers(n int) *TuneRunner {
	r.workers = n
	return r
}

// WithOutputDir overrides the artifact directory.
func (r *TuneRunner) WithOutputDir(dir string) *TuneRunner {
	r.outputDir = dir
	return r
}

// WithRunID fixes the run identifier instead of a random UUID.
func (r *TuneRunner) WithRunID(id string) *TuneRunner {
	r.runID = id
	return r
}

// Run executes the job:
// - ROC data file, statistics file, ROC plot
// - trial records and ROC points in the trial store
// - Markdown tuning report
func (r *TuneRunner) Run(ctx context.Context) (res *TuneResult, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		observability.RecordJobRun("tune", status, time.Since(start).Seconds())
	}()

	job := r.job
	out := job.Output
	if r.outputDir != "" {
		out.Dir = r.outputDir
	}
	if err := os.MkdirAll(out.Dir, 0755); err != nil {
		return nil, err
	}

	// 1. Load samples and template sets
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

	// 2. Expand trials: explicit params first, then the grid
	trials := append([]domain.Params(nil), job.TunedParams...)
	if len(job.Grid) > 0 {
		expanded, err := estimator.Grid(job.Grid).Expand()
		if err != nil {
			return nil, err
		}
		trials = append(trials, expanded...)
	}
	if trials, err = resolveTrials(trials, templates); err != nil {
		return nil, err
	}
	static, err := resolveStatic(job.StaticParams, templates)
	if err != nil {
		return nil, err
	}

	// 3. Search
	workers := job.Workers
	if r.workers > 0 {
		workers = r.workers
	}
	est, err := estimator.New(estimator.Options{
		Descriptors:  job.Descriptors,
		Deciders:     job.Deciders,
		StaticParams: static,
		SplitRatio:   job.SplitRatio,
		Seed:         job.Seed,
		Workers:      workers,
		ROCStep:      job.ROCStep,
		ScoreName:    job.Score,
		Opt:          job.Opt,
		ReducedDim:   job.ReducedDim,
		RunID:        r.runID,
		Logger:       r.logger.Named("estimator"),
	})
	if err != nil {
		return nil, err
	}
	result, err := est.Run(ctx, searched, others, trials)
	if err != nil {
		return nil, err
	}
	res = &TuneResult{Result: result}

	// 4. Artifacts
	delim := out.Rune()
	artifacts := []struct {
		name  string
		write func(*bytes.Buffer) error
	}{
		{out.ROCData, func(b *bytes.Buffer) error { return reporting.WriteROCData(b, result, delim) }},
		{out.Stats, func(b *bytes.Buffer) error { return reporting.WriteStats(b, result, delim) }},
		{out.Plot, func(b *bytes.Buffer) error { return reporting.PlotROC(b, result, job.Name) }},
	}
	for _, a := range artifacts {
		var buf bytes.Buffer
		if err := a.write(&buf); err != nil {
			return nil, fmt.Errorf("%s: %w", a.name, err)
		}
		path := out.Path(a.name)
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, path)
	}

	// 5. Persist trials
	now := r.clock()
	records, err := TrialRecords(result, job.Descriptors, job.Deciders, now)
	if err != nil {
		return nil, err
	}
	if err := r.trialStore.InsertTrials(ctx, records); err != nil {
		return nil, fmt.Errorf("store trials: %w", err)
	}
	if err := r.trialStore.InsertROC(ctx, ROCRecords(result)); err != nil {
		return nil, fmt.Errorf("store roc points: %w", err)
	}

	// 6. Report from the stored run
	report, err := reporting.NewGenerator(r.trialStore).WithClock(r.clock).Generate(ctx, result.RunID, job.Opt)
	if err != nil {
		return nil, err
	}
	reportPath := out.Path(out.Report)
	if err := os.WriteFile(reportPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, reportPath)

	observability.MarkJobSuccess(now.Unix())
	r.logger.Info("tune job finished",
		zap.String("job", job.Name),
		zap.String("run_id", result.RunID),
		zap.Int("trials", len(result.Trials)),
		zap.Float64("best_score", result.BestTrial().Score),
		zap.Strings("files", res.Files))
	return res, nil
}
