// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Estimator metrics
	TrialsTotal   *prometheus.CounterVec
	TrialDuration prometheus.Histogram
	BestScore     prometheus.Gauge

	// StarsFilter metrics
	StarsDropped   *prometheus.CounterVec
	StarsEvaluated prometheus.Counter

	// Decider metrics
	LearnFailures *prometheus.CounterVec

	// Catalogue metrics
	StarsLoaded *prometheus.CounterVec

	// Job metrics
	JobRunsTotal *prometheus.CounterVec
	JobDuration  *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulJob prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "lcc"
	}

	return &Metrics{
		// Estimator metrics
		TrialsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "estimator",
			Name:      "trials_total",
			Help:      "Total number of estimator trials by status",
		}, []string{"status"}),
		TrialDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "estimator",
			Name:      "trial_duration_seconds",
			Help:      "Duration of one trial (build, learn, evaluate) in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
		BestScore: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "estimator",
			Name:      "best_score",
			Help:      "Score of the best trial of the last run",
		}),

		// StarsFilter metrics
		StarsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "starsfilter",
			Name:      "stars_dropped_total",
			Help:      "Total number of stars dropped for missing features by phase",
		}, []string{"phase"}),
		StarsEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "starsfilter",
			Name:      "evaluated_stars_total",
			Help:      "Total number of stars scored",
		}),

		// Decider metrics
		LearnFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decider",
			Name:      "learn_failures_total",
			Help:      "Total number of failed decider fits by decider",
		}, []string{"decider"}),

		// Catalogue metrics
		StarsLoaded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalogue",
			Name:      "stars_loaded_total",
			Help:      "Total number of stars loaded by adapter",
		}, []string{"adapter"}),

		// Job metrics
		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of job runs by status",
		}, []string{"job", "status"}),
		JobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Job execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}, []string{"job"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulJob: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_job_timestamp",
			Help:      "Unix timestamp of last successful job",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTrial records a finished trial.
func RecordTrial(status string, seconds float64) {
	DefaultMetrics.TrialsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.TrialDuration.Observe(seconds)
}

// SetBestScore publishes the best score of a run.
func SetBestScore(score float64) {
	DefaultMetrics.BestScore.Set(score)
}

// RecordStarsDropped counts stars dropped in a phase (learn, evaluate).
func RecordStarsDropped(phase string, n int) {
	if n > 0 {
		DefaultMetrics.StarsDropped.WithLabelValues(phase).Add(float64(n))
	}
}

// RecordStarsEvaluated counts scored stars.
func RecordStarsEvaluated(n int) {
	DefaultMetrics.StarsEvaluated.Add(float64(n))
}

// RecordLearnFailure counts a failed decider fit.
func RecordLearnFailure(decider string) {
	DefaultMetrics.LearnFailures.WithLabelValues(decider).Inc()
}

// RecordStarsLoaded counts stars returned by a catalogue adapter.
func RecordStarsLoaded(adapter string, n int) {
	DefaultMetrics.StarsLoaded.WithLabelValues(adapter).Add(float64(n))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordJobRun records a finished job.
func RecordJobRun(job, status string, durationSeconds float64) {
	DefaultMetrics.JobRunsTotal.WithLabelValues(job, status).Inc()
	DefaultMetrics.JobDuration.WithLabelValues(job).Observe(durationSeconds)
}

// MarkJobSuccess stamps the last successful job time.
func MarkJobSuccess(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulJob.Set(float64(unixSeconds))
}
