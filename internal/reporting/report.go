package reporting

import "time"

// TuningReport summarises one estimator run.
type TuningReport struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Descriptors string
	Deciders    string
	Opt         string // max or min

	// Best trial and all trials ranked by score, best first
	Best   TrialRow
	Trials []TrialRow

	// Score distribution over trials
	Scores ScoreSummary
}

// TrialRow represents one row in the trials table.
type TrialRow struct {
	TrialIndex        int
	TrialID           string
	Score             float64
	AUC               float64
	Precision         float64
	TruePositiveRate  float64
	TrueNegativeRate  float64
	FalsePositiveRate float64
	FalseNegativeRate float64
	Params            string // JSON
	DurationMs        int64
}

// ScoreSummary describes the spread of trial scores.
type ScoreSummary struct {
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}
