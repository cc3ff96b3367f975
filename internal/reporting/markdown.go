package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *TuningReport) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Tuning Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Trials: %d | Opt: %s\n\n", r.RunID, len(r.Trials), r.Opt))

	// Run Summary
	sb.WriteString("## Run Summary\n\n")
	sb.WriteString("| Item | Value |\n")
	sb.WriteString("|------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Descriptors | %s |\n", r.Descriptors))
	sb.WriteString(fmt.Sprintf("| Deciders | %s |\n", r.Deciders))
	sb.WriteString(fmt.Sprintf("| Score Mean | %.4f |\n", r.Scores.Mean))
	sb.WriteString(fmt.Sprintf("| Score Median | %.4f |\n", r.Scores.Median))
	sb.WriteString(fmt.Sprintf("| Score StdDev | %.4f |\n", r.Scores.StdDev))
	sb.WriteString(fmt.Sprintf("| Score Range | %.4f .. %.4f |\n", r.Scores.Min, r.Scores.Max))
	sb.WriteString("\n")

	// Best Trial
	sb.WriteString("## Best Trial\n\n")
	b := r.Best
	sb.WriteString(fmt.Sprintf("Trial %d (`%s`): score %.4f, AUC %.4f\n\n", b.TrialIndex, b.TrialID, b.Score, b.AUC))
	sb.WriteString("```json\n")
	sb.WriteString(b.Params)
	sb.WriteString("\n```\n\n")

	// Trials
	sb.WriteString("## Trials\n\n")
	sb.WriteString("| Rank | Trial | Score | AUC | Precision | TPR | TNR | FPR | FNR | Duration (ms) |\n")
	sb.WriteString("|------|-------|-------|-----|-----------|-----|-----|-----|-----|---------------|\n")
	for i, t := range r.Trials {
		sb.WriteString(fmt.Sprintf("| %d | %d | %.4f | %.4f | %.3f | %.3f | %.3f | %.3f | %.3f | %d |\n",
			i+1, t.TrialIndex, t.Score, t.AUC,
			t.Precision, t.TruePositiveRate, t.TrueNegativeRate, t.FalsePositiveRate, t.FalseNegativeRate,
			t.DurationMs))
	}
	sb.WriteString("\n")

	return sb.String()
}
