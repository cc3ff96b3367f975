package reporting

import (
	"fmt"
	"io"
	"sort"

	chart "github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"

	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/estimator"
)

// PlotROC renders the ROC curves of every trial as PNG. The best trial is
// drawn thicker, the chance diagonal dashed, and each trial's operating
// point at its own thresholds as a dot.
func PlotROC(w io.Writer, res *estimator.Result, title string) error {
	var series []chart.Series
	for i, t := range res.Trials {
		if len(t.ROC) == 0 {
			continue
		}
		xs := make([]float64, len(t.ROC))
		ys := make([]float64, len(t.ROC))
		for j, p := range t.ROC {
			xs[j] = p.FalsePositiveRate
			ys[j] = p.TruePositiveRate
		}
		style := chart.Style{
			Show:        true,
			StrokeColor: chart.GetAlternateColor(i),
			StrokeWidth: 1,
		}
		name := fmt.Sprintf("trial %d (AUC %.3f)", t.Index, t.AUC)
		if i == res.Best {
			style.StrokeWidth = 3
			name += " best"
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("%w: no ROC samples to plot", domain.ErrQueryInput)
	}
	xs, ys := operatingPoints(res)
	series = append(series, chart.ContinuousSeries{
		Name:    "trial thresholds",
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			Show:        true,
			StrokeWidth: chart.Disabled,
			DotWidth:    4,
			DotColor:    drawing.ColorRed,
		},
	}, chart.ContinuousSeries{
		Name:    "chance",
		XValues: []float64{0, 1},
		YValues: []float64{0, 1},
		Style: chart.Style{
			Show:            true,
			StrokeColor:     drawing.ColorBlack,
			StrokeDashArray: []float64{5, 5},
		},
	})

	graph := chart.Chart{
		Title:      title,
		TitleStyle: chart.StyleShow(),
		XAxis: chart.XAxis{
			Name:      "False positive rate",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
			Range:     &chart.ContinuousRange{Min: 0, Max: 1},
		},
		YAxis: chart.YAxis{
			Name:      "True positive rate",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
			Range:     &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render roc plot: %w", err)
	}
	return nil
}

// operatingPoints returns the (FPR, TPR) of every trial record, ordered by FPR.
func operatingPoints(res *estimator.Result) (xs, ys []float64) {
	recs := make([]domain.EvaluationRecord, len(res.Trials))
	for i, t := range res.Trials {
		recs[i] = t.Record
	}
	sort.SliceStable(recs, func(a, b int) bool {
		return recs[a].FalsePositiveRate < recs[b].FalsePositiveRate
	})
	for _, r := range recs {
		xs = append(xs, r.FalsePositiveRate)
		ys = append(ys, r.TruePositiveRate)
	}
	return xs, ys
}
