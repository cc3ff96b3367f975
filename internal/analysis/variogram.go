package analysis

import (
	"fmt"
	"math"
	"sort"

	"lightcurve-lab/internal/domain"
)

// VariogramResampleRatio is the fraction of samples kept before pairing.
const VariogramResampleRatio = 0.7

// Variogram returns time lags |t_i - t_j| and squared value differences
// (v_i - v_j)^2 for every ordered pair i != j of the series resampled to
// 0.7*N points, sorted by lag. Each unordered pair therefore appears twice. With bins > 0 both axes are averaged into bins frames;
// with logOpt both axes are converted to log10 and non-finite points dropped.
func Variogram(time, value []float64, bins int, logOpt bool) ([]float64, []float64, error) {
	if len(time) != len(value) {
		return nil, nil, fmt.Errorf("%w: time and value lengths differ (%d and %d)",
			domain.ErrQueryInput, len(time), len(value))
	}
	if len(time) < 2 {
		return nil, nil, fmt.Errorf("%w: variogram needs at least 2 samples", domain.ErrQueryInput)
	}

	m := int(VariogramResampleRatio * float64(len(time)))
	if m < 2 {
		m = 2
	}
	t := ToPAA(time, m)
	v := ToPAA(value, m)

	type pair struct{ lag, diff float64 }
	pairs := make([]pair, 0, len(t)*(len(t)-1))
	for i := range t {
		for j := range t {
			if i == j {
				continue
			}
			d := v[i] - v[j]
			pairs = append(pairs, pair{lag: math.Abs(t[i] - t[j]), diff: d * d})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].lag < pairs[b].lag })

	lags := make([]float64, len(pairs))
	diffs := make([]float64, len(pairs))
	for i, p := range pairs {
		lags[i], diffs[i] = p.lag, p.diff
	}
	if bins > 0 {
		lags, diffs = ToPAA(lags, bins), ToPAA(diffs, bins)
	}
	if !logOpt {
		return lags, diffs, nil
	}

	logLags := make([]float64, 0, len(lags))
	logDiffs := make([]float64, 0, len(diffs))
	for i := range lags {
		x, y := math.Log10(lags[i]), math.Log10(diffs[i])
		if math.IsInf(x, 0) || math.IsNaN(x) || math.IsInf(y, 0) || math.IsNaN(y) {
			continue
		}
		logLags = append(logLags, x)
		logDiffs = append(logDiffs, y)
	}
	return logLags, logDiffs, nil
}
