// Package analysis implements the numeric primitives used by descriptors:
// piecewise aggregate approximation, equidistant resampling, normalisation,
// Abbe value, variogram, histogram and the SAX symbolic representation.
package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"lightcurve-lab/internal/domain"
)

// ToPAA reduces x to at most bins frame means. Frame i starts at
// floor(i*N/bins) and spans ceil(N/bins) samples.
func ToPAA(x []float64, bins int) []float64 {
	n := len(x)
	if n == 0 || bins <= 0 {
		return nil
	}
	if bins > n {
		bins = n
	}

	stepFloat := float64(n) / float64(bins)
	step := int(math.Ceil(stepFloat))
	out := make([]float64, 0, bins)
	frameStart := 0
	for i := 0; frameStart <= n-step; {
		out = append(out, stat.Mean(x[frameStart:frameStart+step], nil))
		i++
		frameStart = int(float64(i) * stepFloat)
	}
	return out
}

// ToEkviPAA resamples an irregular series onto bins equal-width time frames
// spanning [min(time), max(time)], averaging times and values inside each
// frame. Empty frames are elided, so the result may be shorter than bins.
// bins larger than the sample size is clamped to the sample size.
func ToEkviPAA(time, value []float64, bins int) ([]float64, []float64, error) {
	if len(time) != len(value) {
		return nil, nil, fmt.Errorf("%w: time and value lengths differ (%d and %d)",
			domain.ErrQueryInput, len(time), len(value))
	}
	if len(time) == 0 {
		return nil, nil, fmt.Errorf("%w: empty series", domain.ErrQueryInput)
	}
	if bins <= 0 {
		return nil, nil, fmt.Errorf("%w: bins must be positive, got %d", domain.ErrQueryInput, bins)
	}
	if bins > len(time) {
		bins = len(time)
	}

	lo, hi := floats.Min(time), floats.Max(time)
	if hi == lo {
		return []float64{lo}, []float64{stat.Mean(value, nil)}, nil
	}

	// Frames are centred so that an equidistant series with bins = N maps
	// one sample per frame.
	halfStep := (hi - lo) / float64(bins) / 2
	borders := floats.Span(make([]float64, bins+1), lo-halfStep, hi+halfStep)

	sumT := make([]float64, bins)
	sumV := make([]float64, bins)
	count := make([]int, bins)
	for i, t := range time {
		k := frameIndex(borders, t)
		sumT[k] += t
		sumV[k] += value[i]
		count[k]++
	}

	xs := make([]float64, 0, bins)
	ys := make([]float64, 0, bins)
	for k := range count {
		if count[k] == 0 {
			continue
		}
		xs = append(xs, sumT[k]/float64(count[k]))
		ys = append(ys, sumV[k]/float64(count[k]))
	}
	return xs, ys, nil
}

// frameIndex returns k such that borders[k] <= t < borders[k+1].
func frameIndex(borders []float64, t float64) int {
	lo, hi := 0, len(borders)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if borders[mid] <= t {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Normalize returns (x - mean) / std, or zeros when std < eps.
// std is the population standard deviation.
func Normalize(x []float64, eps float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	mean, std := popMeanStd(x)
	if std < eps {
		return out
	}
	for i, v := range x {
		out[i] = (v - mean) / std
	}
	return out
}

func popMeanStd(x []float64) (float64, float64) {
	mean := stat.Mean(x, nil)
	if len(x) < 2 {
		return mean, 0
	}
	variance := stat.Variance(x, nil) * float64(len(x)-1) / float64(len(x))
	return mean, math.Sqrt(variance)
}
