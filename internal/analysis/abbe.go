package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Abbe returns N/(2(N-1)) * sum((x[i+1]-x[i])^2) / sum((x[i]-mean)^2).
// It is close to 1 for white noise and tends to 0 for smooth signals.
// Constant or shorter than two samples series give 0.
func Abbe(x []float64) float64 {
	n := len(x)
	if n < 2 {
		return 0
	}
	mean := stat.Mean(x, nil)
	var succ, dev float64
	for i := range x {
		d := x[i] - mean
		dev += d * d
		if i > 0 {
			s := x[i] - x[i-1]
			succ += s * s
		}
	}
	if dev == 0 {
		return 0
	}
	return float64(n) / (2 * float64(n-1)) * succ / dev
}

// AbbeSmoothed resamples the series onto smoothRatio*N equidistant bins
// before computing the Abbe value. A ratio outside (0, 1] uses the raw values.
func AbbeSmoothed(time, value []float64, smoothRatio float64) (float64, error) {
	if smoothRatio <= 0 || smoothRatio > 1 {
		return Abbe(value), nil
	}
	bins := int(math.Max(2, math.Round(smoothRatio*float64(len(value)))))
	_, ys, err := ToEkviPAA(time, value, bins)
	if err != nil {
		return 0, err
	}
	return Abbe(ys), nil
}
