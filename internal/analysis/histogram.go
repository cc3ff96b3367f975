package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"lightcurve-lab/internal/domain"
)

// ErrBinsRequired is returned by Histogram when no bin count is given.
var ErrBinsRequired = fmt.Errorf("%w: histogram bin count is required", domain.ErrQueryInput)

// DefaultHistogramBins returns the fallback bin count for n samples (0.1*N, at least 1).
func DefaultHistogramBins(n int) int {
	b := int(math.Round(0.1 * float64(n)))
	if b < 1 {
		return 1
	}
	return b
}

// Histogram resamples value onto equidistant time, optionally centres it on
// its mean and returns bins counts with bins+1 edges. With normed the counts
// are normalised to zero mean and unit deviation.
func Histogram(time, value []float64, bins int, centred, normed bool) ([]float64, []float64, error) {
	if bins <= 0 {
		return nil, nil, ErrBinsRequired
	}
	_, ys, err := ToEkviPAA(time, value, len(time))
	if err != nil {
		return nil, nil, err
	}

	x := append([]float64(nil), ys...)
	if centred {
		floats.AddConst(-stat.Mean(x, nil), x)
	}
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	counts := make([]float64, bins)
	edges := make([]float64, bins+1)
	if lo == hi {
		for i := range edges {
			edges[i] = lo
		}
		counts[0] = float64(len(x))
	} else {
		floats.Span(edges, lo, hi)
		dividers := append([]float64(nil), edges...)
		// The last bin is closed on the right.
		dividers[bins] = math.Nextafter(hi, math.Inf(1))
		stat.Histogram(counts, dividers, x, nil)
	}

	if normed {
		counts = Normalize(counts, 1e-6)
	}
	return counts, edges, nil
}
