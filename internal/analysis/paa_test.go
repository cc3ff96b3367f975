package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"lightcurve-lab/internal/domain"
)

func TestToPAA_Length(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		x := make([]float64, 30+rng.Intn(670))
		for j := range x {
			x[j] = rng.Float64()
		}
		bins := 5 + rng.Intn(25)
		assert.Len(t, ToPAA(x, bins), bins, "n=%d bins=%d", len(x), bins)
	}
}

func TestToPAA_Values(t *testing.T) {
	assert.Equal(t, []float64{1.5, 3.5}, ToPAA([]float64{1, 2, 3, 4}, 2))
	assert.Nil(t, ToPAA(nil, 3))
	assert.Nil(t, ToPAA([]float64{1}, 0))
}

func TestToPAA_FullLengthPreservesMean(t *testing.T) {
	x := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	paa := ToPAA(x, len(x))
	assert.Equal(t, x, paa)
	assert.InDelta(t, stat.Mean(x, nil), stat.Mean(paa, nil), 1e-12)
}

func TestToEkviPAA_Basic(t *testing.T) {
	x := []float64{1.0, 1.1, 1.2, 1.3, 1.4, 1.5, 2, 3, 4, 5}
	y := []float64{99, 99, 99, 99, 99, 99, 99, 0, 10, 20}

	xs, ys, err := ToEkviPAA(x, y, 5)
	require.NoError(t, err)
	assert.Equal(t, len(xs), len(ys))
	assert.Subset(t, ys, []float64{99, 0, 10, 20})
	assert.Equal(t, 99.0, ys[0])
	assert.Equal(t, []float64{0, 10, 20}, ys[len(ys)-3:])
}

func TestToEkviPAA_IdentityOnEquidistant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 100
	x := floats.Span(make([]float64, n), 0, 1)
	y := make([]float64, n)
	for i := range y {
		y[i] = rng.Float64()
	}

	xs, ys, err := ToEkviPAA(x, y, n)
	require.NoError(t, err)
	assert.InDeltaSlice(t, x, xs, 1e-12)
	assert.Equal(t, y, ys)

	// Oversized bin counts are clamped to the sample size.
	_, ys3, err := ToEkviPAA(x, y, 3*n)
	require.NoError(t, err)
	assert.Equal(t, y, ys3)
}

func TestToEkviPAA_PreservesMean(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		n := 30 + rng.Intn(500)
		x := make([]float64, n)
		y := make([]float64, n)
		for j := range x {
			x[j] = rng.Float64()
			y[j] = rng.Float64()
		}
		bins := 5 + rng.Intn(25)
		_, ys, err := ToEkviPAA(x, y, bins)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(ys), bins)
		my, mys := stat.Mean(y, nil), stat.Mean(ys, nil)
		assert.Less(t, math.Abs(mys-my)/(mys+my), 0.1)
	}
}

func TestToEkviPAA_Errors(t *testing.T) {
	_, _, err := ToEkviPAA([]float64{1, 2}, []float64{1}, 2)
	assert.ErrorIs(t, err, domain.ErrQueryInput)

	_, _, err = ToEkviPAA(nil, nil, 2)
	assert.ErrorIs(t, err, domain.ErrQueryInput)

	_, _, err = ToEkviPAA([]float64{1, 2}, []float64{1, 2}, 0)
	assert.ErrorIs(t, err, domain.ErrQueryInput)
}

func TestToEkviPAA_ConstantTime(t *testing.T) {
	xs, ys, err := ToEkviPAA([]float64{3, 3, 3}, []float64{1, 2, 3}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, xs)
	assert.Equal(t, []float64{2}, ys)
}

func TestNormalize(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	z := Normalize(x, 1e-6)

	mean, std := popMeanStd(z)
	assert.InDelta(t, 0, mean, 1e-12)
	assert.InDelta(t, 1, std, 1e-12)
	assert.InDelta(t, -1.5, z[0], 1e-12)

	assert.Equal(t, []float64{0, 0, 0}, Normalize([]float64{5, 5, 5}, 1e-6))
}

func TestComputeBins(t *testing.T) {
	x1 := []float64{1, 2, 3, 8, 9, 10}
	x2 := []float64{1, 2, 3, 4, 5, 6}

	assert.Equal(t, 3, ComputeBinsMin(x2, 1.9, 2))
	assert.Equal(t, 3, ComputeBinsMin(x1, 3, 2))
	assert.Equal(t, MinBins, ComputeBins(x1, 3))
	assert.Equal(t, 90, ComputeBins(floats.Span(make([]float64, 50), 0, 900), 10))
	assert.Equal(t, MinBins, ComputeBins(x1, 0))
}
