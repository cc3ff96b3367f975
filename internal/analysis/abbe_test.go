package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestAbbe_Ordering(t *testing.T) {
	x := floats.Span(make([]float64, 150), 0, 23)
	expX := make([]float64, len(x))
	sinX := make([]float64, len(x))
	for i, v := range x {
		expX[i] = math.Exp(v)
		sinX[i] = math.Sin(v)
	}
	rng := rand.New(rand.NewSource(42))
	noise := make([]float64, 100)
	for i := range noise {
		noise[i] = float64(10 + rng.Intn(11))
	}

	aLin, aExp, aSin, aNoise := Abbe(x), Abbe(expX), Abbe(sinX), Abbe(noise)
	assert.Less(t, aLin, aExp)
	assert.Less(t, aExp, aSin)
	assert.Less(t, aSin, aNoise)

	assert.InDelta(t, 0.000267, aLin, 1e-6)
	assert.InDelta(t, 0.011274, aExp, 1e-5)
	assert.InDelta(t, 0.012489, aSin, 1e-5)
}

func TestAbbe_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, Abbe([]float64{4, 4, 4, 4}))
	assert.Equal(t, 0.0, Abbe([]float64{1}))
	assert.Equal(t, 0.0, Abbe(nil))
}

func TestAbbe_WhiteNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	x := make([]float64, 20000)
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	assert.InDelta(t, 1.0, Abbe(x), 0.05)
}

func TestAbbeSmoothed(t *testing.T) {
	time := floats.Span(make([]float64, 200), 0, 100)
	value := make([]float64, len(time))
	for i, t := range time {
		value[i] = math.Sin(t / 10)
	}

	raw, err := AbbeSmoothed(time, value, 0)
	require.NoError(t, err)
	assert.Equal(t, Abbe(value), raw)

	half, err := AbbeSmoothed(time, value, 0.5)
	require.NoError(t, err)
	assert.Greater(t, half, raw, "fewer bins make a smooth curve look rougher")
	assert.Less(t, half, 0.1)
}
