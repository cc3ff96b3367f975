package reduction

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightcurve-lab/internal/domain"
)

func TestPCA_LeadingDirection(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	points := make([][]float64, 200)
	for i := range points {
		s := rng.NormFloat64() * 10
		points[i] = []float64{s, s + rng.NormFloat64()*0.1, rng.NormFloat64() * 0.1}
	}

	p, err := Fit(points, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, p.InputDim())
	assert.Equal(t, 1, p.OutputDim())

	// The first direction is (1, 1, 0)/sqrt(2) up to sign.
	proj, err := p.Transform([][]float64{{1, 1, 0}, {0, 0, 1}})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, math.Abs(proj[0][0]-mustProject(t, p, []float64{0, 0, 0})), 0.01)
}

func mustProject(t *testing.T, p *PCA, x []float64) float64 {
	t.Helper()
	out, err := p.Transform([][]float64{x})
	require.NoError(t, err)
	return out[0][0]
}

func TestPCA_ReusesFit(t *testing.T) {
	train := [][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3.1}}
	p, err := Fit(train, 1)
	require.NoError(t, err)

	a, err := p.Transform([][]float64{{5, 5}})
	require.NoError(t, err)
	b, err := p.Transform([][]float64{{5, 5}, {0, 0}})
	require.NoError(t, err)
	assert.Equal(t, a[0], b[0], "projection must not depend on the batch")
}

func TestPCA_Errors(t *testing.T) {
	_, err := Fit([][]float64{{1, 2}}, 1)
	assert.ErrorIs(t, err, domain.ErrQueryInput)

	_, err = Fit([][]float64{{1, 2}, {3, 4}}, 3)
	assert.ErrorIs(t, err, domain.ErrQueryInput)

	p, err := Fit([][]float64{{1, 2}, {3, 4}, {5, 7}}, 1)
	require.NoError(t, err)
	_, err = p.Transform([][]float64{{1}})
	assert.ErrorIs(t, err, domain.ErrQueryInput)
}
