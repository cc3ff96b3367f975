package decider

import (
	"errors"
	"math"
	"math/rand"
)

// varianceFloor is added to every component variance.
const varianceFloor = 1e-6

// gmmBayes models each class with a diagonal Gaussian mixture fitted by EM
// and scores with Bayes' rule.
type gmmBayes struct {
	components int
	maxIter    int
	seed       int64

	mix      [2]*diagGMM
	logPrior [2]float64
}

func (m *gmmBayes) fit(x [][]float64, y []int) error {
	if m.components < 1 {
		return errors.New("n_components must be positive")
	}
	rng := rand.New(rand.NewSource(m.seed))
	pos, neg := splitByLabel(x, y)
	for label, points := range [2][][]float64{neg, pos} {
		g, err := fitDiagGMM(points, m.components, m.maxIter, rng)
		if err != nil {
			return err
		}
		m.mix[label] = g
		m.logPrior[label] = math.Log(float64(len(points)) / float64(len(x)))
	}
	return nil
}

func (m *gmmBayes) score(x []float64) float64 {
	return sigmoid(m.mix[1].logLikelihood(x) + m.logPrior[1] - m.mix[0].logLikelihood(x) - m.logPrior[0])
}

type diagGMM struct {
	logWeights []float64
	mu         [][]float64
	variance   [][]float64
}

func fitDiagGMM(points [][]float64, k, maxIter int, rng *rand.Rand) (*diagGMM, error) {
	n, dim := len(points), len(points[0])
	k = min(k, n)
	g := &diagGMM{
		logWeights: make([]float64, k),
		mu:         make([][]float64, k),
		variance:   make([][]float64, k),
	}
	_, std := standardiser(points)
	for c, i := range rng.Perm(n)[:k] {
		g.logWeights[c] = -math.Log(float64(k))
		g.mu[c] = append([]float64(nil), points[i]...)
		g.variance[c] = make([]float64, dim)
		for j := range g.variance[c] {
			g.variance[c][j] = std[j]*std[j] + varianceFloor
		}
	}

	resp := make([][]float64, n)
	for i := range resp {
		resp[i] = make([]float64, k)
	}
	prev := math.Inf(-1)
	for iter := 0; iter < maxIter; iter++ {
		// E step
		var total float64
		for i, p := range points {
			for c := 0; c < k; c++ {
				resp[i][c] = g.logWeights[c] + g.componentLogPDF(c, p)
			}
			lse := logSumExp(resp[i])
			total += lse
			for c := range resp[i] {
				resp[i][c] = math.Exp(resp[i][c] - lse)
			}
		}
		if math.IsNaN(total) {
			return nil, errors.New("mixture likelihood is not a number")
		}

		// M step
		for c := 0; c < k; c++ {
			var nc float64
			for i := range points {
				nc += resp[i][c]
			}
			if nc < 1e-12 {
				continue
			}
			g.logWeights[c] = math.Log(nc / float64(n))
			for j := 0; j < dim; j++ {
				var mu float64
				for i, p := range points {
					mu += resp[i][c] * p[j]
				}
				mu /= nc
				var v float64
				for i, p := range points {
					d := p[j] - mu
					v += resp[i][c] * d * d
				}
				g.mu[c][j] = mu
				g.variance[c][j] = v/nc + varianceFloor
			}
		}

		if math.Abs(total-prev) < 1e-6*math.Max(1, math.Abs(total)) {
			break
		}
		prev = total
	}
	return g, nil
}

func (g *diagGMM) componentLogPDF(c int, x []float64) float64 {
	var ll float64
	for j, v := range x {
		d := v - g.mu[c][j]
		ll -= 0.5*math.Log(2*math.Pi*g.variance[c][j]) + d*d/(2*g.variance[c][j])
	}
	return ll
}

func (g *diagGMM) logLikelihood(x []float64) float64 {
	terms := make([]float64, len(g.mu))
	for c := range terms {
		terms[c] = g.logWeights[c] + g.componentLogPDF(c, x)
	}
	return logSumExp(terms)
}

func logSumExp(x []float64) float64 {
	top := math.Inf(-1)
	for _, v := range x {
		top = math.Max(top, v)
	}
	if math.IsInf(top, -1) {
		return top
	}
	var sum float64
	for _, v := range x {
		sum += math.Exp(v - top)
	}
	return top + math.Log(sum)
}
