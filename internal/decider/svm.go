package decider

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// SVM kernels.
const (
	KernelRBF    = "rbf"
	KernelLinear = "linear"
)

// smoMaxIterations bounds the optimisation loop for non-separable data.
const smoMaxIterations = 10000

// svm is a support vector classifier trained with simplified SMO. The score
// is the logistic function of the decision value.
type svm struct {
	kernel    string
	c         float64
	gamma     float64 // 0 = 1/dim
	tol       float64
	maxPasses int
	seed      int64

	sv     [][]float64
	alphaY []float64
	b      float64
}

func (m *svm) k(a, b []float64) float64 {
	if m.kernel == KernelLinear {
		return floats.Dot(a, b)
	}
	d := floats.Distance(a, b, 2)
	return math.Exp(-m.gamma * d * d)
}

func (m *svm) fit(x [][]float64, y []int) error {
	switch m.kernel {
	case KernelRBF, KernelLinear:
	default:
		return fmt.Errorf("unknown kernel %q", m.kernel)
	}
	if m.c <= 0 {
		return fmt.Errorf("c must be positive, got %v", m.c)
	}
	if m.gamma <= 0 {
		m.gamma = 1 / float64(len(x[0]))
	}

	n := len(x)
	yy := make([]float64, n)
	for i, l := range y {
		yy[i] = float64(2*l - 1)
	}
	gram := make([][]float64, n)
	for i := range gram {
		gram[i] = make([]float64, n)
		for j := 0; j <= i; j++ {
			gram[i][j] = m.k(x[i], x[j])
			gram[j][i] = gram[i][j]
		}
	}

	alpha := make([]float64, n)
	b := 0.0
	decision := func(i int) float64 {
		s := b
		for k := range alpha {
			if alpha[k] != 0 {
				s += alpha[k] * yy[k] * gram[k][i]
			}
		}
		return s
	}

	rng := rand.New(rand.NewSource(m.seed))
	passes := 0
	for iter := 0; passes < m.maxPasses && iter < smoMaxIterations; iter++ {
		changed := 0
		for i := 0; i < n; i++ {
			ei := decision(i) - yy[i]
			if !((yy[i]*ei < -m.tol && alpha[i] < m.c) || (yy[i]*ei > m.tol && alpha[i] > 0)) {
				continue
			}
			j := rng.Intn(n - 1)
			if j >= i {
				j++
			}
			ej := decision(j) - yy[j]
			ai, aj := alpha[i], alpha[j]

			var lo, hi float64
			if yy[i] != yy[j] {
				lo, hi = math.Max(0, aj-ai), math.Min(m.c, m.c+aj-ai)
			} else {
				lo, hi = math.Max(0, ai+aj-m.c), math.Min(m.c, ai+aj)
			}
			if lo == hi {
				continue
			}
			eta := 2*gram[i][j] - gram[i][i] - gram[j][j]
			if eta >= 0 {
				continue
			}
			alpha[j] = math.Max(lo, math.Min(hi, aj-yy[j]*(ei-ej)/eta))
			if math.Abs(alpha[j]-aj) < 1e-5 {
				alpha[j] = aj
				continue
			}
			alpha[i] = ai + yy[i]*yy[j]*(aj-alpha[j])

			b1 := b - ei - yy[i]*(alpha[i]-ai)*gram[i][i] - yy[j]*(alpha[j]-aj)*gram[i][j]
			b2 := b - ej - yy[i]*(alpha[i]-ai)*gram[i][j] - yy[j]*(alpha[j]-aj)*gram[j][j]
			switch {
			case alpha[i] > 0 && alpha[i] < m.c:
				b = b1
			case alpha[j] > 0 && alpha[j] < m.c:
				b = b2
			default:
				b = (b1 + b2) / 2
			}
			changed++
		}
		if changed == 0 {
			passes++
		} else {
			passes = 0
		}
	}

	m.sv, m.alphaY = nil, nil
	for i, a := range alpha {
		if a > 0 {
			m.sv = append(m.sv, x[i])
			m.alphaY = append(m.alphaY, a*yy[i])
		}
	}
	m.b = b
	return nil
}

func (m *svm) decision(x []float64) float64 {
	s := m.b
	for i, v := range m.sv {
		s += m.alphaY[i] * m.k(v, x)
	}
	return s
}

func (m *svm) score(x []float64) float64 {
	return sigmoid(m.decision(x))
}
