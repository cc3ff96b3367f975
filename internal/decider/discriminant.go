package decider

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var errSingular = errors.New("covariance matrix is not positive definite")

// ridge keeps covariance matrices of degenerate samples invertible.
const ridge = 1e-9

// lda is linear discriminant analysis with a pooled covariance matrix.
type lda struct {
	w []float64
	b float64
}

func (m *lda) fit(x [][]float64, y []int) error {
	pos, neg := splitByLabel(x, y)
	dim := len(x[0])
	mu1, mu0 := columnMeans(pos), columnMeans(neg)

	cov := mat.NewSymDense(dim, nil)
	addScatter(cov, pos, mu1)
	addScatter(cov, neg, mu0)
	dof := float64(len(x) - 2)
	if dof < 1 {
		dof = 1
	}
	cov.ScaleSym(1/dof, cov)
	regularise(cov, 0)

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return errSingular
	}
	diff := make([]float64, dim)
	floats.SubTo(diff, mu1, mu0)
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, mat.NewVecDense(dim, diff)); err != nil {
		return fmt.Errorf("solve discriminant: %w", err)
	}
	m.w = make([]float64, dim)
	for i := range m.w {
		m.w[i] = w.AtVec(i)
	}
	mid := make([]float64, dim)
	floats.AddTo(mid, mu1, mu0)
	m.b = -0.5*floats.Dot(mid, m.w) + math.Log(float64(len(pos))/float64(len(neg)))
	return nil
}

func (m *lda) score(x []float64) float64 {
	return sigmoid(floats.Dot(m.w, x) + m.b)
}

// qda is quadratic discriminant analysis with per-class covariances shrunk
// towards the identity by regParam.
type qda struct {
	regParam float64
	classes  [2]gaussian // index = label
}

type gaussian struct {
	mu       []float64
	chol     mat.Cholesky
	logDet   float64
	logPrior float64
}

func (g *gaussian) logLikelihood(x []float64) float64 {
	d := make([]float64, len(x))
	floats.SubTo(d, x, g.mu)
	var sol mat.VecDense
	if err := g.chol.SolveVecTo(&sol, mat.NewVecDense(len(d), d)); err != nil {
		return math.Inf(-1)
	}
	return -0.5*g.logDet - 0.5*mat.Dot(&sol, mat.NewVecDense(len(d), d)) + g.logPrior
}

func (m *qda) fit(x [][]float64, y []int) error {
	if m.regParam < 0 || m.regParam > 1 {
		return fmt.Errorf("reg_param %v outside [0, 1]", m.regParam)
	}
	pos, neg := splitByLabel(x, y)
	dim := len(x[0])
	for label, points := range [2][][]float64{neg, pos} {
		mu := columnMeans(points)
		cov := mat.NewSymDense(dim, nil)
		addScatter(cov, points, mu)
		if len(points) > 1 {
			cov.ScaleSym(1/float64(len(points)-1), cov)
		}
		if m.regParam > 0 {
			cov.ScaleSym(1-m.regParam, cov)
		}
		regularise(cov, m.regParam)

		g := &m.classes[label]
		if ok := g.chol.Factorize(cov); !ok {
			return fmt.Errorf("class %d: %w", label, errSingular)
		}
		g.mu = mu
		g.logDet = g.chol.LogDet()
		g.logPrior = math.Log(float64(len(points)) / float64(len(x)))
	}
	return nil
}

func (m *qda) score(x []float64) float64 {
	return sigmoid(m.classes[1].logLikelihood(x) - m.classes[0].logLikelihood(x))
}

// gaussianNB is Gaussian naive Bayes. Variances are increased by
// varSmoothing times the largest feature variance.
type gaussianNB struct {
	varSmoothing float64
	mu           [2][]float64
	variance     [2][]float64
	logPrior     [2]float64
}

func (m *gaussianNB) fit(x [][]float64, y []int) error {
	dim := len(x[0])
	var maxVar float64
	col := make([]float64, len(x))
	for j := 0; j < dim; j++ {
		for i, p := range x {
			col[i] = p[j]
		}
		maxVar = math.Max(maxVar, popVariance(col))
	}
	eps := m.varSmoothing * maxVar
	if eps <= 0 {
		return errors.New("all features have zero variance")
	}

	pos, neg := splitByLabel(x, y)
	for label, points := range [2][][]float64{neg, pos} {
		m.mu[label] = columnMeans(points)
		m.variance[label] = make([]float64, dim)
		values := make([]float64, len(points))
		for j := 0; j < dim; j++ {
			for i, p := range points {
				values[i] = p[j]
			}
			m.variance[label][j] = popVariance(values) + eps
		}
		m.logPrior[label] = math.Log(float64(len(points)) / float64(len(x)))
	}
	return nil
}

func (m *gaussianNB) score(x []float64) float64 {
	var ll [2]float64
	for label := range ll {
		ll[label] = m.logPrior[label]
		for j, v := range x {
			d := v - m.mu[label][j]
			ll[label] -= 0.5*math.Log(2*math.Pi*m.variance[label][j]) + d*d/(2*m.variance[label][j])
		}
	}
	return sigmoid(ll[1] - ll[0])
}

func splitByLabel(x [][]float64, y []int) (pos, neg [][]float64) {
	for i, p := range x {
		if y[i] == 1 {
			pos = append(pos, p)
		} else {
			neg = append(neg, p)
		}
	}
	return pos, neg
}

func columnMeans(points [][]float64) []float64 {
	dim := len(points[0])
	out := make([]float64, dim)
	col := make([]float64, len(points))
	for j := 0; j < dim; j++ {
		for i, p := range points {
			col[i] = p[j]
		}
		out[j] = stat.Mean(col, nil)
	}
	return out
}

// addScatter adds sum((p-mu)(p-mu)^T) over points to cov.
func addScatter(cov *mat.SymDense, points [][]float64, mu []float64) {
	dim := len(mu)
	d := make([]float64, dim)
	for _, p := range points {
		floats.SubTo(d, p, mu)
		cov.SymRankOne(cov, 1, mat.NewVecDense(dim, d))
	}
}

// regularise adds shrink plus a small ridge to the diagonal.
func regularise(cov *mat.SymDense, shrink float64) {
	n := cov.SymmetricDim()
	var trace float64
	for i := 0; i < n; i++ {
		trace += cov.At(i, i)
	}
	eps := ridge * (1 + trace/float64(n))
	for i := 0; i < n; i++ {
		cov.SetSym(i, i, cov.At(i, i)+shrink+eps)
	}
}

func popVariance(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.Variance(x, nil) * float64(len(x)-1) / float64(len(x))
}
