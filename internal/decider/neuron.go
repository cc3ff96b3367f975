package decider

import (
	"errors"
	"math"
	"math/rand"
)

// neuron is a feed-forward network with one sigmoid hidden layer and a
// linear output, trained by stochastic gradient descent with momentum and
// weight decay on standardised inputs.
type neuron struct {
	hidden       int
	maxEpochs    int
	maxErr       float64 // stop once the epoch MSE drops to this value
	learningRate float64
	momentum     float64
	weightDecay  float64
	seed         int64

	mean, std []float64
	w1        [][]float64 // hidden x (dim+1), last column is the bias
	w2        []float64   // hidden+1, last entry is the bias
}

func (m *neuron) fit(x [][]float64, y []int) error {
	if m.hidden < 1 {
		return errors.New("hidden_neurons must be positive")
	}
	dim := len(x[0])
	m.mean, m.std = standardiser(x)
	inputs := make([][]float64, len(x))
	for i, p := range x {
		inputs[i] = m.standardise(p)
	}

	rng := rand.New(rand.NewSource(m.seed))
	m.w1 = make([][]float64, m.hidden)
	v1 := make([][]float64, m.hidden)
	for j := range m.w1 {
		m.w1[j] = make([]float64, dim+1)
		v1[j] = make([]float64, dim+1)
		for k := range m.w1[j] {
			m.w1[j][k] = rng.Float64() - 0.5
		}
	}
	m.w2 = make([]float64, m.hidden+1)
	v2 := make([]float64, m.hidden+1)
	for j := range m.w2 {
		m.w2[j] = rng.Float64() - 0.5
	}

	order := rng.Perm(len(inputs))
	h := make([]float64, m.hidden)
	for epoch := 0; epoch < m.maxEpochs; epoch++ {
		rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
		var sse float64
		for _, i := range order {
			in := inputs[i]
			out := m.forward(in, h)
			e := out - float64(y[i])
			sse += e * e

			for j := 0; j < m.hidden; j++ {
				dh := e * m.w2[j] * h[j] * (1 - h[j])
				for k := 0; k <= dim; k++ {
					xk := 1.0
					if k < dim {
						xk = in[k]
					}
					v1[j][k] = m.momentum*v1[j][k] - m.learningRate*(dh*xk+m.weightDecay*m.w1[j][k])
					m.w1[j][k] += v1[j][k]
				}
			}
			for j := 0; j <= m.hidden; j++ {
				hj := 1.0
				if j < m.hidden {
					hj = h[j]
				}
				v2[j] = m.momentum*v2[j] - m.learningRate*(e*hj+m.weightDecay*m.w2[j])
				m.w2[j] += v2[j]
			}
		}
		mse := sse / float64(len(inputs))
		if math.IsNaN(mse) || math.IsInf(mse, 0) {
			return errors.New("training diverged")
		}
		if mse <= m.maxErr {
			break
		}
	}
	return nil
}

// forward fills h with hidden activations and returns the network output.
func (m *neuron) forward(in, h []float64) float64 {
	dim := len(in)
	out := m.w2[m.hidden]
	for j := 0; j < m.hidden; j++ {
		a := m.w1[j][dim]
		for k, v := range in {
			a += m.w1[j][k] * v
		}
		h[j] = sigmoid(a)
		out += m.w2[j] * h[j]
	}
	return out
}

func (m *neuron) score(x []float64) float64 {
	return m.forward(m.standardise(x), make([]float64, m.hidden))
}

func (m *neuron) standardise(p []float64) []float64 {
	out := make([]float64, len(p))
	for k, v := range p {
		out[k] = (v - m.mean[k]) / m.std[k]
	}
	return out
}

// standardiser returns column means and deviations; zero deviations become 1.
func standardiser(x [][]float64) ([]float64, []float64) {
	mean := columnMeans(x)
	std := make([]float64, len(mean))
	col := make([]float64, len(x))
	for k := range std {
		for i, p := range x {
			col[i] = p[k]
		}
		std[k] = math.Sqrt(popVariance(col))
		if std[k] == 0 {
			std[k] = 1
		}
	}
	return mean, std
}
