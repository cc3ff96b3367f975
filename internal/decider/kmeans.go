package decider

import (
	"errors"
	"fmt"
	"math/rand"

	biogo "github.com/biogo/cluster/cluster"
	"github.com/biogo/cluster/kmeans"
	"gonum.org/v1/gonum/floats"
)

// points adapts feature points to the kmeans data interface.
type points [][]float64

func (p points) Len() int               { return len(p) }
func (p points) Values(i int) []float64 { return p[i] }

// kMeans clusters all training points into two groups without using labels.
// The cluster whose centre lies nearest the searched centroid scores 1.
type kMeans struct {
	seed     int64
	centers  [][]float64
	positive int
}

// seedCenter is an initial centre handed to the kmeans trainer.
type seedCenter []float64

func (c seedCenter) V() []float64           { return c }
func (c seedCenter) Members() biogo.Indices { return nil }

func (m *kMeans) fit(x [][]float64, y []int) error {
	trainer, err := kmeans.New(points(x))
	if err != nil {
		return err
	}
	trainer.SetCenters(plusPlusCenters(rand.New(rand.NewSource(m.seed)), x, 2))
	if err := trainer.Cluster(); err != nil {
		return fmt.Errorf("k-means: %w", err)
	}

	m.centers = m.centers[:0]
	for _, c := range trainer.Centers() {
		if len(c.Members()) == 0 {
			continue
		}
		m.centers = append(m.centers, append([]float64(nil), c.V()...))
	}
	if len(m.centers) < 2 {
		return errors.New("k-means found fewer than two clusters")
	}

	pos, _ := splitByLabel(x, y)
	m.positive = nearest(m.centers, columnMeans(pos))
	return nil
}

func (m *kMeans) score(x []float64) float64 {
	if nearest(m.centers, x) == m.positive {
		return 1
	}
	return 0
}

func nearest(centers [][]float64, x []float64) int {
	best, bestDist := 0, floats.Distance(centers[0], x, 2)
	for i, c := range centers[1:] {
		if d := floats.Distance(c, x, 2); d < bestDist {
			best, bestDist = i+1, d
		}
	}
	return best
}

// plusPlusCenters picks k starting centres by k-means++ seeding: the first
// uniformly, each next one with probability proportional to the squared
// distance from the nearest centre chosen so far.
func plusPlusCenters(rng *rand.Rand, x [][]float64, k int) []biogo.Center {
	centers := []biogo.Center{seedCenter(x[rng.Intn(len(x))])}
	dist := make([]float64, len(x))
	for len(centers) < k {
		var sum float64
		for i, p := range x {
			d := floats.Distance(centers[0].V(), p, 2)
			for _, c := range centers[1:] {
				d = min(d, floats.Distance(c.V(), p, 2))
			}
			dist[i] = d * d
			sum += dist[i]
		}
		next := len(x) - 1
		if sum == 0 {
			next = rng.Intn(len(x))
		} else {
			r := rng.Float64() * sum
			for i, d := range dist {
				if r -= d; r < 0 {
					next = i
					break
				}
			}
		}
		centers = append(centers, seedCenter(x[next]))
	}
	return centers
}
