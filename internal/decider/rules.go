package decider

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// distanceRule passes points closer to the origin than border.
type distanceRule struct {
	border float64
}

func (m *distanceRule) fit([][]float64, []int) error { return nil }

func (m *distanceRule) score(x []float64) float64 {
	if floats.Norm(x, 2) < m.border {
		return 1
	}
	return 0
}

// Bound is an open interval of one coordinate. A nil end is unbounded.
type Bound struct {
	Lower *float64
	Upper *float64
}

// contains reports Lower < v < Upper.
func (b Bound) contains(v float64) bool {
	if b.Lower != nil && v <= *b.Lower {
		return false
	}
	if b.Upper != nil && v >= *b.Upper {
		return false
	}
	return true
}

// boxRule passes points inside every coordinate bound.
type boxRule struct {
	bounds []Bound
}

func (m *boxRule) fit(x [][]float64, _ []int) error {
	if len(x[0]) != len(m.bounds) {
		return fmt.Errorf("%d boundaries for %d coordinates", len(m.bounds), len(x[0]))
	}
	return nil
}

func (m *boxRule) score(x []float64) float64 {
	for i, b := range m.bounds {
		if !b.contains(x[i]) {
			return 0
		}
	}
	return 1
}
