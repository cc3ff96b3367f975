package decider

import (
	"sort"
)

// treeNode is a split "x[Feature] < Threshold ?" in a flat node list.
type treeNode struct {
	Feature     int     // feature index used by the split
	Threshold   float64 // cut between the left and right subtrees
	Left        int     // index of the left node or leaf
	LeftIsLeaf  bool
	Right       int // index of the right node or leaf
	RightIsLeaf bool
}

// tree is a CART classification tree grown with the Gini impurity. A leaf
// outputs the fraction of searched training points that reached it.
type tree struct {
	maxDepth       int // 0 = unlimited
	minSamplesLeaf int

	nodes   []treeNode
	outputs []float64 // leaf index -> positive fraction
}

func (m *tree) fit(x [][]float64, y []int) error {
	m.nodes, m.outputs = nil, nil
	if m.minSamplesLeaf < 1 {
		m.minSamplesLeaf = 1
	}
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	if _, leaf := m.grow(x, y, idx, 0); leaf {
		// A pure root keeps a trivial split so traversal stays uniform.
		m.nodes = append(m.nodes, treeNode{Left: 0, LeftIsLeaf: true, Right: 0, RightIsLeaf: true})
	}
	return nil
}

// grow returns the index of the created node or leaf and whether it is a leaf.
func (m *tree) grow(x [][]float64, y []int, idx []int, depth int) (int, bool) {
	pos := 0
	for _, i := range idx {
		pos += y[i]
	}
	frac := float64(pos) / float64(len(idx))
	if pos == 0 || pos == len(idx) || (m.maxDepth > 0 && depth >= m.maxDepth) || len(idx) < 2*m.minSamplesLeaf {
		return m.leaf(frac), true
	}

	feature, threshold, ok := m.bestSplit(x, y, idx)
	if !ok {
		return m.leaf(frac), true
	}
	var left, right []int
	for _, i := range idx {
		if x[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	at := len(m.nodes)
	m.nodes = append(m.nodes, treeNode{Feature: feature, Threshold: threshold})
	l, lLeaf := m.grow(x, y, left, depth+1)
	r, rLeaf := m.grow(x, y, right, depth+1)
	m.nodes[at].Left, m.nodes[at].LeftIsLeaf = l, lLeaf
	m.nodes[at].Right, m.nodes[at].RightIsLeaf = r, rLeaf
	return at, false
}

func (m *tree) leaf(frac float64) int {
	m.outputs = append(m.outputs, frac)
	return len(m.outputs) - 1
}

// bestSplit scans every feature for the threshold with the lowest weighted
// Gini impurity that leaves at least minSamplesLeaf points on each side.
func (m *tree) bestSplit(x [][]float64, y []int, idx []int) (int, float64, bool) {
	n := len(idx)
	total := 0
	for _, i := range idx {
		total += y[i]
	}

	bestFeature, bestThreshold, bestImpurity := -1, 0.0, gini(total, n)
	sorted := make([]int, n)
	for f := range x[idx[0]] {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool { return x[sorted[a]][f] < x[sorted[b]][f] })

		leftPos := 0
		for k := 1; k < n; k++ {
			leftPos += y[sorted[k-1]]
			lo, hi := x[sorted[k-1]][f], x[sorted[k]][f]
			if lo == hi || k < m.minSamplesLeaf || n-k < m.minSamplesLeaf {
				continue
			}
			impurity := (float64(k)*gini(leftPos, k) + float64(n-k)*gini(total-leftPos, n-k)) / float64(n)
			if impurity < bestImpurity {
				bestFeature, bestThreshold, bestImpurity = f, (lo+hi)/2, impurity
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func gini(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}

func (m *tree) score(x []float64) float64 {
	cur := m.nodes[0]
	for {
		if x[cur.Feature] < cur.Threshold {
			if cur.LeftIsLeaf {
				return m.outputs[cur.Left]
			}
			cur = m.nodes[cur.Left]
		} else {
			if cur.RightIsLeaf {
				return m.outputs[cur.Right]
			}
			cur = m.nodes[cur.Right]
		}
	}
}
