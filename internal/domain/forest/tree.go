package forest

import (
	"math"
	"math/rand"
	"slices"
)

const (
	leafFeature     = -1
	minSamplesSplit = 2
)

// Node is one tree node. Leaves have Feature == -1. Value is the fraction of
// positive samples that reached the node.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v"`
}

// Tree is a flattened binary decision tree; Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict walks x to a leaf and returns its positive-class fraction.
func (t *Tree) Predict(x []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	n := t.Nodes[0]
	for n.Feature != leafFeature {
		if x[n.Feature] <= n.Threshold {
			n = t.Nodes[n.Left]
		} else {
			n = t.Nodes[n.Right]
		}
	}
	return n.Value
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Feature == leafFeature {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

type grower struct {
	X           [][]float64
	y           []int
	maxDepth    int
	maxFeatures int
	rng         *rand.Rand
	nodes       []Node
}

// growTree fits one tree on a bootstrap sample drawn with its own seed.
func growTree(X [][]float64, y []int, maxDepth int, seed int64) Tree {
	width := len(X[0])
	g := &grower{
		X:           X,
		y:           y,
		maxDepth:    maxDepth,
		maxFeatures: max(1, int(math.Sqrt(float64(width)))),
		rng:         rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic seed for reproducible models
	}
	sample := make([]int, len(X))
	for i := range sample {
		sample[i] = g.rng.Intn(len(X))
	}
	g.grow(sample, 0)
	return Tree{Nodes: g.nodes}
}

func (g *grower) grow(idx []int, depth int) int {
	pos := 0
	for _, i := range idx {
		pos += g.y[i]
	}
	id := len(g.nodes)
	g.nodes = append(g.nodes, Node{Feature: leafFeature, Value: float64(pos) / float64(len(idx))})

	if depth >= g.maxDepth || len(idx) < minSamplesSplit || pos == 0 || pos == len(idx) {
		return id
	}

	feature, threshold, ok := g.bestSplit(idx, pos)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if g.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)
	g.nodes[id].Feature = feature
	g.nodes[id].Threshold = threshold
	g.nodes[id].Left = l
	g.nodes[id].Right = r
	return id
}

// bestSplit draws features in random order and keeps the lowest weighted
// gini split. It inspects at least maxFeatures features and keeps going past
// that only until some feature yields a valid split.
func (g *grower) bestSplit(idx []int, pos int) (feature int, threshold float64, ok bool) {
	n := float64(len(idx))
	best := math.Inf(1)
	sorted := make([]int, len(idx))

	for visited, f := range g.rng.Perm(len(g.X[0])) {
		if visited >= g.maxFeatures && ok {
			break
		}
		copy(sorted, idx)
		slices.SortFunc(sorted, func(a, b int) int {
			switch va, vb := g.X[a][f], g.X[b][f]; {
			case va < vb:
				return -1
			case va > vb:
				return 1
			}
			return 0
		})

		leftN, leftPos := 0, 0
		for k := 0; k < len(sorted)-1; k++ {
			leftN++
			leftPos += g.y[sorted[k]]
			lo, hi := g.X[sorted[k]][f], g.X[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			rightN, rightPos := len(sorted)-leftN, pos-leftPos
			impurity := (float64(leftN)*gini(leftPos, leftN) + float64(rightN)*gini(rightPos, rightN)) / n
			if impurity < best {
				best = impurity
				feature = f
				threshold = lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func gini(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}
