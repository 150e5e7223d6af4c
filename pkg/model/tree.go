// Package model provides the two supervised model families, the
// cross-validated hyperparameter tuner, and the held-out evaluator.
package model

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
)

// TreeNode is one node of a fitted classification tree.
type TreeNode struct {
	IsLeaf    bool      `json:"is_leaf"`
	Prob      float64   `json:"prob"` // P(label = 1) at a leaf
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Samples   int       `json:"samples"`
}

// Tree is a binary classification tree split on Gini impurity.
// NaN feature values follow the left (<= threshold) branch, always.
type Tree struct {
	Root        *TreeNode `json:"root"`
	MaxDepth    int       `json:"max_depth"`
	MinLeaf     int       `json:"min_leaf"`
	MTry        int       `json:"mtry"` // features sampled per split; 0 = all
	NumFeatures int       `json:"num_features"`

	rng *rand.Rand
}

// NewTree creates a tree with the given depth and minimum-leaf-size bounds.
func NewTree(maxDepth, minLeaf int) *Tree {
	if maxDepth <= 0 {
		maxDepth = 12
	}
	if minLeaf <= 0 {
		minLeaf = 1
	}
	return &Tree{MaxDepth: maxDepth, MinLeaf: minLeaf}
}

// Fit grows the tree on the training matrix.
func (t *Tree) Fit(train *dataset.Matrix) error {
	if train.NumRows() == 0 {
		return fmt.Errorf("tree: empty training data")
	}
	t.NumFeatures = train.NumCols()
	idx := make([]int, train.NumRows())
	for i := range idx {
		idx[i] = i
	}
	t.Root = t.grow(train, idx, 0)
	return nil
}

func (t *Tree) grow(m *dataset.Matrix, idx []int, depth int) *TreeNode {
	node := &TreeNode{Samples: len(idx), Prob: positiveShare(m, idx)}

	if depth >= t.MaxDepth || len(idx) < 2*t.MinLeaf || node.Prob == 0 || node.Prob == 1 {
		node.IsLeaf = true
		return node
	}

	feature, threshold, gain := t.bestSplit(m, idx)
	if gain <= 0 {
		node.IsLeaf = true
		return node
	}

	var left, right []int
	for _, i := range idx {
		if goesLeft(m.Rows[i][feature], threshold) {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < t.MinLeaf || len(right) < t.MinLeaf {
		node.IsLeaf = true
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = t.grow(m, left, depth+1)
	node.Right = t.grow(m, right, depth+1)
	return node
}

// bestSplit scans candidate features for the Gini-optimal threshold.
func (t *Tree) bestSplit(m *dataset.Matrix, idx []int) (feature int, threshold, gain float64) {
	parent := gini(positiveShare(m, idx))
	feature = -1

	for _, j := range t.candidateFeatures(m.NumCols()) {
		values := make([]float64, 0, len(idx))
		for _, i := range idx {
			if v := m.Rows[i][j]; !math.IsNaN(v) {
				values = append(values, v)
			}
		}
		if len(values) < 2 {
			continue
		}
		sort.Float64s(values)

		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			th := (values[v] + values[v-1]) / 2

			var nl, nr, pl, pr int
			for _, i := range idx {
				if goesLeft(m.Rows[i][j], th) {
					nl++
					pl += m.Labels[i]
				} else {
					nr++
					pr += m.Labels[i]
				}
			}
			if nl < t.MinLeaf || nr < t.MinLeaf {
				continue
			}

			wl := float64(nl) / float64(len(idx))
			wr := float64(nr) / float64(len(idx))
			g := parent - wl*gini(float64(pl)/float64(nl)) - wr*gini(float64(pr)/float64(nr))
			if g > gain {
				gain, feature, threshold = g, j, th
			}
		}
	}
	return feature, threshold, gain
}

// candidateFeatures returns the feature indices considered at one split:
// all of them, or a fresh sample of MTry without replacement.
func (t *Tree) candidateFeatures(total int) []int {
	if t.MTry <= 0 || t.MTry >= total || t.rng == nil {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return t.rng.Perm(total)[:t.MTry]
}

// PredictProbaRow returns P(label = 1) for one feature row.
func (t *Tree) PredictProbaRow(row []float64) (float64, error) {
	if t.Root == nil {
		return 0, fmt.Errorf("tree: not fitted")
	}
	if len(row) != t.NumFeatures {
		return 0, fmt.Errorf("tree: row has %d features, trained on %d", len(row), t.NumFeatures)
	}
	node := t.Root
	for !node.IsLeaf {
		if goesLeft(row[node.Feature], node.Threshold) {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Prob, nil
}

// FeatureImportance sums impurity-weighted split counts per feature index.
func (t *Tree) FeatureImportance() map[int]float64 {
	imp := make(map[int]float64)
	var walk func(n *TreeNode)
	walk = func(n *TreeNode) {
		if n == nil || n.IsLeaf {
			return
		}
		imp[n.Feature] += float64(n.Samples)
		walk(n.Left)
		walk(n.Right)
	}
	walk(t.Root)
	return imp
}

func goesLeft(v, threshold float64) bool {
	return math.IsNaN(v) || v <= threshold
}

func positiveShare(m *dataset.Matrix, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	pos := 0
	for _, i := range idx {
		pos += m.Labels[i]
	}
	return float64(pos) / float64(len(idx))
}

func gini(p float64) float64 {
	return 2 * p * (1 - p)
}
