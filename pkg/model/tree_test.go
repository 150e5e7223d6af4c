package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
)

// syntheticMatrix builds n rows with two informative features and one noise
// feature; label 1 rows cluster at high feature values. posShare controls
// the class mix.
func syntheticMatrix(n int, posShare float64, seed int64) *dataset.Matrix {
	rng := rand.New(rand.NewSource(seed))
	m := &dataset.Matrix{
		Names:   []string{"signal_a", "signal_b", "noise"},
		Rows:    make([][]float64, n),
		Labels:  make([]int, n),
		Weights: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		label := 0
		if rng.Float64() < posShare {
			label = 1
		}
		shift := float64(label) * 1.5
		m.Rows[i] = []float64{
			rng.NormFloat64() + shift,
			rng.NormFloat64() + shift,
			rng.NormFloat64(),
		}
		m.Labels[i] = label
		m.Weights[i] = 1
	}
	return m
}

func TestTree(t *testing.T) {
	train := syntheticMatrix(400, 0.5, 1)

	tree := NewTree(8, 5)
	require.NoError(t, tree.Fit(train))

	t.Run("separates informative classes", func(t *testing.T) {
		correct := 0
		for i, row := range train.Rows {
			p, err := tree.PredictProbaRow(row)
			require.NoError(t, err)
			if (p >= 0.5) == (train.Labels[i] == 1) {
				correct++
			}
		}
		assert.Greater(t, float64(correct)/float64(train.NumRows()), 0.7)
	})

	t.Run("min leaf bound is honored", func(t *testing.T) {
		var walk func(n *TreeNode)
		walk = func(n *TreeNode) {
			if n == nil {
				return
			}
			if n.IsLeaf {
				assert.GreaterOrEqual(t, n.Samples, 5)
				return
			}
			walk(n.Left)
			walk(n.Right)
		}
		walk(tree.Root)
	})

	t.Run("missing values follow the left branch", func(t *testing.T) {
		p, err := tree.PredictProbaRow([]float64{math.NaN(), math.NaN(), math.NaN()})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	})

	t.Run("wrong width rejected", func(t *testing.T) {
		_, err := tree.PredictProbaRow([]float64{1})
		assert.Error(t, err)
	})

	t.Run("empty training data rejected", func(t *testing.T) {
		err := NewTree(3, 1).Fit(&dataset.Matrix{Names: []string{"x"}})
		assert.Error(t, err)
	})
}

func TestForest(t *testing.T) {
	train := syntheticMatrix(400, 0.5, 2)

	t.Run("deterministic for a fixed seed", func(t *testing.T) {
		a := NewForest(25, 2, 3, 7)
		require.NoError(t, a.Fit(train))
		b := NewForest(25, 2, 3, 7)
		require.NoError(t, b.Fit(train))

		probeA, err := a.PredictProba(train)
		require.NoError(t, err)
		probeB, err := b.PredictProba(train)
		require.NoError(t, err)
		assert.Equal(t, probeA, probeB)
	})

	t.Run("beats a single shallow tree on noise", func(t *testing.T) {
		f := NewForest(50, 0, 3, 11)
		require.NoError(t, f.Fit(train))
		probs, err := f.PredictProba(train)
		require.NoError(t, err)

		correct := 0
		for i, p := range probs {
			if (p >= 0.5) == (train.Labels[i] == 1) {
				correct++
			}
		}
		assert.Greater(t, float64(correct)/float64(len(probs)), 0.75)
	})

	t.Run("importance concentrates on informative features", func(t *testing.T) {
		f := NewForest(40, 0, 3, 13)
		require.NoError(t, f.Fit(train))
		imp := f.FeatureImportance()
		assert.Greater(t, imp["signal_a"]+imp["signal_b"], imp["noise"])
	})

	t.Run("evaluation schema mismatch surfaces", func(t *testing.T) {
		f := NewForest(5, 0, 3, 17)
		require.NoError(t, f.Fit(train))

		other := &dataset.Matrix{Names: []string{"signal_a"}, Rows: [][]float64{{1}}, Labels: []int{1}, Weights: []float64{1}}
		_, err := f.PredictProba(other)
		var mismatch *dataset.SchemaMismatchError
		require.ErrorAs(t, err, &mismatch)
	})
}

func TestLogistic(t *testing.T) {
	train := syntheticMatrix(500, 0.5, 3)

	t.Run("learns the informative direction", func(t *testing.T) {
		clf := NewLogistic(0.01)
		require.NoError(t, clf.Fit(train))

		probs, err := clf.PredictProba(train)
		require.NoError(t, err)
		correct := 0
		for i, p := range probs {
			if (p >= 0.5) == (train.Labels[i] == 1) {
				correct++
			}
		}
		assert.Greater(t, float64(correct)/float64(len(probs)), 0.75)
		assert.Greater(t, clf.Coefficients[0], 0.0)
		assert.Greater(t, clf.Coefficients[1], 0.0)
	})

	t.Run("fit is deterministic", func(t *testing.T) {
		a := NewLogistic(0.1)
		require.NoError(t, a.Fit(train))
		b := NewLogistic(0.1)
		require.NoError(t, b.Fit(train))
		assert.Equal(t, a.Coefficients, b.Coefficients)
		assert.Equal(t, a.Intercept, b.Intercept)
	})

	t.Run("stronger penalty shrinks coefficients", func(t *testing.T) {
		weak := NewLogistic(0.001)
		require.NoError(t, weak.Fit(train))
		strong := NewLogistic(1.0)
		require.NoError(t, strong.Fit(train))
		assert.Less(t, math.Abs(strong.Coefficients[0]), math.Abs(weak.Coefficients[0]))
	})

	t.Run("missing values rejected", func(t *testing.T) {
		bad := &dataset.Matrix{
			Names:   []string{"x"},
			Rows:    [][]float64{{math.NaN()}},
			Labels:  []int{1},
			Weights: []float64{1},
		}
		assert.Error(t, NewLogistic(0.1).Fit(bad))
	})
}
