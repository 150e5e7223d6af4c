package model

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
)

// Forest is a random-forest classifier over plain indicator features.
// Ensemble size and per-split feature-sample count are fixed configuration;
// the minimum leaf size is the tunable hyperparameter.
type Forest struct {
	Trees    []*Tree `json:"trees"`
	NumTrees int     `json:"num_trees"`
	MinLeaf  int     `json:"min_leaf"`
	MaxDepth int     `json:"max_depth"`
	MTry     int     `json:"mtry"` // 0 = sqrt(feature count)
	Seed     int64   `json:"seed"`

	FeatureNames []string `json:"feature_names"`
}

// NewForest creates a forest with the given fixed ensemble shape.
func NewForest(numTrees, mtry, minLeaf int, seed int64) *Forest {
	if numTrees <= 0 {
		numTrees = 100
	}
	if minLeaf <= 0 {
		minLeaf = 1
	}
	return &Forest{
		NumTrees: numTrees,
		MTry:     mtry,
		MinLeaf:  minLeaf,
		MaxDepth: 12,
		Seed:     seed,
	}
}

// Name identifies the model family.
func (f *Forest) Name() string { return FamilyForest }

// Fit grows the ensemble. Trees train concurrently; determinism is preserved
// by deriving every tree's generator from the forest seed and tree index.
func (f *Forest) Fit(train *dataset.Matrix) error {
	if train.NumRows() == 0 {
		return fmt.Errorf("forest: empty training data")
	}

	mtry := f.MTry
	if mtry <= 0 {
		mtry = int(math.Sqrt(float64(train.NumCols())))
		if mtry < 1 {
			mtry = 1
		}
	}
	f.FeatureNames = append([]string(nil), train.Names...)
	f.Trees = make([]*Tree, f.NumTrees)

	var wg sync.WaitGroup
	errs := make([]error, f.NumTrees)
	for i := 0; i < f.NumTrees; i++ {
		wg.Add(1)
		go func(treeIdx int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(f.Seed + int64(treeIdx)))

			boot := bootstrapIndices(train.NumRows(), rng)
			tree := NewTree(f.MaxDepth, f.MinLeaf)
			tree.MTry = mtry
			tree.rng = rng

			if err := tree.Fit(train.Take(boot)); err != nil {
				errs[treeIdx] = fmt.Errorf("tree %d: %w", treeIdx, err)
				return
			}
			f.Trees[treeIdx] = tree
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("forest: %w", err)
		}
	}
	return nil
}

// PredictProba returns the ensemble-mean P(label = 1) per row.
func (f *Forest) PredictProba(m *dataset.Matrix) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, fmt.Errorf("forest: not fitted")
	}
	aligned, err := m.Align(f.FeatureNames)
	if err != nil {
		return nil, err
	}

	out := make([]float64, aligned.NumRows())
	for i, row := range aligned.Rows {
		sum := 0.0
		for _, tree := range f.Trees {
			p, err := tree.PredictProbaRow(row)
			if err != nil {
				return nil, err
			}
			sum += p
		}
		out[i] = sum / float64(len(f.Trees))
	}
	return out, nil
}

// FeatureImportance aggregates per-tree impurity-weighted split counts,
// normalized to sum to 1.
func (f *Forest) FeatureImportance() map[string]float64 {
	raw := make(map[int]float64)
	total := 0.0
	for _, tree := range f.Trees {
		for j, v := range tree.FeatureImportance() {
			raw[j] += v
			total += v
		}
	}
	out := make(map[string]float64, len(raw))
	for j, v := range raw {
		if total > 0 {
			out[f.FeatureNames[j]] = v / total
		}
	}
	return out
}

func bootstrapIndices(n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.Intn(n)
	}
	return idx
}
