package recipe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
)

// PCA projects centered/scaled numeric features onto the top-K orthogonal
// directions of maximal variance. K is a fixed hyperparameter, not tuned per
// fold, so recipes stay comparable across folds.
type PCA struct {
	K int
}

func (PCA) Name() string { return stepPCA }

// FittedPCA holds the training column means and the projection matrix
// (input features x components).
type FittedPCA struct {
	Names      []string    `json:"names"`
	Means      []float64   `json:"means"`
	Projection [][]float64 `json:"projection"`
	Components int         `json:"components"`
}

func (*FittedPCA) Name() string { return stepPCA }

func (s PCA) Fit(train *dataset.Matrix) (FittedStep, *dataset.Matrix, error) {
	if s.K < 1 {
		return nil, nil, fmt.Errorf("component count %d must be positive", s.K)
	}
	n, d := train.NumRows(), train.NumCols()
	if n < 2 {
		return nil, nil, fmt.Errorf("need at least 2 rows, got %d", n)
	}

	flat := make([]float64, 0, n*d)
	for _, row := range train.Rows {
		for _, v := range row {
			if math.IsNaN(v) {
				return nil, nil, fmt.Errorf("dimensionality reduction requires complete cases")
			}
			flat = append(flat, v)
		}
	}
	x := mat.NewDense(n, d, flat)

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, nil, fmt.Errorf("principal component decomposition failed")
	}

	k := s.K
	if max := min(n, d); k > max {
		k = max
	}

	var vec mat.Dense
	pc.VectorsTo(&vec)

	// Store the training means explicitly: apply-time projection must use
	// the exact centering the decomposition saw, regardless of what the
	// incoming data looks like.
	means := make([]float64, d)
	for j := 0; j < d; j++ {
		means[j] = columnMean(train, j)
	}

	projection := make([][]float64, d)
	for j := 0; j < d; j++ {
		projection[j] = make([]float64, k)
		for c := 0; c < k; c++ {
			projection[j][c] = vec.At(j, c)
		}
	}

	fitted := &FittedPCA{
		Names:      append([]string(nil), train.Names...),
		Means:      means,
		Projection: projection,
		Components: k,
	}
	out, err := fitted.Apply(train)
	return fitted, out, err
}

func (f *FittedPCA) Apply(m *dataset.Matrix) (*dataset.Matrix, error) {
	aligned, err := m.Align(f.Names)
	if err != nil {
		return nil, err
	}

	names := make([]string, f.Components)
	for c := range names {
		names[c] = fmt.Sprintf("PC%d", c+1)
	}

	out := &dataset.Matrix{
		Names:   names,
		Rows:    make([][]float64, aligned.NumRows()),
		Labels:  aligned.Labels,
		Weights: aligned.Weights,
	}
	for i, row := range aligned.Rows {
		proj := make([]float64, f.Components)
		for c := 0; c < f.Components; c++ {
			sum := 0.0
			for j, v := range row {
				sum += (v - f.Means[j]) * f.Projection[j][c]
			}
			proj[c] = sum
		}
		out.Rows[i] = proj
	}
	return out, nil
}
