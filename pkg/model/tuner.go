package model

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/montanaflynn/stats"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
	"github.com/sbrown5x/Final-Project/pkg/logging"
	"github.com/sbrown5x/Final-Project/pkg/recipe"
)

// Model family names.
const (
	FamilyLogistic = "logistic"
	FamilyForest   = "random_forest"
)

// Classifier is a trainable binary model.
type Classifier interface {
	Predictor
	Name() string
	Fit(train *dataset.Matrix) error
}

// GridPoint is one hyperparameter configuration.
type GridPoint map[string]float64

// Family bundles a model constructor with its hyperparameter grid.
type Family struct {
	Name string
	Grid []GridPoint
	New  func(p GridPoint) Classifier
}

// PointResult aggregates one grid point's cross-validated scores.
type PointResult struct {
	Point    GridPoint `json:"point"`
	FoldAUCs []float64 `json:"fold_aucs"` // NaN marks an excluded fold
	MeanAUC  float64   `json:"mean_auc"`
	StdAUC   float64   `json:"std_auc"`
	Scored   int       `json:"scored_folds"`
}

// TuneResult is the outcome of a grid search over one model family.
type TuneResult struct {
	Family   string        `json:"family"`
	Points   []PointResult `json:"points"`
	Best     int           `json:"best"`
	Warnings []string      `json:"warnings"`
}

// BestPoint returns the selected hyperparameter configuration.
func (r *TuneResult) BestPoint() GridPoint { return r.Points[r.Best].Point }

// Tuner runs cross-validated grid searches. Each (fold, grid-point)
// combination is an independent task scheduled across Workers goroutines,
// synchronized only at score aggregation.
type Tuner struct {
	Workers int
	Logger  *logging.Logger
}

// Tune scores every grid point of fam across the folds with rec as the
// fold-scoped preprocessing template, selects the point with maximal mean
// validation ROC-AUC (ties broken by grid order), refits recipe and model on
// the entire training split, and returns the finished artifact.
func (t *Tuner) Tune(train *dataset.Matrix, folds []dataset.Fold, rec recipe.Recipe, fam Family) (*Artifact, *TuneResult, error) {
	if len(fam.Grid) == 0 {
		return nil, nil, fmt.Errorf("tune %s: empty hyperparameter grid", fam.Name)
	}
	if len(folds) == 0 {
		return nil, nil, fmt.Errorf("tune %s: no folds", fam.Name)
	}

	workers := t.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type task struct{ point, fold int }
	type outcome struct {
		point, fold int
		auc         float64
		err         error
	}

	tasks := make(chan task)
	outcomes := make([]outcome, 0, len(fam.Grid)*len(folds))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tk := range tasks {
				auc, err := scoreFold(train, folds[tk.fold], tk.fold, rec, fam, fam.Grid[tk.point])
				mu.Lock()
				outcomes = append(outcomes, outcome{tk.point, tk.fold, auc, err})
				mu.Unlock()
			}
		}()
	}
	for p := range fam.Grid {
		for f := range folds {
			tasks <- task{p, f}
		}
	}
	close(tasks)
	wg.Wait()

	result := &TuneResult{Family: fam.Name, Points: make([]PointResult, len(fam.Grid)), Best: -1}
	for p, point := range fam.Grid {
		result.Points[p] = PointResult{
			Point:    point,
			FoldAUCs: nanSlice(len(folds)),
		}
	}
	for _, o := range outcomes {
		if o.err != nil {
			warning := fmt.Sprintf("grid point %v fold %d excluded: %v", fam.Grid[o.point], o.fold, o.err)
			result.Warnings = append(result.Warnings, warning)
			t.Logger.Warn("fold excluded from score aggregation", map[string]any{
				"family": fam.Name, "fold": o.fold, "point": fam.Grid[o.point], "reason": o.err.Error(),
			})
			continue
		}
		result.Points[o.point].FoldAUCs[o.fold] = o.auc
	}

	for p := range result.Points {
		pr := &result.Points[p]
		valid := make([]float64, 0, len(pr.FoldAUCs))
		for _, a := range pr.FoldAUCs {
			if !math.IsNaN(a) {
				valid = append(valid, a)
			}
		}
		pr.Scored = len(valid)
		if len(valid) == 0 {
			pr.MeanAUC = math.NaN()
			continue
		}
		pr.MeanAUC, _ = stats.Mean(valid)
		pr.StdAUC, _ = stats.StandardDeviation(valid)

		// Strict inequality keeps the first-encountered point on ties.
		if result.Best < 0 || pr.MeanAUC > result.Points[result.Best].MeanAUC {
			result.Best = p
		}
	}

	if result.Best < 0 {
		return nil, result, fmt.Errorf("tune %s: %w", fam.Name, ErrNoViableGridPoint)
	}

	artifact, err := finalize(train, rec, fam, result.BestPoint())
	if err != nil {
		return nil, result, fmt.Errorf("tune %s: refit: %w", fam.Name, err)
	}

	t.Logger.Info("grid search complete", map[string]any{
		"family":   fam.Name,
		"best":     result.BestPoint(),
		"mean_auc": result.Points[result.Best].MeanAUC,
	})
	return artifact, result, nil
}

// scoreFold fits the recipe and model on one fold's training partition and
// scores ROC-AUC on its validation partition. The fitted recipe never sees
// validation rows.
func scoreFold(train *dataset.Matrix, fold dataset.Fold, foldIdx int, rec recipe.Recipe, fam Family, point GridPoint) (float64, error) {
	foldTrain := train.Take(fold.Train)
	if class, degenerate := singleClass(foldTrain); degenerate {
		return 0, &DegenerateFoldError{Fold: foldIdx, Class: class}
	}

	fitted, transformed, err := rec.Fit(foldTrain)
	if err != nil {
		return 0, err
	}

	clf := fam.New(point)
	if err := clf.Fit(transformed); err != nil {
		return 0, err
	}

	foldVal, err := fitted.Apply(train.Take(fold.Val))
	if err != nil {
		return 0, err
	}
	probs, err := clf.PredictProba(foldVal)
	if err != nil {
		return 0, err
	}

	auc := rocAUC(probs, foldVal.Labels)
	if math.IsNaN(auc) {
		return 0, &DegenerateFoldError{Fold: foldIdx, Class: foldVal.Labels[0]}
	}
	return auc, nil
}

func finalize(train *dataset.Matrix, rec recipe.Recipe, fam Family, point GridPoint) (*Artifact, error) {
	fitted, transformed, err := rec.Fit(train)
	if err != nil {
		return nil, err
	}
	clf := fam.New(point)
	if err := clf.Fit(transformed); err != nil {
		return nil, err
	}
	return NewArtifact(fam.Name, point, train.Names, fitted, clf), nil
}

func singleClass(m *dataset.Matrix) (int, bool) {
	neg, pos := m.ClassCounts()
	switch {
	case neg == 0 && pos > 0:
		return 1, true
	case pos == 0 && neg > 0:
		return 0, true
	default:
		return 0, false
	}
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// IsDegenerate reports whether err stems from a degenerate fold.
func IsDegenerate(err error) bool {
	var d *DegenerateFoldError
	return errors.As(err, &d)
}
