package store

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
	"github.com/sbrown5x/Final-Project/pkg/model"
	"github.com/sbrown5x/Final-Project/pkg/recipe"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func trainedArtifact(t *testing.T) (*model.Artifact, *dataset.Matrix) {
	t.Helper()
	m := &dataset.Matrix{
		Names: []string{"x1", "x2"},
		Rows: [][]float64{
			{0.1, 1.0}, {0.3, 1.2}, {0.2, 0.8}, {0.4, 1.1},
			{2.1, 3.0}, {2.3, 2.8}, {1.9, 3.2}, {2.2, 3.1},
		},
		Labels:  []int{0, 0, 0, 0, 1, 1, 1, 1},
		Weights: []float64{1, 1, 1, 1, 1, 1, 1, 1},
	}

	fitted, transformed, err := recipe.New(recipe.Center{}, recipe.Scale{}).Fit(m)
	require.NoError(t, err)
	clf := model.NewLogistic(0.01)
	require.NoError(t, clf.Fit(transformed))

	return model.NewArtifact(model.FamilyLogistic, model.GridPoint{"lambda": 0.01}, m.Names, fitted, clf), m
}

func TestArtifactPersistence(t *testing.T) {
	s := openTestStore(t)
	artifact, m := trainedArtifact(t)

	require.NoError(t, s.SaveArtifact("run-1", artifact))

	restored, err := s.GetArtifact(artifact.ID)
	require.NoError(t, err)
	assert.Equal(t, artifact.ID, restored.ID)
	assert.Equal(t, artifact.Family, restored.Family)
	assert.Equal(t, artifact.Hyper, restored.Hyper)
	assert.Equal(t, artifact.FeatureNames, restored.FeatureNames)

	// A restored artifact must score identically to the original.
	want, err := artifact.PredictProba(m)
	require.NoError(t, err)
	got, err := restored.PredictProba(m)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-12)
}

func TestGetArtifactNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetArtifact("nope")
	assert.ErrorContains(t, err, "not found")
}

func TestListArtifactsByRun(t *testing.T) {
	s := openTestStore(t)
	first, _ := trainedArtifact(t)
	second, _ := trainedArtifact(t)

	require.NoError(t, s.SaveArtifact("run-1", first))
	require.NoError(t, s.SaveArtifact("run-1", second))
	require.NoError(t, s.SaveArtifact("run-2", first))

	got, err := s.ListArtifacts("run-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListArtifacts("run-3")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEvaluationPersistence(t *testing.T) {
	s := openTestStore(t)
	artifact, _ := trainedArtifact(t)
	require.NoError(t, s.SaveArtifact("run-1", artifact))

	report := &model.Report{
		ConfusionMatrix: [2][2]int{{40, 10}, {5, 45}},
		Accuracy:        0.85,
		Sensitivity:     0.9,
		Specificity:     0.8,
		AUC:             0.93,
		Count:           100,
	}
	require.NoError(t, s.SaveEvaluation("run-1", "test/logistic", artifact.ID, report))

	// An undefined AUC must survive the round trip as NaN.
	degenerate := &model.Report{Accuracy: 1, AUC: math.NaN(), Count: 8}
	require.NoError(t, s.SaveEvaluation("run-1", "subgroup/immigrant", artifact.ID, degenerate))

	reports, err := s.ListEvaluations("run-1")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, report, reports["test/logistic"])
	assert.True(t, math.IsNaN(reports["subgroup/immigrant"].AUC))
}
