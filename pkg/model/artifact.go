package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
	"github.com/sbrown5x/Final-Project/pkg/recipe"
)

// Artifact is an immutable trained model: the fitted preprocessing
// parameters, the fitted estimator, and the hyperparameters that produced
// it. It is created by the tuner from exactly one training partition,
// consumed read-only thereafter, and never mutated; retraining produces a
// new artifact.
type Artifact struct {
	ID           string         `json:"id"`
	Family       string         `json:"family"`
	Hyper        GridPoint      `json:"hyperparameters"`
	FeatureNames []string       `json:"feature_names"`
	Recipe       *recipe.Fitted `json:"recipe"`
	CreatedAt    time.Time      `json:"created_at"`

	model Classifier
}

// NewArtifact assembles a trained-model artifact.
func NewArtifact(family string, point GridPoint, featureNames []string, fitted *recipe.Fitted, clf Classifier) *Artifact {
	return &Artifact{
		ID:           uuid.New().String(),
		Family:       family,
		Hyper:        point,
		FeatureNames: append([]string(nil), featureNames...),
		Recipe:       fitted,
		CreatedAt:    time.Now().UTC(),
		model:        clf,
	}
}

// Model returns the fitted estimator.
func (a *Artifact) Model() Classifier { return a.model }

// PredictProba aligns the dataset to the training schema, replays the fitted
// recipe, and scores with the fitted estimator. No stochastic step from
// training re-executes here.
func (a *Artifact) PredictProba(m *dataset.Matrix) ([]float64, error) {
	aligned, err := m.Align(a.FeatureNames)
	if err != nil {
		return nil, err
	}
	transformed, err := a.Recipe.Apply(aligned)
	if err != nil {
		return nil, err
	}
	return a.model.PredictProba(transformed)
}

// artifactJSON is the serialized artifact envelope.
type artifactJSON struct {
	ID           string          `json:"id"`
	Family       string          `json:"family"`
	Hyper        GridPoint       `json:"hyperparameters"`
	FeatureNames []string        `json:"feature_names"`
	Recipe       *recipe.Fitted  `json:"recipe"`
	CreatedAt    time.Time       `json:"created_at"`
	Model        json.RawMessage `json:"model"`
}

// MarshalJSON serializes the artifact, estimator parameters included, into a
// form sufficient to reproduce apply+predict deterministically.
func (a *Artifact) MarshalJSON() ([]byte, error) {
	modelData, err := json.Marshal(a.model)
	if err != nil {
		return nil, err
	}
	return json.Marshal(artifactJSON{
		ID:           a.ID,
		Family:       a.Family,
		Hyper:        a.Hyper,
		FeatureNames: a.FeatureNames,
		Recipe:       a.Recipe,
		CreatedAt:    a.CreatedAt,
		Model:        modelData,
	})
}

// UnmarshalJSON restores an artifact serialized by MarshalJSON.
func (a *Artifact) UnmarshalJSON(data []byte) error {
	var env artifactJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	var clf Classifier
	switch env.Family {
	case FamilyLogistic:
		clf = &Logistic{}
	case FamilyForest:
		clf = &Forest{}
	default:
		return fmt.Errorf("artifact: unknown model family %q", env.Family)
	}
	if err := json.Unmarshal(env.Model, clf); err != nil {
		return fmt.Errorf("artifact: decode %s model: %w", env.Family, err)
	}

	a.ID = env.ID
	a.Family = env.Family
	a.Hyper = env.Hyper
	a.FeatureNames = env.FeatureNames
	a.Recipe = env.Recipe
	a.CreatedAt = env.CreatedAt
	a.model = clf
	return nil
}
