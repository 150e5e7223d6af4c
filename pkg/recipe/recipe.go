// Package recipe implements a composable, two-phase preprocessing chain.
//
// A Recipe is an ordered list of steps. Fit computes every step's parameters
// using only the training data it is given and returns a Fitted value; Apply
// replays those fixed parameters against any compatible dataset without
// recomputing them. This is the leakage-prevention contract: within
// cross-validation a recipe is fitted once per fold on that fold's training
// partition, and validation rows can never influence the fitted parameters.
package recipe

import (
	"encoding/json"
	"fmt"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
)

// Step computes transform parameters from a training subset.
// Fit returns the fitted step together with the transformed training data;
// training-only steps (resampling) transform here and are identity at Apply
// time.
type Step interface {
	Name() string
	Fit(train *dataset.Matrix) (FittedStep, *dataset.Matrix, error)
}

// FittedStep applies previously computed parameters. Apply must not mutate
// the receiver or its input.
type FittedStep interface {
	Name() string
	Apply(m *dataset.Matrix) (*dataset.Matrix, error)
}

// Recipe is an ordered transform chain. The zero value is a no-op recipe.
type Recipe struct {
	Steps []Step
}

// New composes steps into a recipe.
func New(steps ...Step) Recipe {
	return Recipe{Steps: steps}
}

// Fit fits each step in order on the running training data and returns the
// fitted chain plus the fully transformed training set.
func (r Recipe) Fit(train *dataset.Matrix) (*Fitted, *dataset.Matrix, error) {
	fitted := &Fitted{Steps: make([]FittedStep, 0, len(r.Steps))}
	cur := train
	for _, s := range r.Steps {
		fs, next, err := s.Fit(cur)
		if err != nil {
			return nil, nil, fmt.Errorf("recipe: fit %s: %w", s.Name(), err)
		}
		fitted.Steps = append(fitted.Steps, fs)
		cur = next
	}
	return fitted, cur, nil
}

// Fitted is an immutable chain of fitted steps. It may be shared read-only
// across concurrent evaluation calls.
type Fitted struct {
	Steps []FittedStep
}

// Apply runs the fitted chain against m, returning a new matrix.
func (f *Fitted) Apply(m *dataset.Matrix) (*dataset.Matrix, error) {
	cur := m
	for _, fs := range f.Steps {
		next, err := fs.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("recipe: apply %s: %w", fs.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// fittedEnvelope is the serialized form of one fitted step.
type fittedEnvelope struct {
	Step   string          `json:"step"`
	Params json.RawMessage `json:"params"`
}

// MarshalJSON serializes the fitted chain as an ordered list of
// {step, params} envelopes.
func (f *Fitted) MarshalJSON() ([]byte, error) {
	out := make([]fittedEnvelope, len(f.Steps))
	for i, fs := range f.Steps {
		params, err := json.Marshal(fs)
		if err != nil {
			return nil, err
		}
		out[i] = fittedEnvelope{Step: fs.Name(), Params: params}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a fitted chain serialized by MarshalJSON.
func (f *Fitted) UnmarshalJSON(data []byte) error {
	var envelopes []fittedEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return err
	}
	f.Steps = make([]FittedStep, len(envelopes))
	for i, env := range envelopes {
		fs, err := newFittedStep(env.Step)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(env.Params, fs); err != nil {
			return fmt.Errorf("recipe: decode %s: %w", env.Step, err)
		}
		f.Steps[i] = fs
	}
	return nil
}

func newFittedStep(name string) (FittedStep, error) {
	switch name {
	case stepCenter:
		return &FittedCenter{}, nil
	case stepScale:
		return &FittedScale{}, nil
	case stepNearZeroVar:
		return &FittedNearZeroVar{}, nil
	case stepPCA:
		return &FittedPCA{}, nil
	case stepDownsample:
		return &FittedDownsample{}, nil
	case stepCollapseRare:
		return &FittedCollapseRare{}, nil
	default:
		return nil, fmt.Errorf("recipe: unknown step %q", name)
	}
}

const (
	stepCenter       = "center"
	stepScale        = "scale"
	stepNearZeroVar  = "near_zero_variance"
	stepPCA          = "pca"
	stepDownsample   = "downsample"
	stepCollapseRare = "collapse_rare"
)
