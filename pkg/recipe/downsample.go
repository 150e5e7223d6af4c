package recipe

import (
	"math/rand"
	"sort"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
)

// Downsample removes majority-class rows from the training partition until
// the classes balance. It acts only at fit time: evaluation data is never
// resampled, and the fitted step replays as the identity so inference stays
// deterministic.
type Downsample struct {
	Seed int64
}

func (Downsample) Name() string { return stepDownsample }

// FittedDownsample records the balance the training data was sampled to.
type FittedDownsample struct {
	KeptPerClass int `json:"kept_per_class"`
}

func (*FittedDownsample) Name() string { return stepDownsample }

func (s Downsample) Fit(train *dataset.Matrix) (FittedStep, *dataset.Matrix, error) {
	var neg, pos []int
	for i, l := range train.Labels {
		if l == 1 {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}

	minority := len(neg)
	if len(pos) < minority {
		minority = len(pos)
	}
	fitted := &FittedDownsample{KeptPerClass: minority}
	if minority == 0 || len(neg) == len(pos) {
		return fitted, train, nil
	}

	r := rand.New(rand.NewSource(s.Seed))
	r.Shuffle(len(neg), func(i, j int) { neg[i], neg[j] = neg[j], neg[i] })
	r.Shuffle(len(pos), func(i, j int) { pos[i], pos[j] = pos[j], pos[i] })

	keep := append(append([]int(nil), neg[:minority]...), pos[:minority]...)
	// Restore the original row order.
	sort.Ints(keep)
	return fitted, train.Take(keep), nil
}

// Apply is the identity: the class-balancing draw happened at fit time.
func (f *FittedDownsample) Apply(m *dataset.Matrix) (*dataset.Matrix, error) {
	return m, nil
}
