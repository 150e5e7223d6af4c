package dataset

import (
	"fmt"
	"math/rand"
)

// Fold is one cross-validation partition of a training set: Val holds the
// held-out row indices, Train the remainder.
type Fold struct {
	Train []int
	Val   []int
}

// Split partitions row indices [0,n) into disjoint train and test sets.
// The assignment is a deterministic function of (n, trainFraction, seed):
// the same inputs always yield the same membership.
func Split(n int, trainFraction float64, seed int64) (train, test []int, err error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("split: empty dataset")
	}
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, nil, fmt.Errorf("split: train fraction %v outside (0,1)", trainFraction)
	}

	idx := shuffled(n, seed)
	cut := int(float64(n) * trainFraction)
	if cut == 0 {
		cut = 1
	}
	if cut == n {
		cut = n - 1
	}
	return idx[:cut], idx[cut:], nil
}

// Folds partitions the given training indices into k disjoint folds whose
// validation sets cover the input exactly once. Deterministic given
// (train, k, seed).
func Folds(train []int, k int, seed int64) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("folds: k must be at least 2, got %d", k)
	}
	if len(train) < k {
		return nil, fmt.Errorf("folds: %d rows cannot fill %d folds", len(train), k)
	}

	order := make([]int, len(train))
	copy(order, train)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	folds := make([]Fold, k)
	size := len(order) / k
	for f := 0; f < k; f++ {
		lo := f * size
		hi := lo + size
		if f == k-1 {
			hi = len(order) // last fold takes the remainder
		}
		folds[f].Val = append([]int(nil), order[lo:hi]...)
		folds[f].Train = append(append([]int(nil), order[:lo]...), order[hi:]...)
	}
	return folds, nil
}

func shuffled(n int, seed int64) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx
}
