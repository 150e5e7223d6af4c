package model

import (
	"errors"
	"fmt"
)

// DegenerateFoldError reports a fold whose training partition holds only one
// label class. The affected (fold, grid-point) score is excluded from
// aggregation rather than failing the search.
type DegenerateFoldError struct {
	Fold  int
	Class int // the only class present
}

func (e *DegenerateFoldError) Error() string {
	return fmt.Sprintf("degenerate fold %d: training partition holds only class %d", e.Fold, e.Class)
}

// ErrNoViableGridPoint is returned when every hyperparameter point failed on
// every fold, leaving nothing to select. Callers treat it as a fatal
// configuration error.
var ErrNoViableGridPoint = errors.New("no hyperparameter grid point could be scored")
