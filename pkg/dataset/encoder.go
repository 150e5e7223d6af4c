package dataset

import (
	"fmt"
	"math"
	"sort"

	"github.com/sbrown5x/Final-Project/pkg/asec"
)

// Mode selects the indicator encoding variant.
type Mode int

const (
	// Plain emits 0/1 indicators; the tree-ensemble path consumes these.
	Plain Mode = iota
	// VarianceWeighted scales each indicator by 1/sqrt(n) where n is the
	// variable's manifest category count, so high-cardinality variables do
	// not dominate component variance during dimensionality reduction.
	VarianceWeighted
)

// Manifest maps each categorical variable to its recognized category count.
// The counts are external domain constants supplied as versioned
// configuration, not computed from the running sample: weighting must be
// stable across data slices even when a slice does not observe every code.
type Manifest map[string]int

// Spec names the variables an encoding consumes.
type Spec struct {
	Categorical []string `yaml:"categorical" json:"categorical"`
	Numeric     []string `yaml:"numeric" json:"numeric"`
	Manifest    Manifest `yaml:"manifest" json:"manifest"`
}

// Validate cross-checks the manifest against the code set actually present
// in records. A categorical variable absent from the manifest, a record
// missing a required field entirely, or more distinct codes than the
// manifest admits are DataIntegrityErrors: continuing would silently bias
// the weighting.
func (s Spec) Validate(records []asec.Record) error {
	observed := make(map[string]map[float64]bool, len(s.Categorical))
	for _, v := range s.Categorical {
		if _, ok := s.Manifest[v]; !ok {
			return &DataIntegrityError{Variable: v, Detail: "not in category manifest"}
		}
		observed[v] = make(map[float64]bool)
	}

	required := append(append([]string(nil), s.Categorical...), s.Numeric...)
	for _, r := range records {
		for _, v := range required {
			code, ok := r.Fields[v]
			if !ok {
				return &DataIntegrityError{
					Variable: v,
					Record:   recordID(r),
					Detail:   "field absent from record",
				}
			}
			if set, isCat := observed[v]; isCat && !asec.IsMissing(code) {
				set[code] = true
			}
		}
	}

	for _, v := range s.Categorical {
		if n, want := len(observed[v]), s.Manifest[v]; n > want {
			return &DataIntegrityError{
				Variable: v,
				Detail:   fmt.Sprintf("observed %d distinct codes, manifest allows %d", n, want),
			}
		}
	}
	return nil
}

// Encode expands records into a feature matrix. Categorical variables become
// one indicator column per observed code, named "<variable>_<code>"; numeric
// variables pass through under their own names. Records must carry a defined
// employment label.
func Encode(records []asec.Record, spec Spec, mode Mode) (*Matrix, error) {
	if err := spec.Validate(records); err != nil {
		return nil, err
	}

	// Column layout: per-variable indicator blocks in spec order, codes
	// ascending within a block, then numeric columns.
	type block struct {
		variable string
		codes    []float64
		weight   float64
	}
	blocks := make([]block, 0, len(spec.Categorical))
	for _, v := range spec.Categorical {
		codes := observedCodes(records, v)
		w := 1.0
		if mode == VarianceWeighted {
			w = 1.0 / math.Sqrt(float64(spec.Manifest[v]))
		}
		blocks = append(blocks, block{variable: v, codes: codes, weight: w})
	}

	var names []string
	for _, b := range blocks {
		for _, c := range b.codes {
			names = append(names, fmt.Sprintf("%s_%g", b.variable, c))
		}
	}
	names = append(names, spec.Numeric...)

	m := &Matrix{
		Names:   names,
		Rows:    make([][]float64, len(records)),
		Labels:  make([]int, len(records)),
		Weights: make([]float64, len(records)),
	}

	for i, r := range records {
		label := r.Employed()
		if asec.IsMissing(label) {
			return nil, fmt.Errorf("record %s has no defined employment label; filter with asec.Labeled first", recordID(r))
		}
		m.Labels[i] = int(label)
		m.Weights[i] = r.Weight

		row := make([]float64, 0, len(names))
		for _, b := range blocks {
			val := r.Fields[b.variable]
			for _, c := range b.codes {
				switch {
				case asec.IsMissing(val):
					// True missingness stays missing, never a silent zero.
					row = append(row, asec.Missing)
				case val == c:
					row = append(row, b.weight)
				default:
					row = append(row, 0)
				}
			}
		}
		for _, v := range spec.Numeric {
			row = append(row, r.Fields[v])
		}
		m.Rows[i] = row
	}

	return m, nil
}

func observedCodes(records []asec.Record, variable string) []float64 {
	set := make(map[float64]bool)
	for _, r := range records {
		if v, ok := r.Fields[variable]; ok && !asec.IsMissing(v) {
			set[v] = true
		}
	}
	codes := make([]float64, 0, len(set))
	for c := range set {
		codes = append(codes, c)
	}
	sort.Float64s(codes)
	return codes
}

func recordID(r asec.Record) string {
	return fmt.Sprintf("%d/%s/%s", r.Year, r.HouseholdID, r.PersonID)
}
