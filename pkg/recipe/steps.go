package recipe

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
)

// Center subtracts per-column training means.
type Center struct{}

func (Center) Name() string { return stepCenter }

// FittedCenter holds the training means, keyed positionally to Names.
type FittedCenter struct {
	Names []string  `json:"names"`
	Means []float64 `json:"means"`
}

func (*FittedCenter) Name() string { return stepCenter }

func (Center) Fit(train *dataset.Matrix) (FittedStep, *dataset.Matrix, error) {
	means := make([]float64, train.NumCols())
	for j := range means {
		means[j] = columnMean(train, j)
	}
	fitted := &FittedCenter{Names: append([]string(nil), train.Names...), Means: means}
	out, err := fitted.Apply(train)
	return fitted, out, err
}

func (f *FittedCenter) Apply(m *dataset.Matrix) (*dataset.Matrix, error) {
	aligned, err := m.Align(f.Names)
	if err != nil {
		return nil, err
	}
	for _, row := range aligned.Rows {
		for j := range row {
			row[j] -= f.Means[j] // NaN - mean stays NaN
		}
	}
	return aligned, nil
}

// Scale divides columns by their training standard deviation. Columns with
// zero variance are left unscaled.
type Scale struct{}

func (Scale) Name() string { return stepScale }

// FittedScale holds the training standard deviations.
type FittedScale struct {
	Names []string  `json:"names"`
	Stds  []float64 `json:"stds"`
}

func (*FittedScale) Name() string { return stepScale }

func (Scale) Fit(train *dataset.Matrix) (FittedStep, *dataset.Matrix, error) {
	stds := make([]float64, train.NumCols())
	for j := range stds {
		sd := columnStd(train, j)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		stds[j] = sd
	}
	fitted := &FittedScale{Names: append([]string(nil), train.Names...), Stds: stds}
	out, err := fitted.Apply(train)
	return fitted, out, err
}

func (f *FittedScale) Apply(m *dataset.Matrix) (*dataset.Matrix, error) {
	aligned, err := m.Align(f.Names)
	if err != nil {
		return nil, err
	}
	for _, row := range aligned.Rows {
		for j := range row {
			row[j] /= f.Stds[j]
		}
	}
	return aligned, nil
}

// NearZeroVar drops columns that are effectively constant in the training
// data: the ratio of the most common to the second most common value exceeds
// FreqRatio while the share of distinct values falls below UniqueCut.
type NearZeroVar struct {
	FreqRatio float64 // default 19
	UniqueCut float64 // default 0.10
}

func (NearZeroVar) Name() string { return stepNearZeroVar }

// FittedNearZeroVar holds the surviving feature schema.
type FittedNearZeroVar struct {
	Keep []string `json:"keep"`
}

func (*FittedNearZeroVar) Name() string { return stepNearZeroVar }

func (s NearZeroVar) Fit(train *dataset.Matrix) (FittedStep, *dataset.Matrix, error) {
	freqRatio := s.FreqRatio
	if freqRatio <= 0 {
		freqRatio = 19
	}
	uniqueCut := s.UniqueCut
	if uniqueCut <= 0 {
		uniqueCut = 0.10
	}

	var keep []string
	for j, name := range train.Names {
		if !nearZeroVariance(train, j, freqRatio, uniqueCut) {
			keep = append(keep, name)
		}
	}
	if len(keep) == 0 {
		return nil, nil, fmt.Errorf("all %d columns are near zero variance", train.NumCols())
	}

	fitted := &FittedNearZeroVar{Keep: keep}
	out, err := fitted.Apply(train)
	return fitted, out, err
}

func (f *FittedNearZeroVar) Apply(m *dataset.Matrix) (*dataset.Matrix, error) {
	return m.Align(f.Keep)
}

func nearZeroVariance(m *dataset.Matrix, col int, freqRatio, uniqueCut float64) bool {
	counts := make(map[float64]int)
	n := 0
	for _, row := range m.Rows {
		v := row[col]
		if math.IsNaN(v) {
			continue
		}
		counts[v]++
		n++
	}
	if n == 0 || len(counts) == 1 {
		return true
	}

	freqs := make([]int, 0, len(counts))
	for _, c := range counts {
		freqs = append(freqs, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(freqs)))

	ratio := float64(freqs[0]) / float64(freqs[1])
	uniqueShare := float64(len(counts)) / float64(n)
	return ratio > freqRatio && uniqueShare < uniqueCut
}

// CollapseRare folds indicator columns whose active share in the training
// data falls below MinShare into a per-variable "<variable>_other" column.
type CollapseRare struct {
	MinShare float64 // default 0.01
}

func (CollapseRare) Name() string { return stepCollapseRare }

// FittedCollapseRare records, per variable, which source columns collapse.
type FittedCollapseRare struct {
	Names    []string            `json:"names"`    // input schema
	Out      []string            `json:"out"`      // output schema
	Collapse map[string][]string `json:"collapse"` // other-column -> source columns
}

func (*FittedCollapseRare) Name() string { return stepCollapseRare }

func (s CollapseRare) Fit(train *dataset.Matrix) (FittedStep, *dataset.Matrix, error) {
	minShare := s.MinShare
	if minShare <= 0 {
		minShare = 0.01
	}

	collapse := make(map[string][]string)
	var out []string
	for j, name := range train.Names {
		variable, isIndicator := indicatorVariable(name)
		if !isIndicator || activeShare(train, j) >= minShare {
			out = append(out, name)
			continue
		}
		other := variable + "_other"
		if len(collapse[other]) == 0 {
			out = append(out, other)
		}
		collapse[other] = append(collapse[other], name)
	}

	fitted := &FittedCollapseRare{
		Names:    append([]string(nil), train.Names...),
		Out:      out,
		Collapse: collapse,
	}
	transformed, err := fitted.Apply(train)
	return fitted, transformed, err
}

func (f *FittedCollapseRare) Apply(m *dataset.Matrix) (*dataset.Matrix, error) {
	aligned, err := m.Align(f.Names)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(f.Names))
	for j, n := range f.Names {
		index[n] = j
	}

	out := &dataset.Matrix{
		Names:   append([]string(nil), f.Out...),
		Rows:    make([][]float64, aligned.NumRows()),
		Labels:  aligned.Labels,
		Weights: aligned.Weights,
	}
	for i, row := range aligned.Rows {
		outRow := make([]float64, len(f.Out))
		for k, name := range f.Out {
			if sources, ok := f.Collapse[name]; ok {
				// Union of mutually exclusive indicators; the shared
				// per-variable weight survives the max.
				v := 0.0
				for _, src := range sources {
					sv := row[index[src]]
					if math.IsNaN(sv) {
						v = math.NaN()
						break
					}
					if sv > v {
						v = sv
					}
				}
				outRow[k] = v
				continue
			}
			outRow[k] = row[index[name]]
		}
		out.Rows[i] = outRow
	}
	return out, nil
}

// indicatorVariable extracts the parent variable from an indicator column
// name of the form "<variable>_<code>".
func indicatorVariable(name string) (string, bool) {
	i := strings.LastIndex(name, "_")
	if i <= 0 || i == len(name)-1 {
		return "", false
	}
	suffix := name[i+1:]
	for _, r := range suffix {
		if (r < '0' || r > '9') && r != '.' && r != '-' {
			return "", false
		}
	}
	return name[:i], true
}

func activeShare(m *dataset.Matrix, col int) float64 {
	active, n := 0, 0
	for _, row := range m.Rows {
		v := row[col]
		if math.IsNaN(v) {
			continue
		}
		n++
		if v != 0 {
			active++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(active) / float64(n)
}

func columnMean(m *dataset.Matrix, col int) float64 {
	sum, n := 0.0, 0
	for _, row := range m.Rows {
		if v := row[col]; !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func columnStd(m *dataset.Matrix, col int) float64 {
	mean := columnMean(m, col)
	sum, n := 0.0, 0
	for _, row := range m.Rows {
		if v := row[col]; !math.IsNaN(v) {
			d := v - mean
			sum += d * d
			n++
		}
	}
	if n < 2 {
		return 0
	}
	return math.Sqrt(sum / float64(n-1))
}
