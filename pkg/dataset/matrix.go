// Package dataset builds model-ready feature matrices from normalized survey
// records: indicator expansion of categorical variables (plain or
// variance-weighted), deterministic train/test splitting, and k-fold
// partitioning.
package dataset

import (
	"fmt"
	"math"
)

// Matrix is an ordered feature table. Rows are observations, columns are
// named features; NaN marks a missing value. Labels carries the binary target
// (0 or 1) aligned with Rows, Weights the survey weights.
type Matrix struct {
	Names   []string    `json:"names"`
	Rows    [][]float64 `json:"rows"`
	Labels  []int       `json:"labels"`
	Weights []float64   `json:"weights"`
}

// NumRows returns the number of observations.
func (m *Matrix) NumRows() int { return len(m.Rows) }

// NumCols returns the number of features.
func (m *Matrix) NumCols() int { return len(m.Names) }

// ColumnIndex returns the index of the named feature, or -1.
func (m *Matrix) ColumnIndex(name string) int {
	for i, n := range m.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Take materializes the subset of rows selected by idx, preserving order.
// Row slices are copied so the subset can be transformed independently.
func (m *Matrix) Take(idx []int) *Matrix {
	out := &Matrix{
		Names:   append([]string(nil), m.Names...),
		Rows:    make([][]float64, len(idx)),
		Labels:  make([]int, len(idx)),
		Weights: make([]float64, len(idx)),
	}
	for i, j := range idx {
		out.Rows[i] = append([]float64(nil), m.Rows[j]...)
		out.Labels[i] = m.Labels[j]
		out.Weights[i] = m.Weights[j]
	}
	return out
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	idx := make([]int, m.NumRows())
	for i := range idx {
		idx[i] = i
	}
	return m.Take(idx)
}

// Align reorders columns to match the given feature schema. A feature the
// schema names but the matrix lacks is a SchemaMismatchError; surplus columns
// are dropped.
func (m *Matrix) Align(names []string) (*Matrix, error) {
	cols := make([]int, len(names))
	for i, name := range names {
		j := m.ColumnIndex(name)
		if j < 0 {
			return nil, &SchemaMismatchError{Feature: name}
		}
		cols[i] = j
	}

	out := &Matrix{
		Names:   append([]string(nil), names...),
		Rows:    make([][]float64, m.NumRows()),
		Labels:  append([]int(nil), m.Labels...),
		Weights: append([]float64(nil), m.Weights...),
	}
	for i, row := range m.Rows {
		out.Rows[i] = make([]float64, len(cols))
		for k, j := range cols {
			out.Rows[i][k] = row[j]
		}
	}
	return out, nil
}

// CompleteCaseIndices returns the indices of rows with no missing feature
// values, in row order.
func (m *Matrix) CompleteCaseIndices() []int {
	var keep []int
	for i, row := range m.Rows {
		complete := true
		for _, v := range row {
			if math.IsNaN(v) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	return keep
}

// CompleteCases returns the rows with no missing feature values together
// with the number of rows dropped.
func (m *Matrix) CompleteCases() (*Matrix, int) {
	keep := m.CompleteCaseIndices()
	return m.Take(keep), m.NumRows() - len(keep)
}

// ClassCounts returns the number of rows per label class.
func (m *Matrix) ClassCounts() (neg, pos int) {
	for _, l := range m.Labels {
		if l == 1 {
			pos++
		} else {
			neg++
		}
	}
	return neg, pos
}

func (m *Matrix) String() string {
	neg, pos := m.ClassCounts()
	return fmt.Sprintf("dataset.Matrix{%d rows, %d features, %d/%d neg/pos}",
		m.NumRows(), m.NumCols(), neg, pos)
}
