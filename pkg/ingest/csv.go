// Package ingest decodes annual survey extracts into raw coded records.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sbrown5x/Final-Project/pkg/asec"
)

// Reserved column names carrying record identity rather than survey codes.
const (
	colYear        = "year"
	colHouseholdID = "household_id"
	colPersonID    = "person_id"
	colWeight      = "weight"
)

// ReadCSVFile reads an extract from a CSV file on disk.
func ReadCSVFile(path string) ([]asec.RawRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open extract: %w", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV decodes a header-mapped extract. The year, household_id, person_id,
// and weight columns identify the record; every other column is treated as a
// coded survey field keyed by its header name. An empty cell becomes the
// missing marker, a non-numeric cell is an error.
func ReadCSV(r io.Reader) ([]asec.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("extract is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	yearIdx, ok := columns[colYear]
	if !ok {
		return nil, fmt.Errorf("extract missing required column %q", colYear)
	}

	var raws []asec.RawRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line+1, err)
		}
		line++

		year, err := strconv.Atoi(strings.TrimSpace(row[yearIdx]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid year %q", line, row[yearIdx])
		}

		raw := asec.RawRecord{
			Year:   year,
			Weight: 1,
			Codes:  make(map[string]float64, len(header)-4),
		}
		if idx, ok := columns[colHouseholdID]; ok {
			raw.HouseholdID = strings.TrimSpace(row[idx])
		}
		if idx, ok := columns[colPersonID]; ok {
			raw.PersonID = strings.TrimSpace(row[idx])
		}
		if idx, ok := columns[colWeight]; ok && strings.TrimSpace(row[idx]) != "" {
			w, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid weight %q", line, row[idx])
			}
			raw.Weight = w
		}

		for name, idx := range columns {
			switch name {
			case colYear, colHouseholdID, colPersonID, colWeight:
				continue
			}
			cell := strings.TrimSpace(row[idx])
			if cell == "" {
				raw.Codes[name] = asec.Missing
				continue
			}
			code, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: column %q: invalid code %q", line, name, cell)
			}
			raw.Codes[name] = code
		}

		raws = append(raws, raw)
	}
	return raws, nil
}
