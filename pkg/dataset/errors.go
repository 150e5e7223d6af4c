package dataset

import "fmt"

// DataIntegrityError reports a structural defect in the input: a record
// missing a required field entirely, or a category manifest that does not
// cover the codes present in the data. Silent continuation would corrupt the
// encoding, so callers treat it as fatal.
type DataIntegrityError struct {
	Variable string
	Record   string
	Detail   string
}

func (e *DataIntegrityError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("data integrity: record %s, variable %q: %s", e.Record, e.Variable, e.Detail)
	}
	return fmt.Sprintf("data integrity: variable %q: %s", e.Variable, e.Detail)
}

// SchemaMismatchError reports that a dataset lacks a feature a trained model
// expects. It is fatal for the evaluation call that raised it only.
type SchemaMismatchError struct {
	Feature string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: dataset lacks feature %q", e.Feature)
}
