// Package asec turns raw CPS/ASEC survey codes into analysis-ready records.
//
// A RawRecord carries the coded fields exactly as they appear in the annual
// extract. Normalize maps them field by field onto a Record whose values are
// canonical analysis variables: sentinel "not in universe" codes become an
// explicit missing marker (NaN) or a structural zero, 1/2 survey flags become
// 0/1, and the derived employed/immigrant variables are attached.
package asec

import "math"

// Missing is the explicit missing marker for analysis variables.
// Every sentinel code the survey uses for "blank / not in universe" is mapped
// onto it during normalization, never left behind as a live numeric value.
var Missing = math.NaN()

// IsMissing reports whether v is the missing marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// RawRecord is one person-year observation as decoded from the extract.
// Codes holds the coded survey fields keyed by variable name; decoding the
// on-disk format into this shape is the caller's concern.
type RawRecord struct {
	Year        int                `json:"year"`
	HouseholdID string             `json:"household_id"`
	PersonID    string             `json:"person_id"`
	Weight      float64            `json:"weight"`
	Codes       map[string]float64 `json:"codes"`
}

// Record is a normalized person-year observation. Fields maps analysis
// variable names to values, with NaN marking true missingness.
type Record struct {
	Year        int                `json:"year"`
	HouseholdID string             `json:"household_id"`
	PersonID    string             `json:"person_id"`
	Weight      float64            `json:"weight"`
	Fields      map[string]float64 `json:"fields"`
}

// Field returns the named analysis variable, or NaN if the record does not
// carry it.
func (r Record) Field(name string) float64 {
	v, ok := r.Fields[name]
	if !ok {
		return Missing
	}
	return v
}

// Employed returns the derived employment label: 1 employed, 0 unemployed,
// NaN for respondents outside the labor force.
func (r Record) Employed() float64 { return r.Field(VarEmployed) }

// Immigrant returns the derived immigrant flag: 1 foreign-born
// (naturalized or non-citizen), 0 native, NaN for unrecognized codes.
func (r Record) Immigrant() float64 { return r.Field(VarImmigrant) }

// Analysis variable names shared across the pipeline.
const (
	VarAge              = "age"
	VarSex              = "sex"
	VarRace             = "race"
	VarEducation        = "education"
	VarCitizenship      = "citizenship"
	VarState            = "state"
	VarHispanicOrigin   = "hispanic_origin"
	VarOccupation       = "occupation"
	VarIndustry         = "industry"
	VarClassOfWorker    = "class_of_worker"
	VarUnitsInStructure = "units_in_structure"
	VarReasonForMove    = "reason_for_move"
	VarHealthStatus     = "health_status"
	VarPremiumPaid      = "premium_paid_by_employer"
	VarMortgage         = "mortgage_flag"
	VarEmployerIns      = "covered_by_employer_insurance"
	VarWageIncome       = "wage_income"
	VarSelfEmpIncome    = "self_employment_income"
	VarInterestIncome   = "interest_income"
	VarEmploymentStatus = "employment_status"
	VarEmployed         = "employed"
	VarImmigrant        = "immigrant"
)
