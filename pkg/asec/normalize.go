package asec

// Employment status codes (monthly labor force recode). Codes 1-2 are
// employed, 3-4 unemployed, 5-7 not in the labor force.
const (
	statusEmployedAtWork   = 1
	statusEmployedAbsent   = 2
	statusUnemployedLayoff = 3
	statusUnemployedSearch = 4
	statusNILFRetired      = 5
	statusNILFDisabled     = 6
	statusNILFOther        = 7
)

// Citizenship codes. 1-3 are native born, 4 naturalized, 5 non-citizen.
const (
	citizenNative        = 1
	citizenBornTerritory = 2
	citizenBornAbroad    = 3
	citizenNaturalized   = 4
	citizenNonCitizen    = 5
)

// fieldRule describes how one coded survey field becomes an analysis
// variable. Exactly one of the behaviors applies, checked in order:
// sentinel codes, binary 1/2 remap, structural zero for numerics.
type fieldRule struct {
	// sentinels are codes meaning "blank / not in question universe".
	sentinels []float64
	// binary remaps survey 1/2 onto canonical 1/0.
	binary bool
	// structuralZero recodes sentinel hits to 0 instead of missing:
	// not-in-universe on an income component means "none", not unknown.
	structuralZero bool
}

// fieldRules is the per-field recode table. Fields absent from the table are
// carried through unchanged.
var fieldRules = map[string]fieldRule{
	VarRace:             {sentinels: []float64{0, -1}},
	VarEducation:        {sentinels: []float64{0, -1}},
	VarCitizenship:      {sentinels: []float64{0, -1}},
	VarHispanicOrigin:   {sentinels: []float64{0, -1}},
	VarOccupation:       {sentinels: []float64{0, -1}},
	VarIndustry:         {sentinels: []float64{0, -1}},
	VarClassOfWorker:    {sentinels: []float64{0, -1}},
	VarUnitsInStructure: {sentinels: []float64{0, -1}},
	VarReasonForMove:    {sentinels: []float64{0, -1}},
	VarHealthStatus:     {sentinels: []float64{0, -1}},
	VarPremiumPaid:      {sentinels: []float64{0, -1}},
	VarState:            {sentinels: []float64{0, -1}},
	VarSex:              {binary: true},
	VarMortgage:         {binary: true},
	VarEmployerIns:      {binary: true},
	// Income components: not-in-universe is semantically "no such income".
	// Recoding to 0 rather than missing is a deliberate modeling choice (it
	// keeps structural non-applicability out of the missing mass, at the cost
	// of biasing magnitude-sensitive models toward zero).
	VarWageIncome:     {sentinels: []float64{-1}, structuralZero: true},
	VarSelfEmpIncome:  {sentinels: []float64{-1}, structuralZero: true},
	VarInterestIncome: {sentinels: []float64{-1}, structuralZero: true},
}

// Normalize maps one raw coded record onto a normalized Record. It is a pure
// transform: the input is not mutated and no state is carried between calls.
// An unrecognized code for a field with a fixed code set becomes missing, not
// an error; a malformed field must not fail a full run.
func Normalize(raw RawRecord) Record {
	rec := Record{
		Year:        raw.Year,
		HouseholdID: raw.HouseholdID,
		PersonID:    raw.PersonID,
		Weight:      raw.Weight,
		Fields:      make(map[string]float64, len(raw.Codes)+2),
	}

	for name, code := range raw.Codes {
		rec.Fields[name] = normalizeField(name, code)
	}

	rec.Fields[VarEmployed] = deriveEmployed(raw.Codes[VarEmploymentStatus])
	if code, ok := raw.Codes[VarCitizenship]; ok {
		rec.Fields[VarImmigrant] = deriveImmigrant(code)
	} else {
		rec.Fields[VarImmigrant] = Missing
	}

	return rec
}

// NormalizeAll normalizes a batch of raw records, preserving order.
func NormalizeAll(raws []RawRecord) []Record {
	out := make([]Record, len(raws))
	for i := range raws {
		out[i] = Normalize(raws[i])
	}
	return out
}

func normalizeField(name string, code float64) float64 {
	rule, ok := fieldRules[name]
	if !ok {
		return code
	}

	for _, s := range rule.sentinels {
		if code == s {
			if rule.structuralZero {
				return 0
			}
			return Missing
		}
	}

	if rule.binary {
		switch code {
		case 1:
			return 1
		case 2, 0:
			// 0 is already canonical; remapping twice must be a no-op.
			return 0
		default:
			return Missing
		}
	}

	return code
}

// deriveEmployed maps the ternary labor-force taxonomy onto a binary label.
// Respondents outside the labor force have no defined label.
func deriveEmployed(status float64) float64 {
	switch status {
	case statusEmployedAtWork, statusEmployedAbsent:
		return 1
	case statusUnemployedLayoff, statusUnemployedSearch:
		return 0
	default:
		return Missing
	}
}

// deriveImmigrant maps citizenship codes onto the immigrant flag. Codes
// outside the recognized taxonomy are undefined rather than guessed.
func deriveImmigrant(code float64) float64 {
	switch code {
	case citizenNative, citizenBornTerritory, citizenBornAbroad:
		return 0
	case citizenNaturalized, citizenNonCitizen:
		return 1
	default:
		return Missing
	}
}
