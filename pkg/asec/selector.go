package asec

// Analysis population bounds.
const (
	MinAge = 18
	MaxAge = 65
)

// classOfWorkerArmedForces is the class-of-worker code for armed-forces
// respondents, who are outside the analysis population.
const classOfWorkerArmedForces = 8

// stateFIPS is the set of valid 50-state FIPS codes. Multi-state and
// aggregate geography codes fall outside it and are excluded.
var stateFIPS = map[float64]bool{}

func init() {
	// State FIPS runs 1-56 with unassigned gaps at 3, 7, 14, 43, 52.
	// 11 is the District of Columbia, outside the 50-state population.
	skip := map[float64]bool{3: true, 7: true, 11: true, 14: true, 43: true, 52: true}
	for code := 1.0; code <= 56; code++ {
		if !skip[code] {
			stateFIPS[code] = true
		}
	}
}

// InPopulation reports whether a normalized record belongs to the analysis
// population: working-age, civilian, living in one of the 50 states.
func InPopulation(r Record) bool {
	age := r.Field(VarAge)
	if IsMissing(age) || age < MinAge || age > MaxAge {
		return false
	}
	if r.Field(VarClassOfWorker) == classOfWorkerArmedForces {
		return false
	}
	state := r.Field(VarState)
	if IsMissing(state) || !stateFIPS[state] {
		return false
	}
	return true
}

// Select filters records to the analysis population. Filtering is
// order-independent and idempotent: reapplying it to an already-filtered
// set is a no-op.
func Select(records []Record) []Record {
	return Where(records, InPopulation)
}

// Where returns the records satisfying pred, preserving input order.
func Where(records []Record, pred func(Record) bool) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// ByYear partitions records by survey year.
func ByYear(records []Record) map[int][]Record {
	out := make(map[int][]Record)
	for _, r := range records {
		out[r.Year] = append(out[r.Year], r)
	}
	return out
}

// Year returns the records for one survey year.
func Year(records []Record, year int) []Record {
	return Where(records, func(r Record) bool { return r.Year == year })
}

// Immigrants returns the foreign-born subpopulation.
func Immigrants(records []Record) []Record {
	return Where(records, func(r Record) bool { return r.Immigrant() == 1 })
}

// Labeled returns records with a defined employment label; only these
// participate in model training and evaluation.
func Labeled(records []Record) []Record {
	return Where(records, func(r Record) bool { return !IsMissing(r.Employed()) })
}
