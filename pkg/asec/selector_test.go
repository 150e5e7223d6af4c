package asec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person(year int, age, state, classOfWorker, citizenship, status float64) Record {
	return Normalize(RawRecord{
		Year: year,
		Codes: map[string]float64{
			VarAge:              age,
			VarState:            state,
			VarClassOfWorker:    classOfWorker,
			VarCitizenship:      citizenship,
			VarEmploymentStatus: status,
		},
	})
}

func TestSelect(t *testing.T) {
	records := []Record{
		person(2021, 35, 6, 1, 1, 1),  // in population
		person(2021, 17, 6, 1, 1, 1),  // under age
		person(2021, 70, 6, 1, 1, 1),  // over age
		person(2021, 40, 6, 8, 1, 1),  // armed forces
		person(2021, 40, 11, 1, 1, 1), // DC, outside 50 states
		person(2021, 40, 99, 1, 1, 1), // aggregate geography code
		person(2021, 65, 48, 6, 5, 4), // in population, boundary age
	}

	selected := Select(records)
	require.Len(t, selected, 2)
	assert.Equal(t, 35.0, selected[0].Field(VarAge))
	assert.Equal(t, 65.0, selected[1].Field(VarAge))

	t.Run("idempotent", func(t *testing.T) {
		again := Select(selected)
		assert.Equal(t, selected, again)
	})

	t.Run("order independent", func(t *testing.T) {
		reversed := make([]Record, len(records))
		for i, r := range records {
			reversed[len(records)-1-i] = r
		}
		fromReversed := Select(reversed)
		require.Len(t, fromReversed, 2)
		assert.Equal(t, 65.0, fromReversed[0].Field(VarAge))
	})
}

func TestPartitions(t *testing.T) {
	records := []Record{
		person(2021, 30, 6, 1, 1, 1),
		person(2022, 31, 6, 1, 4, 3),
		person(2022, 32, 6, 1, 5, 5),
		person(2021, 33, 6, 1, 2, 2),
	}

	t.Run("by year", func(t *testing.T) {
		byYear := ByYear(records)
		require.Len(t, byYear[2021], 2)
		require.Len(t, byYear[2022], 2)
		assert.Equal(t, byYear[2022], Year(records, 2022))
	})

	t.Run("immigrant subpopulation", func(t *testing.T) {
		imm := Immigrants(records)
		require.Len(t, imm, 2)
		assert.Equal(t, 31.0, imm[0].Field(VarAge))
	})

	t.Run("labeled records only", func(t *testing.T) {
		labeled := Labeled(records)
		require.Len(t, labeled, 3) // status 5 is out of the labor force
		for _, r := range labeled {
			assert.False(t, IsMissing(r.Employed()))
		}
	})
}
