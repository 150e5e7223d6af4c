package asec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawWith(codes map[string]float64) RawRecord {
	return RawRecord{
		Year:        2021,
		HouseholdID: "h1",
		PersonID:    "p1",
		Weight:      1250.5,
		Codes:       codes,
	}
}

func TestNormalize(t *testing.T) {
	t.Run("sentinel codes become missing", func(t *testing.T) {
		rec := Normalize(rawWith(map[string]float64{
			VarRace:          0,
			VarOccupation:    -1,
			VarHispanicOrigin: 3,
		}))

		assert.True(t, IsMissing(rec.Field(VarRace)))
		assert.True(t, IsMissing(rec.Field(VarOccupation)))
		assert.Equal(t, 3.0, rec.Field(VarHispanicOrigin))
	})

	t.Run("binary codes remap to 0/1", func(t *testing.T) {
		rec := Normalize(rawWith(map[string]float64{
			VarSex:         2,
			VarMortgage:    1,
			VarEmployerIns: 9, // out of code set
		}))

		assert.Equal(t, 0.0, rec.Field(VarSex))
		assert.Equal(t, 1.0, rec.Field(VarMortgage))
		assert.True(t, IsMissing(rec.Field(VarEmployerIns)))
	})

	t.Run("income not-in-universe recodes to structural zero", func(t *testing.T) {
		rec := Normalize(rawWith(map[string]float64{
			VarWageIncome:    -1,
			VarSelfEmpIncome: 4200,
		}))

		assert.Equal(t, 0.0, rec.Field(VarWageIncome))
		assert.Equal(t, 4200.0, rec.Field(VarSelfEmpIncome))
	})

	t.Run("employed label derivation", func(t *testing.T) {
		cases := []struct {
			status float64
			want   float64
		}{
			{1, 1}, {2, 1}, {3, 0}, {4, 0},
			{5, Missing}, {6, Missing}, {7, Missing}, {0, Missing},
		}
		for _, c := range cases {
			rec := Normalize(rawWith(map[string]float64{VarEmploymentStatus: c.status}))
			if IsMissing(c.want) {
				assert.True(t, IsMissing(rec.Employed()), "status %v", c.status)
			} else {
				assert.Equal(t, c.want, rec.Employed(), "status %v", c.status)
			}
		}
	})

	t.Run("immigrant flag derivation", func(t *testing.T) {
		for code, want := range map[float64]float64{1: 0, 2: 0, 3: 0, 4: 1, 5: 1} {
			rec := Normalize(rawWith(map[string]float64{VarCitizenship: code}))
			assert.Equal(t, want, rec.Immigrant(), "citizenship %v", code)
		}

		rec := Normalize(rawWith(map[string]float64{VarCitizenship: 6}))
		assert.True(t, IsMissing(rec.Immigrant()))

		rec = Normalize(rawWith(map[string]float64{}))
		assert.True(t, IsMissing(rec.Immigrant()))
	})

	t.Run("no sentinel survives as a live numeric value", func(t *testing.T) {
		rec := Normalize(rawWith(map[string]float64{
			VarRace: 0, VarEducation: -1, VarState: 0, VarHealthStatus: 0,
		}))
		for name, v := range rec.Fields {
			if name == VarWageIncome || name == VarSelfEmpIncome || name == VarInterestIncome {
				continue
			}
			assert.False(t, v == 0 || v == -1, "field %s kept sentinel %v", name, v)
		}
	})

	t.Run("normalization is idempotent per field", func(t *testing.T) {
		codes := map[string]float64{
			VarRace: 4, VarSex: 2, VarMortgage: 1, VarWageIncome: -1,
			VarOccupation: 0, VarEducation: 12,
		}
		once := Normalize(rawWith(codes))

		again := Normalize(RawRecord{
			Year: once.Year, HouseholdID: once.HouseholdID,
			PersonID: once.PersonID, Weight: once.Weight,
			Codes: once.Fields,
		})

		for name, v := range once.Fields {
			if name == VarEmployed || name == VarImmigrant || name == VarEmploymentStatus {
				continue
			}
			if math.IsNaN(v) {
				assert.True(t, IsMissing(again.Field(name)), "field %s", name)
			} else {
				assert.Equal(t, v, again.Field(name), "field %s", name)
			}
		}
	})

	t.Run("input record is not mutated", func(t *testing.T) {
		codes := map[string]float64{VarSex: 2, VarRace: 0}
		raw := rawWith(codes)
		Normalize(raw)

		require.Equal(t, 2.0, codes[VarSex])
		require.Equal(t, 0.0, codes[VarRace])
	})
}

func TestNormalizeAll(t *testing.T) {
	raws := []RawRecord{
		rawWith(map[string]float64{VarEmploymentStatus: 1}),
		rawWith(map[string]float64{VarEmploymentStatus: 4}),
	}
	recs := NormalizeAll(raws)

	require.Len(t, recs, 2)
	assert.Equal(t, 1.0, recs[0].Employed())
	assert.Equal(t, 0.0, recs[1].Employed())
}
