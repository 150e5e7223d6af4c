package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbrown5x/Final-Project/pkg/asec"
)

func labeledRecord(fields map[string]float64) asec.Record {
	f := map[string]float64{asec.VarEmployed: 1}
	for k, v := range fields {
		f[k] = v
	}
	return asec.Record{Year: 2021, HouseholdID: "h", PersonID: "p", Weight: 1, Fields: f}
}

func testSpec() Spec {
	return Spec{
		Categorical: []string{asec.VarRace, asec.VarCitizenship},
		Numeric:     []string{asec.VarAge},
		Manifest:    Manifest{asec.VarRace: 25, asec.VarCitizenship: 4},
	}
}

func TestEncode(t *testing.T) {
	records := []asec.Record{
		labeledRecord(map[string]float64{asec.VarRace: 1, asec.VarCitizenship: 2, asec.VarAge: 30}),
		labeledRecord(map[string]float64{asec.VarRace: 4, asec.VarCitizenship: 1, asec.VarAge: 42}),
		labeledRecord(map[string]float64{asec.VarRace: asec.Missing, asec.VarCitizenship: 2, asec.VarAge: 55}),
	}

	t.Run("plain mode emits 0/1 indicators", func(t *testing.T) {
		m, err := Encode(records, testSpec(), Plain)
		require.NoError(t, err)

		assert.Equal(t, []string{"race_1", "race_4", "citizenship_1", "citizenship_2", "age"}, m.Names)
		assert.Equal(t, []float64{1, 0, 0, 1, 30}, m.Rows[0])
		assert.Equal(t, []float64{0, 1, 1, 0, 42}, m.Rows[1])
	})

	t.Run("weighted indicators equal 1/sqrt(manifest count)", func(t *testing.T) {
		m, err := Encode(records, testSpec(), VarianceWeighted)
		require.NoError(t, err)

		wantRace := 1 / math.Sqrt(25)
		wantCit := 1 / math.Sqrt(4)
		assert.InDelta(t, wantRace, m.Rows[0][0], 1e-12)
		assert.Equal(t, 0.0, m.Rows[0][1])
		assert.InDelta(t, wantCit, m.Rows[0][3], 1e-12)

		// One active category per variable: the squared norm of the block is
		// 1/n regardless of which category is active.
		for _, row := range m.Rows[:2] {
			norm := row[0]*row[0] + row[1]*row[1]
			assert.InDelta(t, 1.0/25, norm, 1e-12)
		}
	})

	t.Run("true missing stays missing in both modes", func(t *testing.T) {
		for _, mode := range []Mode{Plain, VarianceWeighted} {
			m, err := Encode(records, testSpec(), mode)
			require.NoError(t, err)
			assert.True(t, math.IsNaN(m.Rows[2][0]), "race block should be missing")
			assert.True(t, math.IsNaN(m.Rows[2][1]))
			assert.False(t, math.IsNaN(m.Rows[2][3]), "citizenship is present")
		}
	})

	t.Run("labels and weights carried through", func(t *testing.T) {
		m, err := Encode(records, testSpec(), Plain)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 1, 1}, m.Labels)
		assert.Equal(t, []float64{1, 1, 1}, m.Weights)
	})
}

func TestSpecValidate(t *testing.T) {
	t.Run("variable missing from manifest", func(t *testing.T) {
		spec := testSpec()
		spec.Categorical = append(spec.Categorical, asec.VarOccupation)

		err := spec.Validate([]asec.Record{labeledRecord(map[string]float64{
			asec.VarRace: 1, asec.VarCitizenship: 1, asec.VarAge: 30, asec.VarOccupation: 10,
		})})
		var integrity *DataIntegrityError
		require.ErrorAs(t, err, &integrity)
		assert.Equal(t, asec.VarOccupation, integrity.Variable)
	})

	t.Run("field absent from a record", func(t *testing.T) {
		rec := labeledRecord(map[string]float64{asec.VarRace: 1, asec.VarAge: 30})
		err := testSpec().Validate([]asec.Record{rec})

		var integrity *DataIntegrityError
		require.ErrorAs(t, err, &integrity)
		assert.Equal(t, asec.VarCitizenship, integrity.Variable)
		assert.Contains(t, integrity.Record, "2021")
	})

	t.Run("more codes than the manifest admits", func(t *testing.T) {
		spec := testSpec()
		spec.Manifest[asec.VarCitizenship] = 1

		records := []asec.Record{
			labeledRecord(map[string]float64{asec.VarRace: 1, asec.VarCitizenship: 1, asec.VarAge: 1}),
			labeledRecord(map[string]float64{asec.VarRace: 1, asec.VarCitizenship: 2, asec.VarAge: 2}),
		}
		err := spec.Validate(records)
		var integrity *DataIntegrityError
		require.ErrorAs(t, err, &integrity)
		assert.Equal(t, asec.VarCitizenship, integrity.Variable)
	})

	t.Run("unlabeled record rejected by Encode", func(t *testing.T) {
		rec := labeledRecord(map[string]float64{asec.VarRace: 1, asec.VarCitizenship: 1, asec.VarAge: 30})
		rec.Fields[asec.VarEmployed] = asec.Missing

		_, err := Encode([]asec.Record{rec}, testSpec(), Plain)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "employment label")
	})
}

func TestAlign(t *testing.T) {
	records := []asec.Record{
		labeledRecord(map[string]float64{asec.VarRace: 1, asec.VarCitizenship: 2, asec.VarAge: 30}),
	}
	m, err := Encode(records, testSpec(), Plain)
	require.NoError(t, err)

	t.Run("reorders and drops surplus columns", func(t *testing.T) {
		aligned, err := m.Align([]string{"age", "race_1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"age", "race_1"}, aligned.Names)
		assert.Equal(t, []float64{30, 1}, aligned.Rows[0])
	})

	t.Run("missing feature is a schema mismatch", func(t *testing.T) {
		_, err := m.Align([]string{"race_1", "occupation_12"})
		var mismatch *SchemaMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "occupation_12", mismatch.Feature)
	})
}
