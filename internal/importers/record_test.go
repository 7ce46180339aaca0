package importers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestValue_Canonical(t *testing.T) {
	assert.Equal(t, "acme society", StringValue("  ACME \t Society ").Canonical())
	assert.Equal(t, "42", IntValue(42).Canonical())
	assert.Equal(t, "2022-09-01", DateValue(time.Date(2022, 9, 1, 15, 4, 0, 0, time.FixedZone("EAT", 3*3600))).Canonical())
	assert.Equal(t, "", Null().Canonical())
	assert.Equal(t, "", InvalidValue("bad").Canonical())
	assert.True(t, InvalidValue("bad").IsNull())
}

func TestRecord_Columns(t *testing.T) {
	rec := Record{
		Row: 2,
		Fields: map[string]Value{
			"registration_number": StringValue("SOC-1"),
			"member_count":        IntValue(12),
		},
		Warnings: []string{"registration_date: invalid date \"x\""},
		Quality:  Assessment{Score: 70, MissingFields: []string{"registration_date"}},
	}

	cols := rec.Columns([]string{"registration_number", "member_count", "registration_date"}, "batch-1", "file.csv")

	assert.Equal(t, "SOC-1", cols["registration_number"])
	assert.Equal(t, int64(12), cols["member_count"])
	assert.Contains(t, cols, "registration_date")
	assert.Nil(t, cols["registration_date"])
	assert.Equal(t, 70, cols[ColumnQualityScore])
	assert.Equal(t, `["registration_date"]`, cols[ColumnMissingFields])
	assert.Equal(t, `["registration_date: invalid date \"x\""]`, cols[ColumnImportWarnings])
	assert.Equal(t, "batch-1", cols[ColumnImportBatchID])
	assert.Equal(t, "file.csv", cols[ColumnFileSource])
}

func TestFieldsKey(t *testing.T) {
	rec := Record{Fields: map[string]Value{
		"pt_cause_no": StringValue("PT 12/2019"),
		"case_year":   IntValue(2019),
	}}

	t.Run("all fields present", func(t *testing.T) {
		key, ok := FieldsKey("pt_cause_no", "case_year")(rec)
		require.True(t, ok)
		assert.Equal(t, "pt_cause_no=PT 12/2019|case_year=2019", key.String())
		assert.Equal(t, map[string]any{"pt_cause_no": "PT 12/2019", "case_year": int64(2019)}, key.Conditions())
	})

	t.Run("missing field gives no key", func(t *testing.T) {
		_, ok := FieldsKey("pt_cause_no", "folio_no")(rec)
		assert.False(t, ok)
	})

	t.Run("optional field may be null", func(t *testing.T) {
		key, ok := FieldsKeyWithOptional([]string{"pt_cause_no"}, "folio_no")(rec)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"pt_cause_no": "PT 12/2019", "folio_no": nil}, key.Conditions())
	})

	t.Run("key text is case sensitive like the store", func(t *testing.T) {
		same := Record{Fields: map[string]Value{"pt_cause_no": StringValue("PT 12/2019")}}
		other := Record{Fields: map[string]Value{"pt_cause_no": StringValue("pt 12/2019")}}
		a, _ := FieldsKey("pt_cause_no")(rec)
		b, _ := FieldsKey("pt_cause_no")(same)
		c, _ := FieldsKey("pt_cause_no")(other)
		assert.Equal(t, a.String(), b.String())
		assert.NotEqual(t, a.String(), c.String())
	})
}
