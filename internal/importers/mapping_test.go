package importers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"Registration Number":   "registration number",
		"  REG_NO. ":            "reg no",
		"P/T Cause-No":          "p t cause no",
		"Date of\tDeath":        "date of death",
		"Société":               "societe",
		"Folio No.(if any)":     "folio no if any",
		"registration_date":     "registration date",
		"":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHeader(in), "input %q", in)
	}
}

func TestWordOverlap(t *testing.T) {
	assert.InDelta(t, 1.0, wordOverlap("name of deceased", "deceased name"), 0.001)
	assert.InDelta(t, 0.0, wordOverlap("of the", "the of"), 0.001)
	assert.Less(t, wordOverlap("date of death", "date of advertisement"), FuzzyThreshold)
}

func TestMapper_Bind(t *testing.T) {
	mapper := NewMapper(testConfig().Fields)

	t.Run("exact aliases are case and punctuation tolerant", func(t *testing.T) {
		b := mapper.Bind([]string{"REG. NO", "Registered Name", "Date_Registered"})

		assert.Equal(t, 3, b.Mapped())
		col, ok := b.Column("registration_number")
		require.True(t, ok)
		assert.Equal(t, "REG. NO", col)
		assert.True(t, b.Has("society_name"))
		assert.True(t, b.Has("registration_date"))
	})

	t.Run("fuzzy match on reordered words", func(t *testing.T) {
		b := mapper.Bind([]string{"Number Registration", "Society of Name"})

		assert.True(t, b.Has("registration_number"))
		assert.True(t, b.Has("society_name"))
	})

	t.Run("first column wins", func(t *testing.T) {
		b := mapper.Bind([]string{"society name", "registered name"})

		col, _ := b.Column("society_name")
		assert.Equal(t, "society name", col)
		assert.Equal(t, []string{"registered name"}, b.Unmapped())
	})

	t.Run("unknown columns are ignored", func(t *testing.T) {
		b := mapper.Bind([]string{"society name", "favourite colour"})

		assert.Equal(t, 1, b.Mapped())
		assert.Equal(t, []string{"favourite colour"}, b.Unmapped())
	})
}

func TestMapper_Map(t *testing.T) {
	mapper := NewMapper(testConfig().Fields)
	b := mapper.Bind([]string{"registration number", "society name", "registration date", "members", "status"})

	t.Run("converts typed fields", func(t *testing.T) {
		rec := mapper.Map(b, Row{Line: 7, Cells: []string{" SOC-1 ", "Upendo   Women  Group", "6/11/2000", "1,200", "active"}})

		assert.Equal(t, 7, rec.Row)
		assert.Equal(t, "SOC-1", rec.Get("registration_number").Str)
		assert.Equal(t, "Upendo Women Group", rec.Get("society_name").Str)
		assert.Equal(t, KindDate, rec.Get("registration_date").Kind)
		assert.Equal(t, time.Date(2000, 11, 6, 0, 0, 0, 0, time.UTC), rec.Get("registration_date").Date)
		assert.Equal(t, int64(1200), rec.Get("member_count").Int)
		assert.Equal(t, "ACTIVE", rec.Get("registration_status").Str)
		assert.Empty(t, rec.Warnings)
	})

	t.Run("malformed cells are soft failures", func(t *testing.T) {
		rec := mapper.Map(b, Row{Line: 3, Cells: []string{"SOC-2", "Name", "25/6/", "many", "dormant"}})

		date := rec.Get("registration_date")
		assert.True(t, date.IsNull())
		assert.True(t, date.Invalid)
		assert.Equal(t, "25/6/", date.Raw)
		assert.True(t, rec.Get("member_count").Invalid)
		assert.True(t, rec.Get("registration_status").Invalid)
		assert.Len(t, rec.Warnings, 3)
	})

	t.Run("blank cells use default", func(t *testing.T) {
		rec := mapper.Map(b, Row{Line: 4, Cells: []string{"SOC-3", "Name", "", "", ""}})

		assert.Equal(t, "ACTIVE", rec.Get("registration_status").Str)
		assert.True(t, rec.Get("registration_date").IsNull())
		assert.False(t, rec.Get("registration_date").Invalid)
	})

	t.Run("unbound fields are null", func(t *testing.T) {
		partial := mapper.Bind([]string{"society name"})
		rec := mapper.Map(partial, Row{Line: 2, Cells: []string{"Only Name"}})

		assert.True(t, rec.Get("registration_number").IsNull())
		assert.Equal(t, "Only Name", rec.Get("society_name").Str)
	})

	t.Run("deterministic", func(t *testing.T) {
		row := Row{Line: 5, Cells: []string{"SOC-4", "Name", "2001-02-03", "12.0", "DEREGISTERED"}}
		assert.Equal(t, mapper.Map(b, row), mapper.Map(b, row))
	})
}

func TestFieldSpec_EnumAliases(t *testing.T) {
	f := FieldSpec{
		Target:      "gender",
		Transform:   UpperEnum,
		Enum:        []string{"MALE", "FEMALE"},
		EnumAliases: map[string]string{"M": "MALE", "F": "FEMALE"},
	}

	v, warning := f.convert("f")
	assert.Equal(t, "FEMALE", v.Str)
	assert.Empty(t, warning)

	v, warning = f.convert("X")
	assert.True(t, v.Invalid)
	assert.Contains(t, warning, "gender")
}

func TestParseInt(t *testing.T) {
	tests := map[string]int64{"42": 42, "1,200": 1200, "12.0": 12, "007": 7, "0": 0, "-3": -3}
	for in, want := range tests {
		got, err := parseInt(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseInt("12.5")
	assert.Error(t, err)
	_, err = parseInt("abc")
	assert.Error(t, err)
}
