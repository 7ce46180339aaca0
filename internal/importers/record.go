package importers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical textual form of date values.
const DateLayout = "2006-01-02"

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDate:
		return "date"
	default:
		return "null"
	}
}

// Value is a single normalized cell.
//
// A cell that was present in the source but could not be converted to the
// target type is Null with Invalid set; Raw keeps the original text so the
// problem can be reported.
type Value struct {
	Kind    Kind
	Str     string
	Int     int64
	Date    time.Time
	Raw     string
	Invalid bool
}

// Null returns an empty value.
func Null() Value { return Value{Kind: KindNull} }

// StringValue wraps a non-empty string.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s, Raw: s} }

// IntValue wraps an integer.
func IntValue(n int64) Value { return Value{Kind: KindInt, Int: n, Raw: strconv.FormatInt(n, 10)} }

// DateValue wraps a calendar date, dropping any time-of-day component.
func DateValue(t time.Time) Value {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Value{Kind: KindDate, Date: d, Raw: d.Format(DateLayout)}
}

// InvalidValue records a cell that was present but malformed.
func InvalidValue(raw string) Value { return Value{Kind: KindNull, Raw: raw, Invalid: true} }

// IsNull reports whether the value carries no usable data.
func (v Value) IsNull() bool {
	return v.Kind == KindNull || (v.Kind == KindString && strings.TrimSpace(v.Str) == "")
}

// Canonical returns the comparison form used for natural keys and
// duplicate checks. Strings compare case-insensitively.
func (v Value) Canonical() string {
	switch v.Kind {
	case KindString:
		return strings.ToLower(strings.Join(strings.Fields(v.Str), " "))
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindDate:
		return v.Date.Format(DateLayout)
	default:
		return ""
	}
}

// keyText is the exact form compared by store lookups. Strings keep their
// case so the in-run seen set agrees with FindByKey.
func (v Value) keyText() string {
	if v.Kind == KindString {
		return v.Str
	}
	return v.Canonical()
}

// Any returns the value in the form handed to the store.
func (v Value) Any() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return v.Int
	case KindDate:
		return v.Date
	default:
		return nil
	}
}

func (v Value) String() string {
	if v.Invalid {
		return fmt.Sprintf("invalid(%q)", v.Raw)
	}
	return v.Canonical()
}

// Assessment is the quality verdict attached to a record.
type Assessment struct {
	Score         int      `json:"score"`
	MissingFields []string `json:"missing_fields"`
	HardMissing   []string `json:"hard_missing,omitempty"`
}

// Record is one normalized source row.
type Record struct {
	Row      int
	Fields   map[string]Value
	Warnings []string
	Quality  Assessment
}

// Get returns the value of a field, Null when absent.
func (r Record) Get(field string) Value {
	if v, ok := r.Fields[field]; ok {
		return v
	}
	return Null()
}

// Metadata columns written alongside every imported record.
const (
	ColumnQualityScore   = "data_quality_score"
	ColumnMissingFields  = "missing_fields"
	ColumnImportWarnings = "import_warnings"
	ColumnImportBatchID  = "import_batch_id"
	ColumnFileSource     = "file_source"
)

// Columns renders the record as a column map for the store. Every target
// field in fields is present, nil when null, so batches share one shape.
func (r Record) Columns(fields []string, batchID, fileSource string) map[string]any {
	cols := make(map[string]any, len(fields)+5)
	for _, f := range fields {
		cols[f] = r.Get(f).Any()
	}

	cols[ColumnQualityScore] = r.Quality.Score
	cols[ColumnMissingFields] = jsonList(r.Quality.MissingFields)
	cols[ColumnImportWarnings] = jsonList(r.Warnings)
	cols[ColumnImportBatchID] = batchID
	cols[ColumnFileSource] = fileSource
	return cols
}

func jsonList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Key identifies the real-world entity behind a record.
type Key struct {
	Columns []string
	Values  []any
	text    string
}

// String is the form used by the in-run seen set. It compares exactly like
// the stored columns do.
func (k Key) String() string { return k.text }

// Conditions returns the key as a column→value map for store lookups.
func (k Key) Conditions() map[string]any {
	m := make(map[string]any, len(k.Columns))
	for i, c := range k.Columns {
		m[c] = k.Values[i]
	}
	return m
}

// KeyFunc extracts the natural key of a record. ok is false when the key
// cannot be derived, in which case no duplicate detection happens.
type KeyFunc func(Record) (Key, bool)

// FieldsKey builds a KeyFunc from fields that must all be non-null.
func FieldsKey(fields ...string) KeyFunc {
	return func(r Record) (Key, bool) {
		return buildKey(r, fields, nil)
	}
}

// FieldsKeyWithOptional is FieldsKey where the optional fields may be null;
// a null optional field matches stored rows where that column IS NULL.
func FieldsKeyWithOptional(required []string, optional ...string) KeyFunc {
	return func(r Record) (Key, bool) {
		return buildKey(r, required, optional)
	}
}

func buildKey(r Record, required, optional []string) (Key, bool) {
	k := Key{}
	parts := make([]string, 0, len(required)+len(optional))
	for _, f := range required {
		v := r.Get(f)
		if v.IsNull() {
			return Key{}, false
		}
		k.Columns = append(k.Columns, f)
		k.Values = append(k.Values, v.Any())
		parts = append(parts, f+"="+v.keyText())
	}
	for _, f := range optional {
		v := r.Get(f)
		k.Columns = append(k.Columns, f)
		k.Values = append(k.Values, v.Any())
		parts = append(parts, f+"="+v.keyText())
	}
	k.text = strings.Join(parts, "|")
	return k, len(required) > 0
}
