package importers

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cast"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Transform selects how a raw cell becomes a Value.
type Transform int

const (
	Text Transform = iota
	Date
	Int
	UpperEnum
)

// FieldSpec maps source headers onto one target field.
type FieldSpec struct {
	Target    string
	Aliases   []string
	Transform Transform
	// Default is used when the cell is blank or its column is absent.
	Default string
	// Enum restricts UpperEnum values; EnumAliases rewrites shorthands
	// (for example "F" to "FEMALE") before the check.
	Enum        []string
	EnumAliases map[string]string
}

// FuzzyThreshold is the minimum word-overlap score for a header to match
// an alias it does not equal.
const FuzzyThreshold = 0.7

var stopWords = map[string]bool{
	"of": true, "the": true, "and": true, "or": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "with": true, "by": true,
}

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// NormalizeHeader folds a header for comparison: accents removed,
// lower-cased, punctuation turned into spaces, whitespace collapsed.
func NormalizeHeader(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, folded)
	return strings.Join(strings.Fields(folded), " ")
}

func significantWords(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		if !stopWords[w] {
			words[w] = true
		}
	}
	return words
}

// wordOverlap is the Jaccard index of the significant words of two
// normalized headers.
func wordOverlap(a, b string) float64 {
	wa, wb := significantWords(a), significantWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if wb[w] {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

// Mapper turns header-indexed rows into records.
type Mapper struct {
	fields []FieldSpec
}

func NewMapper(fields []FieldSpec) *Mapper {
	return &Mapper{fields: fields}
}

// Binding is the resolved column position of each target field.
type Binding struct {
	columns  map[string]int
	headers  []string
	unmapped []string
}

// Has reports whether a column for target was found.
func (b *Binding) Has(target string) bool {
	_, ok := b.columns[target]
	return ok
}

// Mapped returns the number of bound target fields.
func (b *Binding) Mapped() int { return len(b.columns) }

// Column returns the header bound to target.
func (b *Binding) Column(target string) (string, bool) {
	idx, ok := b.columns[target]
	if !ok {
		return "", false
	}
	return b.headers[idx], true
}

// Unmapped lists headers that matched no target, in file order.
func (b *Binding) Unmapped() []string { return b.unmapped }

// Bind resolves header columns. Exact alias matches are bound first, then
// remaining headers are matched by word overlap. A target binds to at most
// one column and the leftmost candidate wins.
func (m *Mapper) Bind(header []string) *Binding {
	b := &Binding{columns: make(map[string]int), headers: header}
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = NormalizeHeader(h)
	}

	exact := make(map[string]string)
	for _, f := range m.fields {
		for _, name := range candidates(f) {
			if _, taken := exact[name]; !taken {
				exact[name] = f.Target
			}
		}
	}

	used := make(map[int]bool)
	for i, h := range normalized {
		target, ok := exact[h]
		if !ok || b.Has(target) {
			continue
		}
		b.columns[target] = i
		used[i] = true
	}

	for i, h := range normalized {
		if used[i] || h == "" {
			continue
		}
		best, bestScore := "", 0.0
		for _, f := range m.fields {
			if b.Has(f.Target) {
				continue
			}
			for _, name := range candidates(f) {
				if score := wordOverlap(h, name); score > bestScore {
					best, bestScore = f.Target, score
				}
			}
		}
		if bestScore >= FuzzyThreshold {
			b.columns[best] = i
			used[i] = true
		}
	}

	for i, h := range header {
		if !used[i] {
			b.unmapped = append(b.unmapped, h)
		}
	}
	return b
}

func candidates(f FieldSpec) []string {
	names := make([]string, 0, len(f.Aliases)+1)
	names = append(names, NormalizeHeader(f.Target))
	for _, a := range f.Aliases {
		names = append(names, NormalizeHeader(a))
	}
	return names
}

// Map converts a row into a record. Malformed cells become invalid nulls
// with a warning; Map never fails.
func (m *Mapper) Map(b *Binding, row Row) Record {
	rec := Record{Row: row.Line, Fields: make(map[string]Value, len(m.fields))}
	for _, f := range m.fields {
		raw := ""
		if idx, ok := b.columns[f.Target]; ok && idx < len(row.Cells) {
			raw = row.Cells[idx]
		}
		if strings.TrimSpace(raw) == "" {
			raw = f.Default
		}

		v, warning := f.convert(raw)
		rec.Fields[f.Target] = v
		if warning != "" {
			rec.Warnings = append(rec.Warnings, warning)
		}
	}
	return rec
}

func (f FieldSpec) convert(raw string) (Value, string) {
	text := strings.Join(strings.Fields(raw), " ")
	if text == "" {
		return Null(), ""
	}

	switch f.Transform {
	case Date:
		t, err := ParseDate(text)
		if err != nil {
			return InvalidValue(text), fmt.Sprintf("%s: invalid date %q", f.Target, text)
		}
		return DateValue(t), ""

	case Int:
		n, err := parseInt(text)
		if err != nil {
			return InvalidValue(text), fmt.Sprintf("%s: invalid number %q", f.Target, text)
		}
		return IntValue(n), ""

	case UpperEnum:
		upper := strings.ToUpper(text)
		if alias, ok := f.EnumAliases[upper]; ok {
			upper = alias
		}
		if len(f.Enum) > 0 && !contains(f.Enum, upper) {
			return InvalidValue(text), fmt.Sprintf("%s: unexpected value %q", f.Target, text)
		}
		return StringValue(upper), ""

	default:
		return StringValue(text), ""
	}
}

// parseInt accepts thousands separators and a zero fractional part. Leading
// zeros are stripped so cast does not read the value as octal.
func parseInt(s string) (int64, error) {
	s = strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), " ", "")
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimLeft(s, "0")
	if s == "" || strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	n, err := cast.ToInt64E(s)
	if err != nil {
		return 0, err
	}
	if neg {
		n = -n
	}
	return n, nil
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
