package importers

// Level is how strongly a field is required.
type Level int

const (
	Optional Level = iota
	Required
	// HardRequired fields deduct like Required ones and additionally cause
	// the row to be skipped when missing.
	HardRequired
)

// QualityRule assigns a deduction weight to a field.
type QualityRule struct {
	Field  string
	Weight int
	Level  Level
}

// Scorer computes completeness scores from a fixed rule table.
type Scorer struct {
	rules []QualityRule
}

func NewScorer(rules []QualityRule) *Scorer {
	return &Scorer{rules: rules}
}

// Score returns 100 minus the weight of every required field that is null
// or invalid, clamped to [0, 100]. Missing fields are listed in rule order.
func (s *Scorer) Score(rec Record) Assessment {
	a := Assessment{Score: 100, MissingFields: []string{}}
	for _, rule := range s.rules {
		if rule.Level == Optional {
			continue
		}
		v := rec.Get(rule.Field)
		if !v.IsNull() && !v.Invalid {
			continue
		}
		a.Score -= rule.Weight
		a.MissingFields = append(a.MissingFields, rule.Field)
		if rule.Level == HardRequired {
			a.HardMissing = append(a.HardMissing, rule.Field)
		}
	}

	if a.Score < 0 {
		a.Score = 0
	}
	if a.Score > 100 {
		a.Score = 100
	}
	return a
}

// HardRequired returns the fields whose absence skips a row.
func (s *Scorer) HardRequired() []string {
	var fields []string
	for _, rule := range s.rules {
		if rule.Level == HardRequired {
			fields = append(fields, rule.Field)
		}
	}
	return fields
}
