package importers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Verdict classifies a record against previously seen data.
type Verdict int

const (
	New Verdict = iota
	Duplicate
	Conflict
	// Unknown means the store lookup failed; the insert is attempted and
	// the store's uniqueness constraint decides.
	Unknown
)

func (v Verdict) String() string {
	switch v {
	case Duplicate:
		return "duplicate"
	case Conflict:
		return "conflict"
	case Unknown:
		return "unknown"
	default:
		return "new"
	}
}

// Detection is the outcome of a duplicate check.
type Detection struct {
	Verdict     Verdict
	Key         Key
	HasKey      bool
	Differences []string
	// InRun is set when the match is an earlier row of the same run.
	InRun bool
	Err   error
}

// Detector finds records that already exist in the store or earlier in
// the same run. A Detector belongs to exactly one run.
type Detector struct {
	store Store
	table string
	key   KeyFunc
	core  []string
	// seen maps a claimed key to the canonical core fields of its row.
	seen map[string]map[string]string
}

func NewDetector(store Store, table string, key KeyFunc, core []string) *Detector {
	return &Detector{
		store: store,
		table: table,
		key:   key,
		core:  core,
		seen:  make(map[string]map[string]string),
	}
}

// Check classifies rec. Keys seen earlier in the run are duplicates, or
// conflicts when the core fields differ, whether or not their batch has
// been written yet.
func (d *Detector) Check(ctx context.Context, rec Record) Detection {
	if d.key == nil {
		return Detection{Verdict: New}
	}
	key, ok := d.key(rec)
	if !ok {
		return Detection{Verdict: New}
	}

	if core, claimed := d.seen[key.String()]; claimed {
		var diffs []string
		for _, field := range d.core {
			if rec.Get(field).Canonical() != core[field] {
				diffs = append(diffs, field)
			}
		}
		if len(diffs) > 0 {
			return Detection{Verdict: Conflict, Key: key, HasKey: true, Differences: diffs, InRun: true}
		}
		return Detection{Verdict: Duplicate, Key: key, HasKey: true, InRun: true}
	}

	stored, found, err := d.store.FindByKey(ctx, d.table, key)
	if err != nil {
		return Detection{Verdict: Unknown, Key: key, HasKey: true, Err: err}
	}
	if !found {
		return Detection{Verdict: New, Key: key, HasKey: true}
	}

	diffs := d.compare(rec, stored)
	if len(diffs) > 0 {
		return Detection{Verdict: Conflict, Key: key, HasKey: true, Differences: diffs}
	}
	return Detection{Verdict: Duplicate, Key: key, HasKey: true}
}

// Remember marks a key as claimed by rec for the rest of the run.
func (d *Detector) Remember(key Key, rec Record) {
	core := make(map[string]string, len(d.core))
	for _, field := range d.core {
		core[field] = rec.Get(field).Canonical()
	}
	d.seen[key.String()] = core
}

// Forget releases a key whose insert failed so a later row may claim it.
func (d *Detector) Forget(key Key) {
	delete(d.seen, key.String())
}

func (d *Detector) compare(rec Record, stored map[string]any) []string {
	var diffs []string
	for _, field := range d.core {
		v := rec.Get(field)
		if v.Canonical() != canonicalStored(v, stored[field]) {
			diffs = append(diffs, field)
		}
	}
	return diffs
}

// canonicalStored renders a value read back from the store in the same
// form as v.Canonical(), whatever representation the driver returned.
func canonicalStored(v Value, stored any) string {
	if stored == nil {
		return ""
	}

	switch v.Kind {
	case KindDate:
		switch t := stored.(type) {
		case time.Time:
			return t.UTC().Format(DateLayout)
		case *time.Time:
			if t == nil {
				return ""
			}
			return t.UTC().Format(DateLayout)
		}
		s := strings.TrimSpace(cast.ToString(stored))
		if len(s) >= len(DateLayout) {
			if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
				return t.Format(DateLayout)
			}
		}
		if t, err := ParseDate(s); err == nil {
			return t.Format(DateLayout)
		}
		return strings.ToLower(s)

	case KindInt:
		if n, err := cast.ToInt64E(stored); err == nil {
			return strconv.FormatInt(n, 10)
		}
	}

	var s string
	switch t := stored.(type) {
	case time.Time:
		s = t.UTC().Format(DateLayout)
	case *string:
		if t != nil {
			s = *t
		}
	default:
		s = cast.ToString(stored)
		if s == "" {
			s = fmt.Sprint(stored)
		}
	}
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
