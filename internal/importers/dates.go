package importers

import (
	"fmt"
	"strings"
	"time"
)

// Day-first layouts come before month-first ones: registry exports use
// D/M/YYYY, and M/D is only tried when the day-first reading is impossible.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	"2-1-06",
	"1/2/2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon Jan 02 2006",
	"2006/01/02",
}

// ParseDate parses the date formats found in registry exports. Impossible
// calendar dates such as 1954-20-20 and partial values such as "25/6/"
// return an error.
func ParseDate(raw string) (time.Time, error) {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	// JavaScript Date.toString() appends time and zone to the date part.
	if len(s) > 15 && strings.Contains(s, " GMT") {
		s = s[:15]
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", raw)
}
