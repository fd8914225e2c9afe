// Package dates parses the loosely formatted dates found in catalog exports
// and renders them in the display format used by the processed output.
package dates

import (
	"strings"
	"time"
)

// Display is the output layout, e.g. "Jan 01 2011".
const Display = "Jan 02 2006"

// TwoDigitYearPivot: two-digit years that would land more than this many
// years in the future are moved back a century.
var TwoDigitYearPivot = 20

// Layouts are tried in order; four-digit years first since they are
// unambiguous. Month-first wins over day-first for slash dates.
var (
	fourDigitYearLayouts = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02", "2006.01.02",
		"2006-1-2", "2006/1/2",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		Display, "Jan 2 2006", "Jan 2, 2006", "January 2, 2006", "January 2 2006",
		"2 Jan 2006", "02 Jan 2006", "2 January 2006", "02-Jan-2006",
		"January 2006", "Jan 2006",
		"20060102",
		"2006-01",
		"2006",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// Parse interprets s using the known layouts. Surrounding whitespace is
// ignored. The second result is false when no layout matches.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivot := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivot {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// Format parses s and renders it in the Display layout.
func Format(s string) (string, bool) {
	t, ok := Parse(s)
	if !ok {
		return "", false
	}
	return t.Format(Display), true
}
