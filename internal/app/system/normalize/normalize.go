// Package normalize canonicalizes user-entered identifiers before they are
// compared or stored.
package normalize

import (
	"strings"
	"time"
)

// Upper trims and upper-cases s. Used for group names, roll numbers,
// course and lab codes, and sub-subgroup lookup keys.
func Upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Weekdays are the bookable days, in order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// Day maps "mon", "Mon", "MONDAY", … to the canonical weekday name.
// It returns "" for anything that is not Monday–Friday.
func Day(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return ""
	}
	for _, d := range Weekdays {
		full := strings.ToLower(d)
		if s == full || s == full[:3] {
			return d
		}
	}
	return ""
}

// DateLayout is the calendar-day format attendance dates use.
const DateLayout = "2006-01-02"

// Date validates a YYYY-MM-DD string. An empty input yields today's date
// in loc. ok is false if s is non-empty and not a valid date.
func Date(s string, now time.Time, loc *time.Location) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		if loc == nil {
			loc = time.Local
		}
		return now.In(loc).Format(DateLayout), true
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", false
	}
	return t.Format(DateLayout), true
}

// Status maps a case-insensitive attendance status to "Present" or
// "Absent". It returns "" for anything else.
func Status(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present":
		return "Present"
	case "absent":
		return "Absent"
	default:
		return ""
	}
}
