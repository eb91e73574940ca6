// Package timeslots generates the fixed, ordered list of bookable time
// windows for a day.
//
// A deployment runs exactly one Policy. The labels it produces are the
// only values LabSlot.Time may hold, and the public schedule joins on the
// same strings, so every consumer must be handed the same Policy value.
package timeslots

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Clock selects the label notation.
type Clock string

const (
	Clock24 Clock = "24h" // "09:00 - 10:00"
	Clock12 Clock = "12h" // "9:00 AM - 10:00 AM"
)

// Policy describes how the day is cut into windows.
type Policy struct {
	Start    time.Duration // offset from midnight of the first window
	Duration time.Duration // length of each window
	Buffer   time.Duration // gap between the end of one window and the next start
	Count    int
	Clock    Clock
}

// Default is six back-to-back one-hour windows from 09:00, 24-hour labels.
func Default() Policy {
	return Policy{
		Start:    9 * time.Hour,
		Duration: time.Hour,
		Buffer:   0,
		Count:    6,
		Clock:    Clock24,
	}
}

var (
	ErrBadCount     = errors.New("slot count must be positive")
	ErrBadDuration  = errors.New("slot duration must be positive")
	ErrBadBuffer    = errors.New("slot buffer must not be negative")
	ErrBadClock     = errors.New(`slot clock must be "24h" or "12h"`)
	ErrPastMidnight = errors.New("time slots must end by midnight")
)

// Validate reports whether the policy yields a usable set of windows.
func (p Policy) Validate() error {
	if p.Count <= 0 {
		return ErrBadCount
	}
	if p.Duration <= 0 {
		return ErrBadDuration
	}
	if p.Buffer < 0 {
		return ErrBadBuffer
	}
	if p.Clock != Clock24 && p.Clock != Clock12 {
		return ErrBadClock
	}
	if p.Start < 0 {
		return fmt.Errorf("slot start %s is before midnight", p.Start)
	}
	step := p.Duration + p.Buffer
	lastEnd := p.Start + time.Duration(p.Count-1)*step + p.Duration
	if lastEnd > 24*time.Hour {
		return ErrPastMidnight
	}
	return nil
}

// Generate returns the policy's window labels in order. It does not
// validate p; callers load the policy through Validate once at startup.
func Generate(p Policy) []string {
	if p.Count <= 0 {
		return nil
	}
	step := p.Duration + p.Buffer
	out := make([]string, 0, p.Count)
	for i := 0; i < p.Count; i++ {
		start := p.Start + time.Duration(i)*step
		out = append(out, p.format(start)+" - "+p.format(start+p.Duration))
	}
	return out
}

// Labels is shorthand for Generate(p).
func (p Policy) Labels() []string {
	return Generate(p)
}

// Contains reports whether label is one of the policy's windows.
func (p Policy) Contains(label string) bool {
	label = strings.TrimSpace(label)
	for _, l := range Generate(p) {
		if l == label {
			return true
		}
	}
	return false
}

func (p Policy) format(offset time.Duration) string {
	t := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(offset)
	if p.Clock == Clock12 {
		return t.Format("3:04 PM")
	}
	// 24:00 is a legal end label for a window ending at midnight.
	if offset == 24*time.Hour {
		return "24:00"
	}
	return t.Format("15:04")
}

// ParseStart parses a "HH:MM" start-of-day value.
func ParseStart(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("slot start %q must be HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
