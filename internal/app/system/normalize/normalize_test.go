package normalize

import (
	"testing"
	"time"
)

func TestUpper(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2c22", "2C22"},
		{"  cs101 ", "CS101"},
		{"g1-a", "G1-A"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Upper(tt.input); got != tt.want {
				t.Errorf("Upper(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Alice", "Alice"},
		{"  Alice Smith  ", "Alice Smith"},
		{"", ""},
		{"lowercase name", "lowercase name"}, // Name preserves case
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Name(tt.input); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDay(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Monday", "Monday"},
		{"mon", "Monday"},
		{"  FRI ", "Friday"},
		{"wednesday", "Wednesday"},
		{"Saturday", ""},
		{"sun", ""},
		{"mo", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Day(tt.input); got != tt.want {
				t.Errorf("Day(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDate(t *testing.T) {
	now := time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)

	got, ok := Date("", now, time.UTC)
	if !ok || got != "2025-03-14" {
		t.Errorf("Date(\"\") = %q, %v; want 2025-03-14, true", got, ok)
	}

	got, ok = Date(" 2025-01-05 ", now, time.UTC)
	if !ok || got != "2025-01-05" {
		t.Errorf("Date(2025-01-05) = %q, %v", got, ok)
	}

	if _, ok := Date("05/01/2025", now, time.UTC); ok {
		t.Error("expected Date to reject non ISO dates")
	}
	if _, ok := Date("2025-02-30", now, time.UTC); ok {
		t.Error("expected Date to reject impossible dates")
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Present", "Present"},
		{"present", "Present"},
		{" ABSENT ", "Absent"},
		{"late", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Status(tt.input); got != tt.want {
				t.Errorf("Status(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
