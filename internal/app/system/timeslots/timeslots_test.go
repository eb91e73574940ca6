package timeslots

import (
	"reflect"
	"testing"
	"time"
)

func TestGenerate_Default(t *testing.T) {
	got := Generate(Default())
	want := []string{
		"09:00 - 10:00",
		"10:00 - 11:00",
		"11:00 - 12:00",
		"12:00 - 13:00",
		"13:00 - 14:00",
		"14:00 - 15:00",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate(Default()) = %v, want %v", got, want)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(Default())
	b := Generate(Default())
	if !reflect.DeepEqual(a, b) {
		t.Error("Generate returned different labels for the same policy")
	}
}

func TestGenerate_BufferedTwelveHour(t *testing.T) {
	p := Policy{
		Start:    8 * time.Hour,
		Duration: 50 * time.Minute,
		Buffer:   10 * time.Minute,
		Count:    9,
		Clock:    Clock12,
	}
	got := Generate(p)
	if len(got) != 9 {
		t.Fatalf("got %d labels, want 9", len(got))
	}
	if got[0] != "8:00 AM - 8:50 AM" {
		t.Errorf("first label = %q", got[0])
	}
	if got[4] != "12:00 PM - 12:50 PM" {
		t.Errorf("fifth label = %q", got[4])
	}
	if got[8] != "4:00 PM - 4:50 PM" {
		t.Errorf("last label = %q", got[8])
	}
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Policy)
		wantErr error
	}{
		{"default ok", func(p *Policy) {}, nil},
		{"zero count", func(p *Policy) { p.Count = 0 }, ErrBadCount},
		{"zero duration", func(p *Policy) { p.Duration = 0 }, ErrBadDuration},
		{"negative buffer", func(p *Policy) { p.Buffer = -time.Minute }, ErrBadBuffer},
		{"bad clock", func(p *Policy) { p.Clock = "ampm" }, ErrBadClock},
		{"past midnight", func(p *Policy) { p.Start = 20 * time.Hour }, ErrPastMidnight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(&p)
			if err := p.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPolicy_Contains(t *testing.T) {
	p := Default()
	if !p.Contains("09:00 - 10:00") {
		t.Error("expected default policy to contain 09:00 - 10:00")
	}
	if !p.Contains(" 14:00 - 15:00 ") {
		t.Error("expected Contains to trim input")
	}
	if p.Contains("15:00 - 16:00") {
		t.Error("15:00 - 16:00 is outside the default policy")
	}
	if p.Contains("9:00 AM - 10:00 AM") {
		t.Error("12-hour label must not match a 24-hour policy")
	}
}

func TestParseStart(t *testing.T) {
	d, err := ParseStart("09:30")
	if err != nil {
		t.Fatalf("ParseStart failed: %v", err)
	}
	if d != 9*time.Hour+30*time.Minute {
		t.Errorf("ParseStart(09:30) = %s", d)
	}
	if _, err := ParseStart("9am"); err == nil {
		t.Error("expected error for 9am")
	}
}
