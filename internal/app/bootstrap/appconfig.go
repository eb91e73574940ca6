// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/labportal/internal/app/system/timeslots"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, logging and CORS; everything specific to the lab portal
// lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: labportal-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Bearer tokens issued at login. Blank keys fall back to SessionKey.
	TokenHashKey  string
	TokenBlockKey string
	TokenTTL      time.Duration

	// Admin account seeded at startup when both are set.
	AdminUsername string
	AdminPassword string

	// Time-slot policy (see timeslots.Policy)
	SlotStart    string // "HH:MM"
	SlotDuration time.Duration
	SlotBuffer   time.Duration
	SlotCount    int
	SlotClock    string // "24h" or "12h"

	// Attendance
	MarkedByDefault    string // recorded when the caller has no name
	AttendanceTimezone string // IANA name deciding what "today" is

	// Read client addresses from forwarding headers (reverse proxy only)
	TrustProxyHeaders bool

	// Audit logging
	AuditLogAuth  string
	AuditLogAdmin string
}

// SlotPolicy builds and validates the one time-slot policy of this
// deployment.
func (c AppConfig) SlotPolicy() (timeslots.Policy, error) {
	start, err := timeslots.ParseStart(c.SlotStart)
	if err != nil {
		return timeslots.Policy{}, err
	}
	p := timeslots.Policy{
		Start:    start,
		Duration: c.SlotDuration,
		Buffer:   c.SlotBuffer,
		Count:    c.SlotCount,
		Clock:    timeslots.Clock(strings.ToLower(strings.TrimSpace(c.SlotClock))),
	}
	if err := p.Validate(); err != nil {
		return timeslots.Policy{}, err
	}
	return p, nil
}

// Location resolves AttendanceTimezone. Blank means the server's zone.
func (c AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.AttendanceTimezone)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("attendance_timezone %q: %w", name, err)
	}
	return loc, nil
}
