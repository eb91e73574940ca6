// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/labportal/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devSessionKey is only accepted when the core env is "dev".
const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for the lab portal.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: LABPORTAL_MONGO_URI, LABPORTAL_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "labportal", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "labportal-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// API tokens
	{Name: "token_hash_key", Default: "", Desc: "Bearer token signing key, 32+ bytes (blank reuses session_key)"},
	{Name: "token_block_key", Default: "", Desc: "Bearer token encryption key: blank, or 16/24/32 bytes"},
	{Name: "token_ttl", Default: "12h", Desc: "Lifetime of sessions and bearer tokens"},

	// Admin seeding
	{Name: "admin_username", Default: "", Desc: "Admin account created on startup if missing"},
	{Name: "admin_password", Default: "", Desc: "Password for admin_username (only used when creating it)"},

	// Time-slot policy
	{Name: "slot_start", Default: "09:00", Desc: "Start of the first time slot (HH:MM)"},
	{Name: "slot_duration", Default: "60m", Desc: "Length of each time slot"},
	{Name: "slot_buffer", Default: "0s", Desc: "Gap between consecutive time slots"},
	{Name: "slot_count", Default: 6, Desc: "Number of time slots per day"},
	{Name: "slot_clock", Default: "24h", Desc: "Slot label notation: '24h' or '12h'"},

	// Attendance
	{Name: "marked_by_default", Default: "admin", Desc: "markedBy recorded when the caller has no name"},
	{Name: "attendance_timezone", Default: "", Desc: "IANA time zone used for today's date (blank means server local)"},

	// Set only behind a reverse proxy that overwrites X-Forwarded-For
	{Name: "trust_proxy_headers", Default: false, Desc: "Key login throttling and audit IPs on X-Forwarded-For/X-Real-IP"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, LABPORTAL_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LABPORTAL", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		TokenHashKey:  appValues.String("token_hash_key"),
		TokenBlockKey: appValues.String("token_block_key"),
		TokenTTL:      appValues.Duration("token_ttl", 12*time.Hour),

		AdminUsername: appValues.String("admin_username"),
		AdminPassword: appValues.String("admin_password"),

		SlotStart:    appValues.String("slot_start"),
		SlotDuration: appValues.Duration("slot_duration", time.Hour),
		SlotBuffer:   appValues.Duration("slot_buffer", 0),
		SlotCount:    appValues.Int("slot_count"),
		SlotClock:    appValues.String("slot_clock"),

		MarkedByDefault:    appValues.String("marked_by_default"),
		AttendanceTimezone: appValues.String("attendance_timezone"),

		TrustProxyHeaders: appValues.Bool("trust_proxy_headers"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The Mongo URI, the time-slot policy and the attendance time zone are
// checked here so a typo fails before anything connects.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if _, err := appCfg.SlotPolicy(); err != nil {
		return fmt.Errorf("invalid time-slot policy: %w", err)
	}
	if _, err := appCfg.Location(); err != nil {
		return err
	}

	if coreCfg.Env != "dev" {
		if len(appCfg.SessionKey) < 32 {
			return fmt.Errorf("session_key must be at least 32 bytes outside dev")
		}
		if appCfg.SessionKey == devSessionKey {
			return fmt.Errorf("session_key is the development default; set LABPORTAL_SESSION_KEY")
		}
	}
	if k := appCfg.TokenHashKey; k != "" && len(k) < 32 {
		return fmt.Errorf("token_hash_key must be at least 32 bytes")
	}
	switch len(appCfg.TokenBlockKey) {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("token_block_key must be 16, 24 or 32 bytes")
	}

	if (appCfg.AdminUsername == "") != (appCfg.AdminPassword == "") {
		logger.Warn("admin_username and admin_password must both be set to seed an admin; skipping")
	}

	for key, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		if !auditlog.ValidMode(v) {
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, v)
		}
	}

	return nil
}
