// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/labportal/internal/app/store/audit"
	"github.com/dalemusser/labportal/internal/app/system/auth"
	"github.com/dalemusser/labportal/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for login and logout.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for group, slot, roster and attendance changes.
	// Same values as Auth.
	Admin string
	// TrustProxy records the forwarded client address instead of the
	// connection's peer address.
	TrustProxy bool
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// ValidMode reports whether v is an accepted Auth/Admin setting. Blank
// counts as "all".
func ValidMode(v string) bool {
	switch v {
	case "", "all", "db", "log", "off":
		return true
	}
	return false
}

func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) clientIP(r *http.Request) string {
	if l == nil || r == nil {
		return ""
	}
	return ratelimit.ClientIP(r, l.config.TrustProxy)
}

func actorOf(r *http.Request) string {
	if r == nil {
		return ""
	}
	if u, ok := auth.CurrentUser(r); ok {
		return u.Name
	}
	return ""
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.Target != "" {
		fields = append(fields, zap.String("target", event.Target))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so tests can skip auditing.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) admin(ctx context.Context, r *http.Request, eventType, target string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		Actor:     actorOf(r),
		Target:    target,
		IP:        l.clientIP(r),
		Success:   true,
		Details:   details,
	})
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, username string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		Actor:     username,
		IP:        l.clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// LoginFailed records a rejected login. reason is kept out of the HTTP
// response; it only goes to the audit trail.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, attemptedUsername, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		Actor:         attemptedUsername,
		IP:            l.clientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
	})
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, username string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		Actor:     username,
		IP:        l.clientIP(r),
		Success:   true,
	})
}

// --- Admin Events ---

func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, groupID, name string) {
	l.admin(ctx, r, audit.EventGroupCreated, name, map[string]string{"group_id": groupID})
}

func (l *Logger) GroupUpdated(ctx context.Context, r *http.Request, groupID, name string) {
	l.admin(ctx, r, audit.EventGroupUpdated, name, map[string]string{"group_id": groupID})
}

// GroupDeleted records the delete along with how many slots and students
// still reference the removed group's identifiers.
func (l *Logger) GroupDeleted(ctx context.Context, r *http.Request, groupID, name string, danglingSlots, danglingStudents int64) {
	l.admin(ctx, r, audit.EventGroupDeleted, name, map[string]string{
		"group_id":          groupID,
		"dangling_slots":    strconv.FormatInt(danglingSlots, 10),
		"dangling_students": strconv.FormatInt(danglingStudents, 10),
	})
}

func (l *Logger) SlotCreated(ctx context.Context, r *http.Request, slotID, display string) {
	l.admin(ctx, r, audit.EventSlotCreated, slotID, map[string]string{"slot": display})
}

func (l *Logger) SlotUpdated(ctx context.Context, r *http.Request, slotID, display string) {
	l.admin(ctx, r, audit.EventSlotUpdated, slotID, map[string]string{"slot": display})
}

func (l *Logger) SlotDeleted(ctx context.Context, r *http.Request, slotID string) {
	l.admin(ctx, r, audit.EventSlotDeleted, slotID, nil)
}

func (l *Logger) RosterImported(ctx context.Context, r *http.Request, filename string, imported, skipped int) {
	l.admin(ctx, r, audit.EventRosterImported, filename, map[string]string{
		"imported": strconv.Itoa(imported),
		"skipped":  strconv.Itoa(skipped),
	})
}

func (l *Logger) StudentDeleted(ctx context.Context, r *http.Request, rollNo string, attendanceRemoved int64) {
	l.admin(ctx, r, audit.EventStudentDeleted, rollNo, map[string]string{
		"attendance_removed": strconv.FormatInt(attendanceRemoved, 10),
	})
}

func (l *Logger) AttendanceSaved(ctx context.Context, r *http.Request, slotID, subSubgroup, date string, saved, skipped int) {
	l.admin(ctx, r, audit.EventAttendanceSaved, slotID, map[string]string{
		"sub_subgroup": subSubgroup,
		"date":         date,
		"saved":        strconv.Itoa(saved),
		"skipped":      strconv.Itoa(skipped),
	})
}
