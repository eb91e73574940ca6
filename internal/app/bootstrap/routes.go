// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	attendancefeature "github.com/dalemusser/labportal/internal/app/features/attendance"
	auditlogfeature "github.com/dalemusser/labportal/internal/app/features/auditlog"
	groupsfeature "github.com/dalemusser/labportal/internal/app/features/groups"
	healthfeature "github.com/dalemusser/labportal/internal/app/features/health"
	loginfeature "github.com/dalemusser/labportal/internal/app/features/login"
	logoutfeature "github.com/dalemusser/labportal/internal/app/features/logout"
	lookupfeature "github.com/dalemusser/labportal/internal/app/features/lookup"
	schedulefeature "github.com/dalemusser/labportal/internal/app/features/schedule"
	slotsfeature "github.com/dalemusser/labportal/internal/app/features/slots"
	studentsfeature "github.com/dalemusser/labportal/internal/app/features/students"
	"github.com/dalemusser/labportal/internal/app/store/audit"
	"github.com/dalemusser/labportal/internal/app/system/auditlog"
	"github.com/dalemusser/labportal/internal/app/system/auth"
	"github.com/dalemusser/labportal/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Everything except /health lives under /api. Public endpoints (time slots,
// the public schedule and student lookup) need no session; the admin
// routers enforce the admin role themselves.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	policy, err := appCfg.SlotPolicy()
	if err != nil {
		return nil, err
	}
	loc, err := appCfg.Location()
	if err != nil {
		return nil, err
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.TokenTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	if appCfg.TokenHashKey != "" {
		if err := sessionMgr.UseTokenKeys(appCfg.TokenHashKey, appCfg.TokenBlockKey); err != nil {
			logger.Error("token keys rejected", zap.Error(err))
			return nil, err
		}
	}

	db := deps.MongoDatabase
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:       appCfg.AuditLogAuth,
		Admin:      appCfg.AuditLogAdmin,
		TrustProxy: appCfg.TrustProxyHeaders,
	})

	r := chi.NewRouter()

	// Loads the admin from the session cookie or bearer token, if any.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		// Public
		scheduleHandler := schedulefeature.NewHandler(db, policy, logger)
		api.Mount("/timeslots", schedulefeature.TimeslotRoutes(scheduleHandler))
		api.Mount("/public_schedule", schedulefeature.PublicRoutes(scheduleHandler))

		lookupHandler := lookupfeature.NewHandler(db, policy, loc, logger)
		api.Mount("/student_lookup", lookupfeature.Routes(lookupHandler))

		// Authentication
		loginHandler := loginfeature.NewHandler(db, sessionMgr, auditLog, logger)
		loginHandler.Limiter = ratelimit.NewLoginLimiter()
		loginHandler.Limiter.TrustProxy = appCfg.TrustProxyHeaders
		api.Mount("/admin/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
		api.Mount("/admin/logout", logoutfeature.Routes(logoutHandler))

		auditHandler := auditlogfeature.NewHandler(db, logger)
		api.Mount("/admin/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

		// Admin
		groupsHandler := groupsfeature.NewHandler(db, policy, auditLog, logger)
		api.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

		slotsHandler := slotsfeature.NewHandler(db, policy, auditLog, logger)
		api.Mount("/slots", slotsfeature.Routes(slotsHandler, sessionMgr))

		studentsHandler := studentsfeature.NewHandler(db, auditLog, logger)
		api.Mount("/students", studentsfeature.Routes(studentsHandler, sessionMgr))

		attendanceHandler := attendancefeature.NewHandler(db, policy, loc, appCfg.MarkedByDefault, auditLog, logger)
		api.Mount("/attendance", attendancefeature.Routes(attendanceHandler, sessionMgr))
	})

	return r, nil
}
