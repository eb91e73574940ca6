// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"

	adminstore "github.com/dalemusser/labportal/internal/app/store/admins"
	"github.com/dalemusser/labportal/internal/app/system/auditlog"
	"github.com/dalemusser/labportal/internal/app/system/auth"
	"github.com/dalemusser/labportal/internal/app/system/inputval"
	"github.com/dalemusser/labportal/internal/app/system/ratelimit"
	"github.com/dalemusser/labportal/internal/app/system/respond"
	"github.com/dalemusser/labportal/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	// Limiter throttles attempts. Nil disables throttling.
	Limiter *ratelimit.LoginLimiter

	admins *adminstore.Store
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sm,
		AuditLog:   audit,
		admins:     adminstore.New(db),
	}
}

type loginRequest struct {
	Username string `json:"username" label:"Username" validate:"notblank,max=128"`
	Password string `json:"password" label:"Password" validate:"required,max=256"`
}

type loginUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    loginUser `json:"user"`
}

// HandleLogin handles POST /admin/login. On success it sets the session
// cookie and returns a bearer token for API clients.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, req.Username); !ok {
			h.AuditLog.LoginFailed(r.Context(), r, req.Username, "rate_limited")
			respond.Message(w, http.StatusTooManyRequests, msg)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin login")
	defer cancel()

	u, err := h.admins.Verify(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, adminstore.ErrInvalidCredentials) {
			h.AuditLog.LoginFailed(ctx, r, req.Username, "invalid_credentials")
			respond.Message(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respond.Error(w, r, h.Log, err)
		return
	}

	token, err := h.SessionMgr.SignIn(w, r, auth.SessionUser{ID: u.ID, Name: u.Username, Role: u.Role})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.admins.TouchLastLogin(ctx, u.ID); err != nil {
		h.Log.Warn("update last login", zap.String("user", u.Username), zap.Error(err))
	}
	if h.Limiter != nil {
		h.Limiter.ResetUser(req.Username)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.Username)

	respond.JSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    loginUser{ID: u.ID, Username: u.Username, Role: u.Role},
	})
}
