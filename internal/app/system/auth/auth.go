package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/labportal/internal/app/system/respond"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
	userName  = "user_name"
	userRole  = "user_role"

	tokenName = "labportal-token"
)

// ErrInvalidToken is returned by ParseToken for anything it cannot decode,
// including expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we cache in the session or token & inject into r.Context().
type SessionUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u the way LoadSessionUser would. Tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// Authorizer decides who, if anyone, is making a request.
type Authorizer interface {
	Authorize(r *http.Request) (*SessionUser, bool)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager accepts either a browser session cookie or a bearer token
// issued at sign-in. Both carry the same SessionUser.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	tokens *securecookie.SecureCookie
	ttl    time.Duration
	log    *zap.Logger
}

// NewSessionManager builds the cookie store and a token codec signed with
// the same key. Call UseTokenKeys to give tokens their own keys.
//
// In production (secure=true), cookies are Secure + SameSite=None.
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, ttl time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "labportal-session"
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	sm := &SessionManager{
		store: store,
		name:  name,
		ttl:   ttl,
		log:   logger,
	}
	sm.tokens = newTokenCodec([]byte(sessionKey), nil, ttl)

	logger.Info("session manager initialized",
		zap.String("cookie", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("ttl", ttl))

	return sm, nil
}

// UseTokenKeys switches bearer tokens to their own keys. blockKey may be
// empty (signed only) or 16, 24 or 32 bytes (signed and encrypted).
func (sm *SessionManager) UseTokenKeys(hashKey, blockKey string) error {
	if len(hashKey) < 32 {
		return fmt.Errorf("token hash key must be at least 32 bytes")
	}
	var block []byte
	if blockKey != "" {
		switch len(blockKey) {
		case 16, 24, 32:
			block = []byte(blockKey)
		default:
			return fmt.Errorf("token block key must be 16, 24 or 32 bytes, got %d", len(blockKey))
		}
	}
	sm.tokens = newTokenCodec([]byte(hashKey), block, sm.ttl)
	return nil
}

func newTokenCodec(hashKey, blockKey []byte, ttl time.Duration) *securecookie.SecureCookie {
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(ttl.Seconds()))
	return sc
}

// IssueToken encodes u into an opaque, signed, expiring token.
func (sm *SessionManager) IssueToken(u SessionUser) (string, error) {
	return sm.tokens.Encode(tokenName, u)
}

// ParseToken reverses IssueToken.
func (sm *SessionManager) ParseToken(token string) (*SessionUser, error) {
	var u SessionUser
	if err := sm.tokens.Decode(tokenName, token, &u); err != nil {
		return nil, ErrInvalidToken
	}
	if u.ID == "" {
		return nil, ErrInvalidToken
	}
	return &u, nil
}

// SignIn stores u in the session cookie and returns a bearer token for
// API clients.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u SessionUser) (string, error) {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[userRole] = u.Role
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return sm.IssueToken(u)
}

// SignOut expires the session cookie. Bearer tokens simply run out.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// Authorize checks the Authorization header first, then the session cookie.
func (sm *SessionManager) Authorize(r *http.Request) (*SessionUser, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		tok, found := strings.CutPrefix(h, "Bearer ")
		if !found {
			return nil, false
		}
		u, err := sm.ParseToken(strings.TrimSpace(tok))
		if err != nil {
			return nil, false
		}
		return u, true
	}

	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return nil, false
	}
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return nil, false
	}
	u := &SessionUser{
		ID:   getString(sess, userIDKey),
		Name: getString(sess, userName),
		Role: getString(sess, userRole),
	}
	if u.ID == "" {
		return nil, false
	}
	return u, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser injects the user into context if they are signed in.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return LoadUser(sm)(next)
}

// LoadUser injects whatever a resolves into the request context.
func LoadUser(a Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := a.Authorize(r); ok {
				r = withUser(r, u)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSignedIn rejects requests with no user in context with 401.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		respond.Message(w, http.StatusUnauthorized, "unauthorized")
	})
}

// RequireRole is RequireSignedIn plus a role check (403 on mismatch).
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				respond.Message(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				sm.log.Warn("role check failed",
					zap.String("user", u.Name),
					zap.String("role", u.Role),
					zap.String("path", r.URL.Path))
				respond.Message(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
