// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
)

// Limiter counts hits per key in fixed windows. It is safe for concurrent
// use. Expired windows are dropped lazily on each sweep interval.
type Limiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	limit     int
	duration  time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New allows limit hits per key in each window of length d.
func New(limit int, d time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: d,
		now:      time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if n := l.limit - w.count; n > 0 {
		return n
	}
	return 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// sweep drops expired windows at most once per two window lengths.
// Callers hold mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < 2*l.duration {
		return
	}
	l.lastSweep = now
	for k, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, k)
		}
	}
}

// ClientIP returns the host part of RemoteAddr. Forwarding headers are
// set by the client unless a proxy rewrites them, so they are only read
// when trustProxy is true: then the first X-Forwarded-For hop wins, then
// X-Real-IP.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles admin login attempts per client IP and per
// username.
type LoginLimiter struct {
	byIP   *Limiter
	byUser *Limiter

	// TrustProxy keys the IP counter on forwarding headers. Set it only
	// when a reverse proxy in front of the server overwrites them.
	TrustProxy bool
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 per username
// per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

func NewLoginLimiterWithConfig(ipLimit int, ipWindow time.Duration, userLimit int, userWindow time.Duration) *LoginLimiter {
	return &LoginLimiter{
		byIP:   New(ipLimit, ipWindow),
		byUser: New(userLimit, userWindow),
	}
}

// Check records an attempt. When it is refused the second value is the
// message to show the caller.
func (ll *LoginLimiter) Check(r *http.Request, username string) (bool, string) {
	if !ll.byIP.Allow(ClientIP(r, ll.TrustProxy)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	if key := text.Fold(username); key != "" && !ll.byUser.Allow(key) {
		return false, "Too many login attempts for this account. Please wait a few minutes."
	}
	return true, ""
}

// ResetUser clears the username counter after a successful login.
func (ll *LoginLimiter) ResetUser(username string) {
	if key := text.Fold(username); key != "" {
		ll.byUser.Reset(key)
	}
}
