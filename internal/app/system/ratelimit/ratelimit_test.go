package ratelimit

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowAndExpire(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	l := New(2, time.Minute)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two hits should be allowed")
	}
	if l.Allow("a") {
		t.Fatal("third hit should be refused")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
	if !l.Allow("b") {
		t.Error("keys are independent")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("a") {
		t.Error("hit after window should be allowed")
	}
	if got := l.Remaining("a"); got != 1 {
		t.Errorf("Remaining = %d, want 1", got)
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Hour)
	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("expected refusal")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("expected allow after Reset")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "10.0.0.9:5123"
	r.Header.Set("X-Real-IP", "10.0.0.7")
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")

	tests := []struct {
		name       string
		trustProxy bool
		remoteAddr string
		dropXFF    bool
		want       string
	}{
		{"headers ignored by default", false, "10.0.0.9:5123", false, "10.0.0.9"},
		{"no port", false, "10.0.0.9", false, "10.0.0.9"},
		{"behind proxy uses first hop", true, "10.0.0.9:5123", false, "203.0.113.5"},
		{"behind proxy falls back to X-Real-IP", true, "10.0.0.9:5123", true, "10.0.0.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := r.Clone(r.Context())
			req.RemoteAddr = tt.remoteAddr
			if tt.dropXFF {
				req.Header.Del("X-Forwarded-For")
			}
			if got := ClientIP(req, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter_ForwardedHeadersDoNotResetIPCounter(t *testing.T) {
	ll := NewLoginLimiterWithConfig(3, time.Minute, 100, time.Minute)

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest("POST", "/", nil)
		r.RemoteAddr = "198.51.100.7:40000"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		r.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i))
		if ok, _ := ll.Check(r, fmt.Sprintf("user%d", i)); !ok {
			t.Fatalf("attempt %d refused early", i)
		}
	}

	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "198.51.100.7:40001"
	r.Header.Set("X-Forwarded-For", "203.0.113.99")
	if ok, msg := ll.Check(r, "user99"); ok || msg == "" {
		t.Error("rotating forwarding headers should not escape the per-IP limit")
	}

	other := httptest.NewRequest("POST", "/", nil)
	other.RemoteAddr = "198.51.100.8:40000"
	if ok, _ := ll.Check(other, "user100"); !ok {
		t.Error("a different client address has its own counter")
	}
}

func TestLoginLimiter_TrustProxyKeysOnForwardedFor(t *testing.T) {
	ll := NewLoginLimiterWithConfig(1, time.Minute, 100, time.Minute)
	ll.TrustProxy = true

	for i, client := range []string{"203.0.113.1", "203.0.113.2"} {
		r := httptest.NewRequest("POST", "/", nil)
		r.RemoteAddr = "10.0.0.1:8080"
		r.Header.Set("X-Forwarded-For", client+", 10.0.0.1")
		if ok, _ := ll.Check(r, fmt.Sprintf("user%d", i)); !ok {
			t.Errorf("client %s shares the proxy address but should have its own counter", client)
		}
	}
}

func TestLoginLimiter_PerUsernameIgnoresCase(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	r := httptest.NewRequest("POST", "/", nil)

	for _, u := range []string{"Admin", "admin"} {
		if ok, _ := ll.Check(r, u); !ok {
			t.Fatalf("attempt for %q refused early", u)
		}
	}
	ok, msg := ll.Check(r, "ADMIN")
	if ok || msg == "" {
		t.Fatal("third attempt for the same username should be refused")
	}

	ll.ResetUser("admin")
	if ok, _ := ll.Check(r, "Admin"); !ok {
		t.Error("expected allow after ResetUser")
	}
}
