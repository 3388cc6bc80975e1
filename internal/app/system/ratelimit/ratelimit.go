// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Window counts hits per key in fixed windows. The first hit for a key
// opens a window of length period; at most limit hits are allowed in it.
// It is safe for concurrent use.
type Window struct {
	limit  int
	period time.Duration

	// Now is the clock. Nil means time.Now.
	Now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	count     int
	expiresAt time.Time
}

// pruneAt is the map size above which expired buckets are dropped on the
// next hit.
const pruneAt = 1024

// NewWindow returns a Window allowing limit hits per key every period.
func NewWindow(limit int, period time.Duration) *Window {
	return &Window{
		limit:   limit,
		period:  period,
		buckets: make(map[string]*bucket),
	}
}

func (w *Window) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Allow records a hit for key and reports whether it is within the limit.
func (w *Window) Allow(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if len(w.buckets) > pruneAt {
		w.pruneLocked(now)
	}

	b, ok := w.buckets[key]
	if !ok || now.After(b.expiresAt) {
		w.buckets[key] = &bucket{count: 1, expiresAt: now.Add(w.period)}
		return true
	}
	if b.count >= w.limit {
		return false
	}
	b.count++
	return true
}

// Remaining returns how many hits key has left in its current window.
func (w *Window) Remaining(key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	b, ok := w.buckets[key]
	if !ok || w.now().After(b.expiresAt) {
		return w.limit
	}
	return max(w.limit-b.count, 0)
}

// Reset forgets key.
func (w *Window) Reset(key string) {
	w.mu.Lock()
	delete(w.buckets, key)
	w.mu.Unlock()
}

func (w *Window) pruneLocked(now time.Time) {
	for k, b := range w.buckets {
		if now.After(b.expiresAt) {
			delete(w.buckets, k)
		}
	}
}

// ClientIP returns the client address, preferring the first
// X-Forwarded-For entry, then X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Login throttles password sign-in attempts per client IP and per email.
type Login struct {
	byIP    *Window
	byEmail *Window
}

// Messages returned by Login.Check.
const (
	MsgTooManyFromIP     = "Too many sign-in attempts. Please wait a minute before trying again."
	MsgTooManyForAccount = "Too many sign-in attempts for this account. Please wait a few minutes."
)

// NewLogin allows 10 attempts per IP per minute and 5 per email per
// five minutes.
func NewLogin() *Login {
	return NewLoginWith(10, time.Minute, 5, 5*time.Minute)
}

// NewLoginWith builds a Login with explicit limits.
func NewLoginWith(ipLimit int, ipPeriod time.Duration, emailLimit int, emailPeriod time.Duration) *Login {
	return &Login{
		byIP:    NewWindow(ipLimit, ipPeriod),
		byEmail: NewWindow(emailLimit, emailPeriod),
	}
}

// Check records an attempt and reports whether it may proceed. When it
// may not, the returned message explains why.
func (l *Login) Check(r *http.Request, email string) (bool, string) {
	if !l.byIP.Allow(ClientIP(r)) {
		return false, MsgTooManyFromIP
	}
	if key := emailKey(email); key != "" && !l.byEmail.Allow(key) {
		return false, MsgTooManyForAccount
	}
	return true, ""
}

// Succeeded clears the per-email count after a successful sign-in.
func (l *Login) Succeeded(email string) {
	if key := emailKey(email); key != "" {
		l.byEmail.Reset(key)
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
