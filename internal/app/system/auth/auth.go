// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// ErrNoSession is returned by EndSession when the request carries no session
// cookie that could be terminated.
var ErrNoSession = errors.New("auth: no session")

/*─────────────────────────────────────────────────────────────────────────────*
| Current user                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the signed-in identity injected into r.Context().
type SessionUser struct {
	ID    string // hex ObjectID of the users document
	Name  string
	Email string
}

// UserFetcher loads fresh user data for a session on each request, so a
// disabled account stops working immediately. Returning nil signs the
// request out.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithUser returns a shallow copy of r carrying u as the current user.
func WithUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects u the same way LoadSessionUser would. Tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return WithUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the middleware built on it.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure + SameSite=Lax; over
// http://localhost use secure=false so browsers accept them.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		return nil, fmt.Errorf("session name is empty")
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher installs the per-request user loader.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// Name is the cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// GetSession returns the named session. On a decode failure gorilla still
// returns a fresh session alongside the error, so callers may keep going.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// SignIn marks the session as authenticated for userID and saves it.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Warn("session decode failed during sign-in; starting fresh", zap.Error(err))
	}
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// EndSession expires the session cookie. It returns ErrNoSession when there
// was no authenticated session to end, and the save error if the deletion
// cookie could not be written.
func (sm *SessionManager) EndSession(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		// Still overwrite the cookie below; an undecodable cookie must go too.
		sm.log.Warn("session decode failed during logout", zap.Error(err))
	}
	wasAuth, _ := sess.Values[isAuthKey].(bool)

	// Deletion cookie must match the store's attributes or browsers keep the original.
	if opts := sm.store.Options; opts != nil {
		sess.Options = &sessions.Options{
			Domain:   opts.Domain,
			Path:     opts.Path,
			Secure:   opts.Secure,
			HttpOnly: opts.HttpOnly,
			SameSite: opts.SameSite,
		}
	}
	sess.Options.MaxAge = -1
	for k := range sess.Values {
		delete(sess.Values, k)
	}

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	if !wasAuth {
		return ErrNoSession
	}
	return nil
}

// LoadSessionUser injects the signed-in user into the request context.
// With a UserFetcher installed, the user record is re-read on every request.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		isAuth, _ := sess.Values[isAuthKey].(bool)
		uid, _ := sess.Values[userIDKey].(string)
		if !isAuth || uid == "" {
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{ID: uid}
		if sm.fetcher != nil {
			u = sm.fetcher.FetchUser(r.Context(), uid)
		}
		if u != nil {
			r = WithUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		ret := url.QueryEscape(r.URL.RequestURI())

		if IsHTMX(r) {
			w.Header().Set("HX-Redirect", "/login?return="+ret)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if WantsHTML(r) {
			http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// IsHTMX reports whether the request came from an htmx swap.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// WantsHTML is a light heuristic: htmx or an Accept header naming text/html.
func WantsHTML(r *http.Request) bool {
	if IsHTMX(r) {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// Redirect sends the browser to dest, using HX-Redirect for htmx requests so
// the whole page navigates instead of swapping a fragment.
func Redirect(w http.ResponseWriter, r *http.Request, dest string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
