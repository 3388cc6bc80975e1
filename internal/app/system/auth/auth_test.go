package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/nutrihub/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// signedInCookies performs SignIn on a throwaway request and returns the cookies it set.
func signedInCookies(t *testing.T, sm *auth.SessionManager, userID string) []*http.Cookie {
	t.Helper()
	req := httptest.NewRequest("POST", "/login", nil)
	rec := httptest.NewRecorder()
	if err := sm.SignIn(rec, req, userID); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	return rec.Result().Cookies()
}

type stubFetcher struct {
	user  *auth.SessionUser
	calls int
}

func (f *stubFetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	f.calls++
	return f.user
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	_, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestRequireSignedIn_NoUser_RedirectsToLogin(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/user-form", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login?return=") {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestRequireSignedIn_NoUser_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard/weekly", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_NoUser_HTMX_ReturnsHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/user-form", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if hx := rec.Header().Get("HX-Redirect"); !strings.HasPrefix(hx, "/login") {
		t.Errorf("expected HX-Redirect to /login, got %q", hx)
	}
}

func TestLoadSessionUser_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	cookies := signedInCookies(t, sm, "507f1f77bcf86cd799439011")

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.ID != "507f1f77bcf86cd799439011" {
		t.Errorf("ID: got %q", got.ID)
	}
}

func TestLoadSessionUser_FetcherCanRejectUser(t *testing.T) {
	sm := newTestSessionManager(t)
	fetcher := &stubFetcher{user: nil}
	sm.SetUserFetcher(fetcher)
	cookies := signedInCookies(t, sm, "507f1f77bcf86cd799439011")

	found := true
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if fetcher.calls != 1 {
		t.Errorf("fetcher calls: got %d, want 1", fetcher.calls)
	}
	if found {
		t.Error("expected no user when fetcher returns nil")
	}
}

func TestLoadSessionUser_NoCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	found := true
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if found {
		t.Error("expected no user without a session cookie")
	}
}

func TestEndSession_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	cookies := signedInCookies(t, sm, "507f1f77bcf86cd799439011")

	req := httptest.NewRequest("POST", "/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()

	if err := sm.EndSession(rec, req); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge: got %d, want -1", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set for deletion")
	}
}

func TestEndSession_NoSession(t *testing.T) {
	sm := newTestSessionManager(t)

	err := sm.EndSession(httptest.NewRecorder(), httptest.NewRequest("POST", "/logout", nil))
	if !errors.Is(err, auth.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	user, ok := auth.CurrentUser(httptest.NewRequest("GET", "/", nil))
	if ok || user != nil {
		t.Error("expected no user in a bare request")
	}
}

func TestRedirect_HTMX(t *testing.T) {
	req := httptest.NewRequest("GET", "/dashboard/views/x", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	auth.Redirect(rec, req, "/onboarding")

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d", rec.Code)
	}
	if hx := rec.Header().Get("HX-Redirect"); hx != "/onboarding" {
		t.Errorf("HX-Redirect: got %q", hx)
	}
}

func TestRedirect_Plain(t *testing.T) {
	rec := httptest.NewRecorder()
	auth.Redirect(rec, httptest.NewRequest("GET", "/dashboard", nil), "/home")

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/home" {
		t.Errorf("Location: got %q", loc)
	}
}
