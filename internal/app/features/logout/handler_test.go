package logout_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/nutrihub/internal/app/features/logout"
	"github.com/dalemusser/nutrihub/internal/app/system/auth"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

type failingEnder struct{}

func (failingEnder) EndSession(http.ResponseWriter, *http.Request) error {
	return errors.New("cookie store unavailable")
}

func TestServeLogout_RedirectsToRoot(t *testing.T) {
	handler := logout.NewHandler(newSessionManager(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location: got %q, want %q", loc, "/")
	}
}

func TestServeLogout_ClearsSignedInSession(t *testing.T) {
	sm := newSessionManager(t)
	handler := logout.NewHandler(sm, zap.NewNop())

	setup := httptest.NewRecorder()
	if err := sm.SignIn(setup, httptest.NewRequest(http.MethodGet, "/", nil), "abc123"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, c := range setup.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location: got %q, want %q", loc, "/")
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

func TestServeLogout_HTMX(t *testing.T) {
	handler := logout.NewHandler(newSessionManager(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if got := rec.Header().Get("HX-Redirect"); got != "/" {
		t.Errorf("HX-Redirect: got %q, want %q", got, "/")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for HTMX, got %d", http.StatusOK, rec.Code)
	}
}

func TestServeLogout_FailureStaysOnPage(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := logout.NewHandler(failingEnder{}, zap.New(core))

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Referer", "http://example.com/dashboard/views/abc")
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc == "/" {
		t.Errorf("failed logout should not go to %q", loc)
	}
	if logs.FilterMessage("logout failed").Len() != 1 {
		t.Error("expected the failure to be logged")
	}
}
