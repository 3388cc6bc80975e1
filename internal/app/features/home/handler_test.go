package home

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/nutrihub/internal/testutil"
	"go.uber.org/zap"
)

func TestPageData_Anonymous(t *testing.T) {
	h := NewHandler(zap.NewNop())
	data := h.pageData(httptest.NewRequest("GET", "/", nil))

	if data.IsLoggedIn {
		t.Error("anonymous visitor reported as logged in")
	}
	if data.LoginURL != "/login" {
		t.Errorf("LoginURL: got %q, want %q", data.LoginURL, "/login")
	}
	if data.Title != "Welcome" {
		t.Errorf("Title: got %q, want %q", data.Title, "Welcome")
	}
}

func TestPageData_SignedIn(t *testing.T) {
	h := NewHandler(zap.NewNop())
	req := testutil.NewAuthenticatedRequest("GET", "/home", testutil.RegularUser())
	data := h.pageData(req)

	if !data.IsLoggedIn {
		t.Error("signed-in user not reported as logged in")
	}
	if data.DashboardURL != "/dashboard" {
		t.Errorf("DashboardURL: got %q", data.DashboardURL)
	}
}

func TestServeRoot_DoesNotPanicOutsideRender(t *testing.T) {
	h := NewHandler(zap.NewNop())
	rec := httptest.NewRecorder()

	// Template rendering may panic without an initialized engine.
	func() {
		defer func() { _ = recover() }()
		h.ServeRoot(rec, httptest.NewRequest("GET", "/", nil))
	}()
}
