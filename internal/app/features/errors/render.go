// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/nutrihub/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	renderPage(w, r, http.StatusUnauthorized, "Sign in required", "Please sign in to continue.", backURL)
}

// RenderForbidden shows a friendly "not allowed" page.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderPage(w, r, http.StatusForbidden, "Not allowed", msg, backURL)
}

// RenderNotFound shows a friendly "not found" page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderPage(w, r, http.StatusNotFound, "Not found", msg, backURL)
}

// RenderBadRequest shows a friendly "bad request" page.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderPage(w, r, http.StatusBadRequest, "Something's not right", msg, backURL)
}

// RenderServerError shows a friendly "something went wrong" page.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderPage(w, r, http.StatusInternalServerError, "Something went wrong", msg, backURL)
}

// HTMXError answers an HTMX request with a plain status and message that
// the client-side error handler can toast. Non-HTMX requests get fallback.
func HTMXError(w http.ResponseWriter, r *http.Request, status int, msg string, fallback func()) {
	if !auth.IsHTMX(r) {
		fallback()
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

// HTMXBadRequest is HTMXError with a 400 and a bad-request page fallback.
func HTMXBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusBadRequest, msg, func() {
		RenderBadRequest(w, r, msg, backURL)
	})
}
