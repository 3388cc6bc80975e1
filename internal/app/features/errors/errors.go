// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/nutrihub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the basic view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Status  int
	Message string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound renders the friendly 404 page for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderNotFound(w, r, "We couldn't find that page.", "/")
}

// Unauthorized renders a friendly "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	RenderUnauthorized(w, r, "/login")
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, title, backURL),
		Status:  status,
		Message: msg,
	}
	if backURL != "" {
		data.BackURL = backURL
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}
