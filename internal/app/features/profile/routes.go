// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/nutrihub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// OnboardingRoutes is mounted at /onboarding.
func OnboardingRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeOnboarding)
	r.Post("/", h.HandleOnboarding)
	return r
}

// EditRoutes is mounted at /user-form.
func EditRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeEdit)
	r.Post("/", h.HandleEdit)
	r.Post("/password", h.HandleChangePassword)
	return r
}
