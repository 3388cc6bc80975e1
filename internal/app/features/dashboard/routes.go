// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/nutrihub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/dashboard").
//
// Mounting and view routes stay outside RequireSignedIn: a visitor without
// a session resolves to the home redirect through the view state.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeDashboard)

	r.Route("/views/{id}", func(vr chi.Router) {
		vr.Get("/", h.ServeView)
		vr.Get("/nutrition", h.ServeNutrition)
		vr.Post("/next", h.HandleNext)
		vr.Post("/prev", h.HandlePrev)
		vr.Post("/date", h.HandleDate)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/weekly", h.ServeWeekly)
	})

	return r
}
