// internal/app/features/dashboard/pages.go
package dashboard

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/nutrihub/internal/app/features/errors"
	"github.com/dalemusser/nutrihub/internal/app/system/auth"
	"github.com/dalemusser/nutrihub/internal/app/system/authz"
	"github.com/dalemusser/nutrihub/internal/app/system/calendar"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard?date= – mount a view                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeDashboard mounts a new view for the session user and answers with
// whatever state it reaches within the settle window. Without a session
// the view starts no fetches and resolves to the home redirect.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	selected := calendar.ParseOr(strings.TrimSpace(r.URL.Query().Get("date")), calendar.Day{})

	_, uid, ok := authz.UserCtx(r)
	if !ok {
		v := NewView("", primitive.NilObjectID, h.Deps)
		v.Mount(r.Context(), selected)
		h.respond(w, r, v.Snapshot())
		return
	}

	v := h.Views.Create(uid, h.Deps)
	v.Mount(r.Context(), selected)
	snap := h.settle(r.Context(), v, Snapshot.Settled)

	h.Log.Debug("dashboard view mounted",
		zap.String("view_id", v.ID),
		zap.String("user_id", uid.Hex()),
		zap.String("selected", snap.SelectedDate.Format()))

	h.respond(w, r, snap)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/views/{id} – poll / re-render                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.respond(w, r, h.settle(r.Context(), v, Snapshot.Settled))
}

// ServeNutrition re-renders only the nutrition display; the partial polls
// itself while the selected-date fetch is in flight.
func (h *Handler) ServeNutrition(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.respondNutrition(w, r, h.settle(r.Context(), v, selectedSettled))
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /dashboard/views/{id}/next|prev|date – navigate                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, func(ctx context.Context, v *View) { v.Next(ctx) })
}

func (h *Handler) HandlePrev(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, func(ctx context.Context, v *View) { v.Prev(ctx) })
}

func (h *Handler) HandleDate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.HTMXBadRequest(w, r, "Invalid form data.", "/dashboard")
		return
	}
	day, err := calendar.Parse(strings.TrimSpace(r.FormValue("date")))
	if err != nil {
		uierrors.HTMXBadRequest(w, r, "Please pick a valid date.", "/dashboard")
		return
	}
	h.navigate(w, r, func(ctx context.Context, v *View) { v.SelectDate(ctx, day) })
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request, move func(context.Context, *View)) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	move(r.Context(), v)

	if !auth.IsHTMX(r) {
		// Post/redirect/get back to the same view.
		http.Redirect(w, r, viewURL(v.ID), http.StatusSeeOther)
		return
	}
	h.respondNutrition(w, r, h.settle(r.Context(), v, selectedSettled))
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// lookup finds the view named in the URL for the session user. Without a
// session it redirects home; an unknown or expired view sends the browser
// to mount a fresh one.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*View, bool) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		auth.Redirect(w, r, HomePath)
		return nil, false
	}
	v, err := h.Views.Get(chi.URLParam(r, "id"), uid)
	if err != nil {
		h.Log.Debug("dashboard view lookup failed",
			zap.String("view_id", chi.URLParam(r, "id")),
			zap.Error(err))
		auth.Redirect(w, r, "/dashboard")
		return nil, false
	}
	return v, true
}

// respond renders or redirects according to the resolved state.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, snap Snapshot) {
	state := Resolve(snap, h.Deps.now())
	if dest := state.RedirectPath(); dest != "" {
		auth.Redirect(w, r, dest)
		return
	}

	data := h.pageData(r, snap, state)
	if auth.IsHTMX(r) {
		h.render.RenderSnippet(w, "dashboard_body", data)
		return
	}
	h.render.Render(w, r, "dashboard", data)
}

// respondNutrition answers navigation with the nutrition partial and an
// out-of-band chart section for the new date, unless the view has left
// Ready (e.g. the profile went incomplete), in which case the whole view
// is answered.
func (h *Handler) respondNutrition(w http.ResponseWriter, r *http.Request, snap Snapshot) {
	if Resolve(snap, h.Deps.now()) != StateReady || !auth.IsHTMX(r) {
		h.respond(w, r, snap)
		return
	}
	h.render.RenderSnippet(w, "dashboard_navigation", h.navigationData(r, snap))
}
