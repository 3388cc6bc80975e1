// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Renderer executes named templates. The default goes through the
// shared template engine; tests substitute a recorder.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, name string, data any)
	RenderSnippet(w http.ResponseWriter, name string, data any)
}

type engineRenderer struct{}

func (engineRenderer) Render(w http.ResponseWriter, r *http.Request, name string, data any) {
	templates.Render(w, r, name, data)
}

func (engineRenderer) RenderSnippet(w http.ResponseWriter, name string, data any) {
	templates.RenderSnippet(w, name, data)
}

type Handler struct {
	Log   *zap.Logger
	Views *Registry
	Deps  Deps

	// SettleWait is how long a request waits for in-flight fetches before
	// answering with whatever state the view is in.
	SettleWait time.Duration

	render Renderer
}

func NewHandler(deps Deps, views *Registry, settleWait time.Duration, logger *zap.Logger) *Handler {
	if deps.Log == nil {
		deps.Log = logger
	}
	return &Handler{
		Log:        logger,
		Views:      views,
		Deps:       deps,
		SettleWait: settleWait,
		render:     engineRenderer{},
	}
}

// WithRenderer replaces the template renderer.
func (h *Handler) WithRenderer(r Renderer) *Handler {
	h.render = r
	return h
}

// settle waits up to SettleWait for cond, then returns the view's state.
func (h *Handler) settle(ctx context.Context, v *View, cond func(Snapshot) bool) Snapshot {
	if h.SettleWait <= 0 {
		return v.Snapshot()
	}
	wctx, cancel := context.WithTimeout(ctx, h.SettleWait)
	defer cancel()
	snap, _ := v.WaitFor(wctx, cond)
	return snap
}

func selectedSettled(s Snapshot) bool { return !s.Selected.Pending() }
