// internal/app/features/home/handler.go
package home

import (
	"net/http"

	"github.com/dalemusser/nutrihub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the public landing page.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type homeData struct {
	viewdata.BaseVM
	DashboardURL string
	LoginURL     string
	GoogleURL    string
}

func (h *Handler) pageData(r *http.Request) homeData {
	return homeData{
		BaseVM:       viewdata.NewBaseVM(r, "Welcome", "/"),
		DashboardURL: "/dashboard",
		LoginURL:     "/login",
		GoogleURL:    "/auth/google",
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /, GET /home – landing                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "home", h.pageData(r))
}
