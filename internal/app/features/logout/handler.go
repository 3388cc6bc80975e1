// internal/app/features/logout/handler.go
package logout

import (
	"errors"
	"net/http"

	"github.com/dalemusser/nutrihub/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"go.uber.org/zap"
)

// SessionEnder expires the caller's session cookie.
type SessionEnder interface {
	EndSession(w http.ResponseWriter, r *http.Request) error
}

type Handler struct {
	Log      *zap.Logger
	Sessions SessionEnder
}

func NewHandler(sessions SessionEnder, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		Sessions: sessions,
	}
}

// ServeLogout handles POST /logout.
//
// On success the browser goes to "/". If the session cannot be ended the
// failure is only logged and the user is sent back to the page they were on.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	err := h.Sessions.EndSession(w, r)
	switch {
	case err == nil:
		if u, ok := auth.CurrentUser(r); ok {
			h.Log.Info("user signed out", zap.String("user_id", u.ID))
		}
	case errors.Is(err, auth.ErrNoSession):
		h.Log.Debug("logout without an active session")
	default:
		h.Log.Error("logout failed", zap.Error(err))
		auth.Redirect(w, r, httpnav.ResolveBackURL(r, "/dashboard"))
		return
	}

	auth.Redirect(w, r, "/")
}
