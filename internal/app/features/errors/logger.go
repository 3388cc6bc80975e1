// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/nutrihub/internal/app/system/auth"
	"go.uber.org/zap"
)

// ErrorLogger logs a handler failure with request context and then shows
// the user a friendly page. The raw error never reaches the response.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger wraps logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
	if u, ok := auth.CurrentUser(r); ok {
		fs = append(fs, zap.String("user_id", u.ID))
	}
	return fs
}

// LogServerError logs at error level and renders the server error page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Error(logMsg, e.fields(r, err)...)
	RenderServerError(w, r, userMsg, backURL)
}

// LogBadRequest logs at warn level and renders the bad request page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Warn(logMsg, e.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}
