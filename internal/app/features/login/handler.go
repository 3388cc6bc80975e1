// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/nutrihub/internal/app/features/errors"
	userstore "github.com/dalemusser/nutrihub/internal/app/store/users"
	"github.com/dalemusser/nutrihub/internal/app/system/authutil"
	"github.com/dalemusser/nutrihub/internal/app/system/normalize"
	"github.com/dalemusser/nutrihub/internal/app/system/ratelimit"
	"github.com/dalemusser/nutrihub/internal/app/system/timeouts"
	"github.com/dalemusser/nutrihub/internal/app/system/viewdata"
	"github.com/dalemusser/nutrihub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Users is the slice of the user store the login flows need.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
}

// SessionSigner marks the browser session as signed in.
type SessionSigner interface {
	SignIn(w http.ResponseWriter, r *http.Request, userID string) error
}

type Handler struct {
	Users         Users
	Sessions      SessionSigner
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
	GoogleEnabled bool

	// Throttle limits password attempts; nil disables it.
	Throttle *ratelimit.Login
}

func NewHandler(users Users, sessions SessionSigner, googleEnabled bool, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         users,
		Sessions:      sessions,
		ErrLog:        errLog,
		Log:           logger,
		GoogleEnabled: googleEnabled,
		Throttle:      ratelimit.NewLogin(),
	}
}

// Messages shown on the login form. Unknown email and wrong password share
// one message so the form does not reveal which accounts exist.
const (
	msgBadCredentials = "Invalid email or password."
	msgDisabled       = "Your account is currently disabled."
	msgNoGoogle       = "Google sign-in is not configured."
)

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

type signupFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	DisplayName   string
	PasswordRules string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	ret := strings.TrimSpace(r.FormValue("return"))
	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email)
		return
	}

	if h.Throttle != nil {
		if ok, msg := h.Throttle.Check(r, email); !ok {
			h.Log.Warn("login throttled",
				zap.String("email", email),
				zap.String("ip", ratelimit.ClientIP(r)))
			w.WriteHeader(http.StatusTooManyRequests)
			h.renderFormWithError(w, r, msg, email)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.Log.Info("login failed: unknown email", zap.String("email", email))
		h.renderFormWithError(w, r, msgBadCredentials, email)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.", "/login")
		return
	}

	if u.IsDisabled() {
		h.Log.Info("login failed: user disabled", zap.String("user_id", u.ID.Hex()))
		h.renderFormWithError(w, r, msgDisabled, email)
		return
	}

	/*── route by auth method ───────────────────────────────────────────────*/

	switch u.AuthMethod {
	case models.AuthMethodGoogle:
		if !h.GoogleEnabled {
			h.renderFormWithError(w, r, msgNoGoogle, email)
			return
		}
		dest := "/auth/google"
		if ret != "" {
			dest += "?return=" + ret
		}
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	case models.AuthMethodPassword:
	default:
		h.renderFormWithError(w, r, "Unknown authentication method.", email)
		return
	}

	if u.PasswordHash == nil || !authutil.CheckPassword(password, *u.PasswordHash) {
		h.Log.Info("login failed: bad password", zap.String("user_id", u.ID.Hex()))
		h.renderFormWithError(w, r, msgBadCredentials, email)
		return
	}

	if h.Throttle != nil {
		h.Throttle.Succeeded(email)
	}
	h.signInAndRedirect(w, r, u, urlutil.SafeReturn(ret, "", "/dashboard"))
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET/POST /login/signup                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "login_signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Create account", "/login"),
		PasswordRules: authutil.PasswordRules(),
	})
}

func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login/signup")
		return
	}

	email := normalize.Email(r.FormValue("email"))
	name := normalize.Name(r.FormValue("display_name"))
	password := r.FormValue("password")

	fail := func(msg string) {
		templates.Render(w, r, "login_signup", signupFormData{
			BaseVM:        viewdata.NewBaseVM(r, "Create account", "/login"),
			Error:         msg,
			Email:         email,
			DisplayName:   name,
			PasswordRules: authutil.PasswordRules(),
		})
	}

	if email == "" || !strings.Contains(email, "@") {
		fail("Please enter a valid email address.")
		return
	}
	if password != r.FormValue("confirm") {
		fail("Passwords do not match.")
		return
	}
	if err := authutil.ValidatePassword(password); err != nil {
		fail(err.Error())
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password", err, "A server error occurred.", "/login/signup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Email:        email,
		AuthMethod:   models.AuthMethodPassword,
		PasswordHash: &hash,
		Profile:      models.UserProfile{DisplayName: name},
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		fail("An account with that email already exists.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "create user", err, "A server error occurred.", "/login/signup")
		return
	}

	h.Log.Info("user signed up", zap.String("user_id", u.ID.Hex()))
	// A new account has no profile yet.
	h.signInAndRedirect(w, r, &u, "/onboarding")
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) signInAndRedirect(w http.ResponseWriter, r *http.Request, u *models.User, dest string) {
	if err := h.Sessions.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		h.renderFormWithError(w, r, "Unable to create session. Please try again.", u.Email)
		return
	}
	h.Log.Info("login success",
		zap.String("user_id", u.ID.Hex()),
		zap.String("auth_method", u.AuthMethod))
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email string) {
	// From POST, "return" will be in the form; from GET, we might rely on the query.
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}
