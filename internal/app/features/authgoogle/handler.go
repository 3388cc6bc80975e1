// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/nutrihub/internal/app/system/normalize"
	"github.com/dalemusser/nutrihub/internal/app/system/timeouts"
	"github.com/dalemusser/nutrihub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// stateTTL bounds how long a consent round trip may take.
const stateTTL = 10 * time.Minute

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// StateStore persists the anti-forgery state between redirect and callback.
type StateStore interface {
	Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error
	Validate(ctx context.Context, state string) (returnURL string, valid bool, err error)
}

// Users is the slice of the user store Google sign-in needs.
type Users interface {
	GetByGoogleSub(ctx context.Context, sub string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	LinkGoogle(ctx context.Context, id primitive.ObjectID, sub string) error
}

// SessionSigner marks the browser session as signed in.
type SessionSigner interface {
	SignIn(w http.ResponseWriter, r *http.Request, userID string) error
}

// Handler handles Google OAuth authentication.
type Handler struct {
	Log      *zap.Logger
	Users    Users
	States   StateStore
	Sessions SessionSigner

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://nutrihub.example.com/auth/google/callback"

	// identify turns an authorization code into the Google account behind it.
	identify func(ctx context.Context, code string) (*googleUserInfo, error)
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	users Users,
	states StateStore,
	sessions SessionSigner,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	h := &Handler{
		Log:          logger,
		Users:        users,
		States:       states,
		Sessions:     sessions,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
	h.identify = h.exchangeAndFetch
	return h
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.redirectToLogin(w, r, "google_not_configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}

	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.States.Save(ctx, state, returnURL, time.Now().UTC().Add(stateTTL)); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}

	url := h.oauth2Config().AuthCodeURL(state)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code, resolves the Google account to a user (creating one on   |
| first sign-in) and starts the session.                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		h.redirectToLogin(w, r, "google_denied")
		return
	}

	state := query.Get(r, "state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		h.redirectToLogin(w, r, "invalid_state")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.States.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		h.redirectToLogin(w, r, "invalid_state")
		return
	}

	code := query.Get(r, "code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.redirectToLogin(w, r, "invalid_code")
		return
	}

	googleUser, err := h.identify(ctx, code)
	if err != nil {
		h.Log.Error("failed to identify Google user", zap.Error(err))
		h.redirectToLogin(w, r, "user_info")
		return
	}

	h.Log.Debug("Google user info fetched",
		zap.String("google_id", googleUser.ID),
		zap.String("email", googleUser.Email))

	user, created, err := h.resolveUser(ctxTimeout, googleUser)
	switch {
	case errors.Is(err, errUserDisabled):
		h.Log.Info("Google OAuth: user disabled", zap.String("google_id", googleUser.ID))
		h.redirectToLogin(w, r, "account_disabled")
		return
	case errors.Is(err, errUnverifiedEmail):
		h.Log.Info("Google OAuth: email not verified", zap.String("google_id", googleUser.ID))
		h.redirectToLogin(w, r, "unverified_email")
		return
	case err != nil:
		h.Log.Error("failed to resolve Google user", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}

	if err := h.Sessions.SignIn(w, r, user.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		h.redirectToLogin(w, r, "session")
		return
	}

	h.Log.Info("login success",
		zap.String("user_id", user.ID.Hex()),
		zap.String("auth_method", models.AuthMethodGoogle),
		zap.Bool("new_user", created))

	dest := urlutil.SafeReturn(returnURL, "", "/dashboard")
	if created {
		dest = "/onboarding"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| User lookup                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

var (
	errUserDisabled    = errors.New("user disabled")
	errUnverifiedEmail = errors.New("google email not verified")
)

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *Handler) exchangeAndFetch(ctx context.Context, code string) (*googleUserInfo, error) {
	cfg := h.oauth2Config()
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return fetchGoogleUserInfo(ctx, cfg.Client(ctx, token), userInfoURL)
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, client *http.Client, endpoint string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.ID == "" {
		return nil, errors.New("user info has no id")
	}
	return &info, nil
}

// resolveUser finds the account for a Google identity. Lookup order:
//  1. google_sub (already linked)
//  2. verified email, which links the account
//  3. otherwise a new google account is created
func (h *Handler) resolveUser(ctx context.Context, gu *googleUserInfo) (*models.User, bool, error) {
	u, err := h.Users.GetByGoogleSub(ctx, gu.ID)
	switch {
	case err == nil:
		if u.IsDisabled() {
			return nil, false, errUserDisabled
		}
		return u, false, nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, false, err
	}

	if !gu.EmailVerified {
		return nil, false, errUnverifiedEmail
	}
	email := normalize.Email(gu.Email)

	u, err = h.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.IsDisabled() {
			return nil, false, errUserDisabled
		}
		if err := h.Users.LinkGoogle(ctx, u.ID, gu.ID); err != nil {
			h.Log.Warn("failed to link google account",
				zap.Error(err),
				zap.String("user_id", u.ID.Hex()))
		}
		return u, false, nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, false, err
	}

	sub := gu.ID
	created, err := h.Users.Create(ctx, models.User{
		Email:      email,
		AuthMethod: models.AuthMethodGoogle,
		GoogleSub:  &sub,
		Profile:    models.UserProfile{DisplayName: gu.Name},
	})
	if err != nil {
		return nil, false, fmt.Errorf("create google user: %w", err)
	}
	return &created, true, nil
}

func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request, errorCode string) {
	http.Redirect(w, r, "/login?error="+errorCode, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", errors.New("generate oauth state: no randomness available")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
