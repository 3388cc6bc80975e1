// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/dalemusser/nutrihub/internal/app/features/authgoogle"
	dashboardfeature "github.com/dalemusser/nutrihub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/nutrihub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/nutrihub/internal/app/features/health"
	homefeature "github.com/dalemusser/nutrihub/internal/app/features/home"
	loginfeature "github.com/dalemusser/nutrihub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/nutrihub/internal/app/features/logout"
	profilefeature "github.com/dalemusser/nutrihub/internal/app/features/profile"
	nutritionstore "github.com/dalemusser/nutrihub/internal/app/store/nutrition"
	oauthstatestore "github.com/dalemusser/nutrihub/internal/app/store/oauthstate"
	profilestore "github.com/dalemusser/nutrihub/internal/app/store/profiles"
	userstore "github.com/dalemusser/nutrihub/internal/app/store/users"
	"github.com/dalemusser/nutrihub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. NutriHub boots the template engine,
// applies CSRF and session middleware, and mounts the public pages, sign-in,
// onboarding, profile editing and the dashboard.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser re-reads the user on each request so disabled
	// accounts lose access immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	users := userstore.New(deps.MongoDatabase)
	profiles := profilestore.New(deps.MongoDatabase)
	nutrition := nutritionstore.New(deps.MongoDatabase)

	r := chi.NewRouter()

	if !secure {
		r.Use(plaintextCSRF)
	}
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure(logger))),
	))

	// Loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))
	r.Mount(dashboardfeature.HomePath, homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(users, sessionMgr, appCfg.GoogleEnabled(), errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	if appCfg.GoogleEnabled() {
		googleHandler := authgooglefeature.NewHandler(users, oauthstatestore.New(deps.MongoDatabase), sessionMgr,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Profile forms
	profileHandler := profilefeature.NewHandler(profiles, users, errLog, logger)
	r.Mount("/onboarding", profilefeature.OnboardingRoutes(profileHandler, sessionMgr))
	r.Mount("/user-form", profilefeature.EditRoutes(profileHandler, sessionMgr))

	// Dashboard
	if views == nil {
		views = dashboardfeature.NewRegistry()
	}
	dashDeps := dashboardfeature.Deps{
		Profiles:   profiles,
		Nutrition:  nutrition,
		Location:   appCfg.Location(),
		MinLoading: appCfg.DashboardMinLoading,
		Log:        logger,
	}
	dashboardHandler := dashboardfeature.NewHandler(dashDeps, views, appCfg.DashboardSettleWait, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}

// plaintextCSRF tells gorilla/csrf the request arrived over plain HTTP so
// its origin checks work in local development.
func plaintextCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func csrfFailure(logger *zap.Logger) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("csrf check failed",
			zap.String("path", r.URL.Path),
			zap.Error(csrf.FailureReason(r)))
		msg := "Your form expired. Please reload the page and try again."
		errorsfeature.HTMXError(w, r, http.StatusForbidden, msg, func() {
			errorsfeature.RenderForbidden(w, r, msg, "")
		})
	}
}
