// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minSessionKeyLen is the shortest session key accepted in production.
const minSessionKeyLen = 32

// csrfKeyLen is the exact key length gorilla/csrf expects.
const csrfKeyLen = 32

// appConfigKeys defines the app-specific configuration keys.
// These are loaded via WAFFLE's config system with the NUTRIHUB_ prefix.
var appConfigKeys = []config.AppKey{
	// MongoDB
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "nutrihub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},

	// Sessions
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "nutrihub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime"},

	// CSRF
	{Name: "csrf_key", Default: "dev-only-csrf-key-0123456789abcd", Desc: "32-byte CSRF token key"},

	// Public origin
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL (used for OAuth callbacks)"},

	// Calendar
	{Name: "timezone", Default: "UTC", Desc: "IANA timezone deciding the dashboard's today"},

	// Google OAuth
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID (blank disables Google sign-in)"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Dashboard
	{Name: "dashboard_settle_wait", Default: "1500ms", Desc: "How long a dashboard request waits for in-flight fetches"},
	{Name: "dashboard_min_loading", Default: "0s", Desc: "Minimum time a new dashboard view shows the loading screen"},
	{Name: "dashboard_view_ttl", Default: "30m", Desc: "Idle time after which a dashboard view is dropped"},
	{Name: "dashboard_sweep_interval", Default: "1m", Desc: "How often idle dashboard views are swept"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, NUTRIHUB_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "NUTRIHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		CSRFKey:  appValues.String("csrf_key"),
		BaseURL:  appValues.String("base_url"),
		Timezone: appValues.String("timezone"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		DashboardSettleWait:    appValues.Duration("dashboard_settle_wait", 1500*time.Millisecond),
		DashboardMinLoading:    appValues.Duration("dashboard_min_loading", 0),
		DashboardViewTTL:       appValues.Duration("dashboard_view_ttl", 30*time.Minute),
		DashboardSweepInterval: appValues.Duration("dashboard_sweep_interval", time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}

	if appCfg.Timezone != "" {
		if _, err := time.LoadLocation(appCfg.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", appCfg.Timezone, err)
		}
	}

	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < minSessionKeyLen {
		return fmt.Errorf("session_key must be at least %d bytes in production", minSessionKeyLen)
	}
	if len(appCfg.CSRFKey) != csrfKeyLen {
		return fmt.Errorf("csrf_key must be exactly %d bytes, got %d", csrfKeyLen, len(appCfg.CSRFKey))
	}

	if (appCfg.GoogleClientID == "") != (appCfg.GoogleClientSecret == "") {
		return fmt.Errorf("google_client_id and google_client_secret must be set together")
	}

	if appCfg.DashboardSettleWait < 0 || appCfg.DashboardMinLoading < 0 {
		return fmt.Errorf("dashboard wait durations must not be negative")
	}
	if appCfg.DashboardViewTTL <= 0 || appCfg.DashboardSweepInterval <= 0 {
		return fmt.Errorf("dashboard_view_ttl and dashboard_sweep_interval must be positive")
	}

	if appCfg.GoogleEnabled() {
		logger.Info("google sign-in enabled")
	}
	return nil
}
