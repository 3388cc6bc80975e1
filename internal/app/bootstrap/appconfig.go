// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). Framework-level settings such
// as ports, TLS and log level live in WAFFLE's CoreConfig instead.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in the pool (0 = driver default)
	MongoMinPoolSize uint64 // Minimum connections kept open (0 = driver default)

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: nutrihub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Session cookie lifetime

	// CSRFKey is the 32-byte key gorilla/csrf signs tokens with.
	CSRFKey string

	// BaseURL is the public origin, used for the Google OAuth redirect URL.
	BaseURL string

	// Timezone decides which calendar day is "today" on the dashboard.
	Timezone string

	// Google OAuth (sign-in is disabled when the client ID is blank)
	GoogleClientID     string
	GoogleClientSecret string

	// Dashboard view tuning
	DashboardSettleWait    time.Duration // how long a request waits for in-flight fetches
	DashboardMinLoading    time.Duration // minimum time a new view stays in Loading (0 = off)
	DashboardViewTTL       time.Duration // idle time after which a view is dropped
	DashboardSweepInterval time.Duration // how often idle views are swept
}

// Location returns the configured timezone, falling back to UTC.
// ValidateConfig has already rejected unknown zone names.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c AppConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
