// Package timeouts provides centralized timeout values for handler and
// background operations.
//
// Tiers:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads (profile, one day of nutrition data)
//   - Medium: range reads and writes (weekly series, profile updates)
//   - Long: startup work such as index creation
//
// Values can be overridden at startup with Configure or ConfigureFromEnv.
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var (
	mu     sync.RWMutex
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
)

// Ping returns the timeout for health checks.
func Ping() time.Duration { return get(&ping) }

// Short returns the timeout for single-document reads.
func Short() time.Duration { return get(&short) }

// Medium returns the timeout for range reads and writes.
func Medium() time.Duration { return get(&medium) }

// Long returns the timeout for startup and maintenance work.
func Long() time.Duration { return get(&long) }

func get(v *time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return *v
}

// Config holds timeout configuration values.
// Zero values are ignored (current values are kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Configure sets custom timeout values. Call during startup, before
// handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	for _, s := range []struct {
		dst *time.Duration
		val time.Duration
	}{
		{&ping, cfg.Ping},
		{&short, cfg.Short},
		{&medium, cfg.Medium},
		{&long, cfg.Long},
	} {
		if s.val > 0 {
			*s.dst = s.val
		}
	}
}

// Reset restores all timeouts to their default values. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping, short, medium, long = DefaultPing, DefaultShort, DefaultMedium, DefaultLong
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM and
// TIMEOUT_LONG (Go duration strings, e.g. "750ms", "5s"). Unset or invalid
// values are skipped. Returns how many values were applied.
func ConfigureFromEnv() int {
	var cfg Config
	applied := 0
	for _, e := range []struct {
		name string
		dst  *time.Duration
	}{
		{"TIMEOUT_PING", &cfg.Ping},
		{"TIMEOUT_SHORT", &cfg.Short},
		{"TIMEOUT_MEDIUM", &cfg.Medium},
		{"TIMEOUT_LONG", &cfg.Long},
	} {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*e.dst = d
			applied++
		}
	}
	Configure(cfg)
	return applied
}

// Current returns the active configuration, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Medium: medium, Long: long}
}

// WithTimeout creates a context with timeout whose cancel function logs a
// warning when the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "weekly series")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}

// Detached returns a context that keeps parent's values but not its
// cancellation, bounded by timeout. Dashboard fetches outlive the request
// that started them, so they use this instead of r.Context().
func Detached(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}
