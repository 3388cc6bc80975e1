// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	dashboardfeature "github.com/dalemusser/nutrihub/internal/app/features/dashboard"
	"github.com/dalemusser/nutrihub/internal/app/resources"
	"github.com/dalemusser/nutrihub/internal/app/system/timeouts"
	"github.com/dalemusser/nutrihub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Dashboard views live for the life of the process. Startup creates the
// registry and its sweeper; BuildHandler serves from the registry and
// Shutdown stops the sweeper.
var (
	views   *dashboardfeature.Registry
	sweeper *workers.ViewSweeper
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("timeouts overridden from environment",
			zap.Int("overrides", n),
			zap.Duration("ping", cur.Ping),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("long", cur.Long))
	}

	resources.LoadSharedTemplates()

	views = dashboardfeature.NewRegistry()
	sweeper = workers.NewViewSweeper(views, logger, appCfg.DashboardSweepInterval, appCfg.DashboardViewTTL)
	sweeper.Start()

	return nil
}
