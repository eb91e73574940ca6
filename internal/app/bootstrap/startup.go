// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	adminstore "github.com/dalemusser/labportal/internal/app/store/admins"
	"github.com/dalemusser/labportal/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		c := timeouts.Current()
		logger.Info("timeouts overridden from environment",
			zap.Int("applied", n),
			zap.Duration("short", c.Short),
			zap.Duration("medium", c.Medium),
			zap.Duration("long", c.Long),
			zap.Duration("batch", c.Batch),
		)
	}

	return seedAdmin(ctx, adminstore.New(deps.MongoDatabase), appCfg, logger)
}

// seedAdmin creates the configured admin account if it does not exist yet.
// An existing account is never modified.
func seedAdmin(ctx context.Context, admins *adminstore.Store, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.AdminUsername == "" || appCfg.AdminPassword == "" {
		return nil
	}
	created, err := admins.EnsureAdmin(ctx, appCfg.AdminUsername, appCfg.AdminPassword)
	if err != nil {
		logger.Error("admin seeding failed", zap.Error(err))
		return err
	}
	if created {
		logger.Info("admin account created", zap.String("username", appCfg.AdminUsername))
	}
	return nil
}
