// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	userstore "github.com/dalemusser/clubsphere/internal/app/store/users"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It
// builds the shared services, bootstraps the admin account and starts the
// reconciliation sweep.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Gateway: appCfg.GatewayTimeout})

	if err := deps.services.init(ctx, appCfg, deps, logger); err != nil {
		logger.Error("service setup failed", zap.Error(err))
		return err
	}

	if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
		return err
	}

	return deps.services.startSweep(appCfg, logger)
}

// ensureAdmin promotes email to admin, creating the user if needed.
// A blank email is a no-op.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	if email == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	if err := userstore.New(deps.MongoDatabase).EnsureAdmin(ctx, email); err != nil {
		logger.Error("admin bootstrap failed", zap.String("email", email), zap.Error(err))
		return err
	}
	logger.Info("admin account ensured", zap.String("email", email))
	return nil
}
