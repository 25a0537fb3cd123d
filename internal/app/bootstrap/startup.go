// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"sync"

	"github.com/dalemusser/waffle/config"
	"github.com/scanmenu/admindesk/internal/app/system/ratelimit"
	"github.com/scanmenu/admindesk/internal/app/system/timeouts"
	"github.com/scanmenu/admindesk/internal/app/system/workers"
	"go.uber.org/zap"
)

var (
	workersMu      sync.Mutex
	consoleSweeper *workers.ConsoleCleanup
	loginLimiters  []*ratelimit.LoginLimiter
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: timeout
// overrides are read and the idle-console sweeper is started.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("timeouts configured from environment",
			zap.Int("count", n),
			zap.Duration("ping", cur.Ping),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("long", cur.Long))
	}

	w := workers.NewConsoleCleanup(deps.Consoles, logger, appCfg.ConsoleSweepInterval, appCfg.ConsoleIdleTTL)
	w.Start()

	workersMu.Lock()
	consoleSweeper = w
	workersMu.Unlock()
	return nil
}
