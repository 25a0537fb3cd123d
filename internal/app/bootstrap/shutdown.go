// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the sweeper, closes every console and disconnects MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	workersMu.Lock()
	w := consoleSweeper
	consoleSweeper = nil
	limiters := loginLimiters
	loginLimiters = nil
	workersMu.Unlock()
	if w != nil {
		w.Stop()
	}
	for _, l := range limiters {
		l.Stop()
	}

	if deps.Consoles != nil {
		logger.Info("closing admin consoles", zap.Int("count", deps.Consoles.Len()))
		deps.Consoles.CloseAll()
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
