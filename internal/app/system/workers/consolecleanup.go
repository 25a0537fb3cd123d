// internal/app/system/workers/consolecleanup.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Evictor drops consoles that have been idle longer than ttl and reports
// how many it dropped. *console.Hub satisfies it.
type Evictor interface {
	EvictIdle(ttl time.Duration) int
}

// ConsoleCleanup is a background worker that closes idle admin consoles,
// stopping their timers and releasing their loaded data.
type ConsoleCleanup struct {
	hub      Evictor
	log      *zap.Logger
	interval time.Duration
	idleTTL  time.Duration
	stopCh   chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewConsoleCleanup creates a new console cleanup worker.
//
// Parameters:
//   - hub: the console hub
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 1 minute)
//   - idleTTL: how long a console must be unused before it is closed (e.g., 30 minutes)
func NewConsoleCleanup(hub Evictor, logger *zap.Logger, interval, idleTTL time.Duration) *ConsoleCleanup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCleanup{
		hub:      hub,
		log:      logger,
		interval: interval,
		idleTTL:  idleTTL,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *ConsoleCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("console cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_ttl", w.idleTTL))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *ConsoleCleanup) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("console cleanup worker stopped")
	})
}

func (w *ConsoleCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *ConsoleCleanup) cleanup() {
	if n := w.hub.EvictIdle(w.idleTTL); n > 0 {
		w.log.Debug("console sweep", zap.Int("evicted", n))
	}
}
