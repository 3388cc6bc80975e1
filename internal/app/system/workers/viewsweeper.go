// internal/app/system/workers/viewsweeper.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// IdleSweeper drops entries unused for longer than idle and reports how
// many it removed.
type IdleSweeper interface {
	SweepIdle(idle time.Duration) int
}

// ViewSweeper is a background worker that evicts abandoned dashboard views.
type ViewSweeper struct {
	views    IdleSweeper
	log      *zap.Logger
	interval time.Duration
	idle     time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewViewSweeper creates a new view sweeper.
//
// Parameters:
//   - views: the live view registry
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 1 minute)
//   - idle: how long a view may go unused before it is dropped (e.g., 30 minutes)
func NewViewSweeper(views IdleSweeper, logger *zap.Logger, interval, idle time.Duration) *ViewSweeper {
	return &ViewSweeper{
		views:    views,
		log:      logger,
		interval: interval,
		idle:     idle,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *ViewSweeper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("view sweeper started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_threshold", w.idle))
}

// Stop signals the worker to stop and waits for it to finish. Calling it
// more than once is safe.
func (w *ViewSweeper) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("view sweeper stopped")
}

func (w *ViewSweeper) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep runs one pass immediately.
func (w *ViewSweeper) Sweep() int {
	n := w.views.SweepIdle(w.idle)
	if n > 0 {
		w.log.Info("dropped idle dashboard views", zap.Int("count", n))
	}
	return n
}
