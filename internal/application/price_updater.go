package application

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultRefreshInterval = 60 * time.Second

type PriceRefresher interface {
	RefreshPrices(ctx context.Context) error
}

// PriceUpdater re-values the dashboard on a fixed interval until stopped.
// A tick that is still running when the next one fires delays it rather than
// overlapping it.
type PriceUpdater struct {
	service  PriceRefresher
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewPriceUpdater(service PriceRefresher, interval time.Duration) *PriceUpdater {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &PriceUpdater{
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (u *PriceUpdater) Start(ctx context.Context) {
	defer close(u.done)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	slog.Info("Price updater started", "interval", u.interval)

	for {
		select {
		case <-ticker.C:
			u.tick(ctx)
		case <-u.stopChan:
			slog.Info("Price updater stopped")
			return
		case <-ctx.Done():
			slog.Info("Price updater stopped due to context cancellation")
			return
		}
	}
}

// tick bounds one refresh by the interval so a hung upstream cannot stall the loop.
func (u *PriceUpdater) tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, u.interval)
	defer cancel()

	start := time.Now()
	if err := u.service.RefreshPrices(tickCtx); err != nil {
		slog.Error("Error refreshing prices", "error", err)
		return
	}
	slog.Info("Prices refreshed successfully", "duration", time.Since(start))
}

// Stop ends the loop. It is safe to call more than once.
func (u *PriceUpdater) Stop() {
	u.stopOnce.Do(func() { close(u.stopChan) })
}

// Done is closed once Start has returned.
func (u *PriceUpdater) Done() <-chan struct{} {
	return u.done
}
