package cache

import (
	"context"
	"time"

	"github.com/bassista/go_watchlist/internal/logger"
)

// StartRefreshScheduler runs a goroutine that periodically reloads the mirror
// so changes made by another process become visible.
// Returns a channel that is closed when the scheduler has stopped.
// A non-positive interval disables the scheduler and the channel is closed immediately.
func StartRefreshScheduler(ctx context.Context, store Refresher, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		logger.WithComponent("refresh").Debug("refresh scheduler disabled")
		close(done)
		return done
	}

	logger.WithComponent("refresh").Debugf("starting refresh scheduler with interval: %v", interval)
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.WithComponent("refresh").Info("refresh scheduler stopped")
				return
			case <-ticker.C:
				logger.WithComponent("refresh").Tracef("refresh scheduler tick")
				if err := store.Refresh(ctx); err != nil {
					logger.WithComponent("refresh").Warnf("periodic refresh failed: %v", err)
				}
			}
		}
	}()
	return done
}
