package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// maxRefreshFailures is how many refreshes in a row may fail on backend
// errors before the lease is treated as lost.
const maxRefreshFailures = 2

// KeepAlive refreshes lease every ttl/3 until stop is called. The returned
// context is cancelled with ErrLeaseLost as its cause once the lease can no
// longer be held; stop waits for the refresh loop to exit.
func KeepAlive(ctx context.Context, lease Lease, ttl time.Duration, log *zap.Logger) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	if log == nil {
		log = zap.NewNop()
	}

	interval := ttl / 3
	if interval <= 0 {
		interval = time.Second
	}

	quit := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		failures := 0
		for {
			select {
			case <-quit:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			err := lease.Refresh(ctx, ttl)
			if err == nil {
				failures = 0
				continue
			}
			if ctx.Err() != nil {
				return
			}
			failures++
			log.Warn("lock refresh failed", zap.Int("failures", failures), zap.Error(err))
			if errors.Is(err, ErrLeaseLost) {
				cancel(err)
				return
			}
			if failures >= maxRefreshFailures {
				cancel(fmt.Errorf("%w: %w", ErrLeaseLost, err))
				return
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(quit)
			<-exited
			cancel(nil)
		})
	}
	return ctx, stop
}
