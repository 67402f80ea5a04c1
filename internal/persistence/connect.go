package persistence

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	connectAttempts = 5
	connectBackoff  = time.Second
)

// pingWithRetry calls ping until it succeeds, doubling the wait between
// attempts.
func pingWithRetry(ctx context.Context, name string, attempts int, backoff time.Duration, logger *zap.Logger, ping func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	wait := backoff
	for i := 1; i <= attempts; i++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		logger.Warn("dependency not reachable yet",
			zap.String("dependency", name),
			zap.Int("attempt", i),
			zap.Duration("retry_in", wait),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return fmt.Errorf("%s unreachable after %d attempts: %w", name, attempts, err)
}
