package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/dispensadoras/pkg/backend"
)

// WaitForBackend polls GET /status with exponential backoff until the
// backend reports healthy or maxWait elapses.
func WaitForBackend(ctx context.Context, b backend.Backend, maxWait time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = maxWait

	attempt := 0
	op := func() error {
		attempt++
		st, err := b.GetStatus(ctx)
		if err != nil {
			logger.Info("backend not reachable yet", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		if !st.OK() {
			logger.Info("backend not healthy yet", zap.Int("attempt", attempt), zap.String("status", st.Status))
			return fmt.Errorf("backend status %q", st.Status)
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("backend not ready after %s: %w", maxWait, err)
	}
	logger.Info("backend ready", zap.Int("attempts", attempt))
	return nil
}
