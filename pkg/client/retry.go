package client

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy is a bounded retry with a fixed delay between attempts.
// It holds no state between Execute calls.
type RetryPolicy struct {
	Name        string
	MaxAttempts int
	Delay       time.Duration
	Logger      *zap.Logger
}

// Execute calls op up to p.MaxAttempts times, sleeping p.Delay before every
// attempt after the first. It returns the first success, or the last error once
// the attempts are used up, together with the number of attempts made.
// attempt passed to op starts at 1.
func Execute[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context, attempt int) (T, error)) (T, int, error) {
	var zero T
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if p.MaxAttempts <= 0 {
		logger.Error("Retry policy misconfigured",
			zap.String("operation", p.Name),
			zap.Int("max_attempts", p.MaxAttempts))
		return zero, 0, ErrInvalidAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 && p.Delay > 0 {
			logger.Debug("Waiting before retry",
				zap.String("operation", p.Name),
				zap.Int("attempt", attempt),
				zap.Duration("delay", p.Delay))

			timer := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, attempt - 1, ctx.Err()
			case <-timer.C:
			}
		}

		result, err := op(ctx, attempt)
		if err == nil {
			logger.Info("Operation succeeded",
				zap.String("operation", p.Name),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", p.MaxAttempts))
			return result, attempt, nil
		}

		lastErr = err
		logger.Warn("Operation attempt failed",
			zap.String("operation", p.Name),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.MaxAttempts),
			zap.Error(err))
	}

	logger.Error("Operation failed after all attempts",
		zap.String("operation", p.Name),
		zap.Int("attempts", p.MaxAttempts),
		zap.Error(lastErr))
	return zero, p.MaxAttempts, lastErr
}
