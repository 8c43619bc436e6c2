package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-paper/internal/device"
)

// InputSurface reports at most one touch per poll.
type InputSurface interface {
	Poll(ctx context.Context) (device.TouchPoint, bool, error)
}

// InteractionWindow waits a bounded time for a press inside Region.
type InteractionWindow struct {
	Input    InputSurface
	Region   device.Rect
	Duration time.Duration
	Poll     time.Duration
	Logger   *zap.Logger
}

// Wait polls until a qualifying press, the deadline or ctx ends. It reports
// whether a press inside the region happened. Input errors count as no press.
func (w InteractionWindow) Wait(ctx context.Context) bool {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	poll := w.Poll
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}

	deadline := time.Now().Add(w.Duration)
	logger.Info("Waiting for configuration press",
		zap.Duration("window", w.Duration),
		zap.Int("region_min_x", w.Region.MinX),
		zap.Int("region_min_y", w.Region.MinY))

	for time.Now().Before(deadline) {
		p, ok, err := w.Input.Poll(ctx)
		switch {
		case err != nil:
			logger.Warn("Input poll failed", zap.Error(err))
		case ok && w.Region.Contains(p):
			logger.Info("Configuration press detected", zap.Int("x", p.X), zap.Int("y", p.Y))
			return true
		case ok:
			logger.Debug("Touch outside configuration region", zap.Int("x", p.X), zap.Int("y", p.Y))
		}

		wait := poll
		if left := time.Until(deadline); left < wait {
			wait = left
		}
		if wait <= 0 {
			break
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}

	logger.Info("Interaction window elapsed without press")
	return false
}
