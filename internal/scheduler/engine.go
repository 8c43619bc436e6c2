package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-paper/internal/models"
	"github.com/bobby-s-dev/weather-paper/internal/settings"
)

// Engine decides how long to sleep. It keeps no policy of its own: every call
// reads the current values from the store so portal edits apply on the next
// decision.
type Engine struct {
	store      *settings.Store
	resolution time.Duration
	logger     *zap.Logger
}

func NewEngine(store *settings.Store, resolution time.Duration, logger *zap.Logger) *Engine {
	if resolution <= 0 {
		resolution = time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:      store,
		resolution: resolution,
		logger:     logger,
	}
}

// Policy reads the schedule policy, falling back to defaults when the store
// cannot be read.
func (e *Engine) Policy(ctx context.Context) models.SchedulePolicy {
	policy, err := settings.LoadSchedulePolicy(ctx, e.store)
	if err != nil {
		e.logger.Warn("Failed to read schedule policy, using defaults", zap.Error(err))
		return models.DefaultSchedulePolicy()
	}
	return policy
}

func (e *Engine) IsNight(ctx context.Context, localHour int) bool {
	return e.Policy(ctx).IsNight(localHour)
}

// NextInterval returns the sleep duration for localHour, truncated to the
// timer resolution.
func (e *Engine) NextInterval(ctx context.Context, localHour int) time.Duration {
	policy := e.Policy(ctx)
	night := policy.IsNight(localHour)
	d := e.quantize(policy.Interval(localHour))

	e.logger.Info("Next wake interval computed",
		zap.Int("local_hour", localHour),
		zap.Bool("night", night),
		zap.Bool("night_mode", policy.NightModeEnabled),
		zap.Int("night_start", policy.NightStartHour),
		zap.Int("night_end", policy.NightEndHour),
		zap.Duration("interval", d))

	return d
}

func (e *Engine) quantize(d time.Duration) time.Duration {
	d = d.Truncate(e.resolution)
	if d < e.resolution {
		return e.resolution
	}
	return d
}
