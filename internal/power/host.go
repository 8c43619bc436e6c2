package power

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-paper/internal/models"
	"github.com/bobby-s-dev/weather-paper/internal/scheduler"
)

// HostDriver emulates the wake/suspend cycle in a long-running process. The
// first boot takes its cause from configuration; every boot after a completed
// suspend is a timer wake.
type HostDriver struct {
	timer        *scheduler.WakeTimer
	logger       *zap.Logger
	onNetworkOff func(ctx context.Context) error

	mu    sync.Mutex
	cause models.WakeCause
	armed bool
}

// ParseWakeCause accepts "manual", "timer" or "auto" (manual).
func ParseWakeCause(v string) (models.WakeCause, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto", "manual":
		return models.WakeManual, nil
	case "timer":
		return models.WakeTimer, nil
	}
	return models.WakeManual, fmt.Errorf("unknown wake cause %q", v)
}

func NewHostDriver(initial models.WakeCause, timer *scheduler.WakeTimer, logger *zap.Logger) *HostDriver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HostDriver{
		timer:  timer,
		logger: logger,
		cause:  initial,
	}
}

// OnNetworkOff registers the hook called by DisableNetwork.
func (h *HostDriver) OnNetworkOff(fn func(ctx context.Context) error) {
	h.onNetworkOff = fn
}

func (h *HostDriver) WakeCause(ctx context.Context) (models.WakeCause, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cause, nil
}

// Reset marks the next boot as a manual one, as after a reset button press.
func (h *HostDriver) Reset() {
	h.mu.Lock()
	h.cause = models.WakeManual
	h.mu.Unlock()
}

func (h *HostDriver) DisableNetwork(ctx context.Context) error {
	if h.onNetworkOff == nil {
		h.logger.Debug("No network hook configured")
		return nil
	}
	return h.onNetworkOff(ctx)
}

func (h *HostDriver) ArmTimerWake(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("invalid wake interval %s", d)
	}
	due := h.timer.Arm(d)

	h.mu.Lock()
	h.armed = true
	h.mu.Unlock()

	h.logger.Info("Timer wake armed", zap.Duration("sleep", d), zap.Time("wake_at", due))
	return nil
}

// Suspend blocks until the armed wake fires. The next WakeCause is Timer.
func (h *HostDriver) Suspend(ctx context.Context) error {
	h.mu.Lock()
	armed := h.armed
	h.mu.Unlock()
	if !armed {
		return scheduler.ErrNotArmed
	}

	err := h.timer.Wait(ctx)

	h.mu.Lock()
	h.armed = false
	if err == nil {
		h.cause = models.WakeTimer
	}
	h.mu.Unlock()
	return err
}
