package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrNotArmed is returned by Wait when no wake has been armed.
var ErrNotArmed = errors.New("wake timer not armed")

// WakeTimer is a one-shot timer wake for hosts without an RTC alarm. It runs on
// cron's constant-delay schedule, which works at whole-second resolution.
type WakeTimer struct {
	logger  *zap.Logger
	mu      sync.Mutex
	cron    *cron.Cron
	entry   cron.EntryID
	fired   chan struct{}
	armed   bool
	nextRun time.Time
	now     func() time.Time
}

func NewWakeTimer(logger *zap.Logger) *WakeTimer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WakeTimer{
		logger: logger,
		now:    time.Now,
	}
}

// Arm schedules a wake d from now, replacing any earlier one.
// It returns the instant the wake is due.
func (w *WakeTimer) Arm(d time.Duration) time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked()

	schedule := cron.Every(d)
	c := cron.New(cron.WithLogger(cronLogger{w.logger}))
	fired := make(chan struct{})
	var once sync.Once
	w.entry = c.Schedule(schedule, cron.FuncJob(func() {
		once.Do(func() { close(fired) })
	}))
	w.cron = c
	w.fired = fired
	w.armed = true
	w.nextRun = schedule.Next(w.now())
	c.Start()

	w.logger.Info("Wake timer armed",
		zap.Duration("interval", schedule.Delay),
		zap.Time("next_run", w.nextRun))

	return w.nextRun
}

// Wait blocks until the armed wake fires or ctx ends, then disarms.
func (w *WakeTimer) Wait(ctx context.Context) error {
	w.mu.Lock()
	if !w.armed {
		w.mu.Unlock()
		return ErrNotArmed
	}
	fired := w.fired
	w.mu.Unlock()

	defer w.Stop()

	select {
	case <-fired:
		w.logger.Debug("Wake timer fired")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *WakeTimer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *WakeTimer) stopLocked() {
	if !w.armed {
		return
	}
	w.cron.Remove(w.entry)
	w.cron.Stop()
	w.armed = false
}

func (w *WakeTimer) GetStatus() map[string]interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	return map[string]interface{}{
		"armed":    w.armed,
		"next_run": w.nextRun,
	}
}

// cronLogger adapts zap to cron's logger interface.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
