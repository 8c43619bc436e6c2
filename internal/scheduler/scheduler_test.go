package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/weather-paper/internal/models"
	"github.com/bobby-s-dev/weather-paper/internal/settings"
)

func policyStore(values map[string]string) *settings.Store {
	return settings.NewStore(settings.NewMemoryBackend(values))
}

func TestIsNightAllWindows(t *testing.T) {
	for start := 0; start < 24; start++ {
		for end := 0; end < 24; end++ {
			policy := models.SchedulePolicy{
				DayIntervalMinutes:   10,
				NightIntervalMinutes: 60,
				NightStartHour:       start,
				NightEndHour:         end,
				NightModeEnabled:     true,
			}
			for hour := 0; hour < 24; hour++ {
				var want bool
				if start > end {
					want = hour >= start || hour < end
				} else {
					want = start <= hour && hour < end
				}
				if got := policy.IsNight(hour); got != want {
					t.Fatalf("IsNight(%d) with window %d->%d = %v, want %v", hour, start, end, got, want)
				}
			}
		}
	}
}

func TestIsNightDisabled(t *testing.T) {
	policy := models.DefaultSchedulePolicy()
	policy.NightModeEnabled = false
	for hour := 0; hour < 24; hour++ {
		assert.False(t, policy.IsNight(hour), "hour %d", hour)
	}
}

func TestNextIntervalScenarios(t *testing.T) {
	store := policyStore(map[string]string{
		settings.KeyDayInterval:   "10",
		settings.KeyNightInterval: "60",
		settings.KeyNightStart:    "22",
		settings.KeyNightEnd:      "5",
		settings.KeyNightMode:     "true",
	})
	engine := NewEngine(store, time.Millisecond, nil)
	ctx := context.Background()

	tests := []struct {
		hour      int
		wantNight bool
		want      time.Duration
	}{
		{23, true, 60 * time.Minute},
		{8, false, 10 * time.Minute},
		{22, true, 60 * time.Minute},
		{0, true, 60 * time.Minute},
		{4, true, 60 * time.Minute},
		{5, false, 10 * time.Minute},
		{21, false, 10 * time.Minute},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wantNight, engine.IsNight(ctx, tt.hour), "IsNight(%d)", tt.hour)
		assert.Equal(t, tt.want, engine.NextInterval(ctx, tt.hour), "NextInterval(%d)", tt.hour)
	}
}

func TestEqualStartEndIsNeverNight(t *testing.T) {
	engine := NewEngine(policyStore(map[string]string{
		settings.KeyNightStart: "3",
		settings.KeyNightEnd:   "3",
	}), 0, nil)

	for hour := 0; hour < 24; hour++ {
		assert.False(t, engine.IsNight(context.Background(), hour))
	}
}

func TestEngineReadsPolicyEveryCall(t *testing.T) {
	ctx := context.Background()
	store := policyStore(nil)
	engine := NewEngine(store, time.Millisecond, nil)

	assert.Equal(t, 10*time.Minute, engine.NextInterval(ctx, 12))

	p, err := store.Begin(ctx, false)
	require.NoError(t, err)
	require.NoError(t, p.PutInt(settings.KeyDayInterval, 30))
	require.NoError(t, p.End(ctx))

	assert.Equal(t, 30*time.Minute, engine.NextInterval(ctx, 12))
}

func TestNextIntervalResolution(t *testing.T) {
	engine := NewEngine(policyStore(map[string]string{
		settings.KeyDayInterval: "7",
	}), time.Hour, nil)

	assert.Equal(t, time.Hour, engine.NextInterval(context.Background(), 12), "never below one resolution unit")
}

func TestWakeTimerFires(t *testing.T) {
	timer := NewWakeTimer(nil)
	armedAt := time.Now()
	due := timer.Arm(1500 * time.Millisecond)

	assert.Zero(t, due.Nanosecond(), "wake instant is on a whole second")
	assert.Equal(t, true, timer.GetStatus()["armed"])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, timer.Wait(ctx))

	assert.Less(t, time.Since(armedAt), 2*time.Second)
	assert.Equal(t, false, timer.GetStatus()["armed"])
}

func TestWakeTimerWaitWithoutArm(t *testing.T) {
	assert.ErrorIs(t, NewWakeTimer(nil).Wait(context.Background()), ErrNotArmed)
}

func TestWakeTimerWaitCancelled(t *testing.T) {
	timer := NewWakeTimer(nil)
	timer.Arm(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, timer.Wait(ctx), context.Canceled)
}
