package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/weather-paper/internal/models"
)

func TestPreferencesDefaults(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend(map[string]string{
		KeyDayInterval: "not-a-number",
		KeyNightMode:   "0",
	}))

	p, err := store.Begin(ctx, true)
	require.NoError(t, err)
	defer p.End(ctx)

	assert.Equal(t, "Auckland", p.String(KeyCity, "Auckland"))
	assert.Equal(t, 10, p.Int(KeyDayInterval, 10), "unparsable values fall back to default")
	assert.False(t, p.Bool(KeyNightMode, true))
	_, ok := p.Float(KeyLatitude)
	assert.False(t, ok)
}

func TestReadOnlySessionRejectsWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend(nil))

	p, err := store.Begin(ctx, true)
	require.NoError(t, err)

	assert.ErrorIs(t, p.PutString(KeyCity, "Oslo"), ErrReadOnly)
	assert.ErrorIs(t, p.Remove(KeyCity), ErrReadOnly)
	require.NoError(t, p.End(ctx))
}

func TestWritesAreVisibleOnlyAfterEnd(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend(map[string]string{KeyCity: "Auckland"})
	store := NewStore(backend)

	w, err := store.Begin(ctx, false)
	require.NoError(t, err)
	require.NoError(t, w.PutString(KeyCity, "Wellington"))
	assert.Equal(t, "Wellington", w.String(KeyCity, ""), "session sees its own writes")

	r, err := store.Begin(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "Auckland", r.String(KeyCity, ""))

	require.NoError(t, w.End(ctx))
	values, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Wellington", values[KeyCity])
}

func TestCoordinatesSentinel(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   bool
	}{
		{"absent", map[string]string{}, false},
		{"empty", map[string]string{KeyLatitude: "", KeyLongitude: ""}, false},
		{"legacy marker", map[string]string{KeyLatitude: "-9999.0", KeyLongitude: "-9999.0"}, false},
		{"only latitude", map[string]string{KeyLatitude: "10"}, false},
		{"garbage", map[string]string{KeyLatitude: "abc", KeyLongitude: "1"}, false},
		{"zero zero is a place", map[string]string{KeyLatitude: "0", KeyLongitude: "0"}, true},
		{"valid", map[string]string{KeyLatitude: "-36.8485", KeyLongitude: "174.7633"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := LoadDeviceSettings(context.Background(), NewStore(NewMemoryBackend(tt.values)))
			require.NoError(t, err)
			if tt.want {
				require.NotNil(t, ds.CachedLatitude)
				require.NotNil(t, ds.CachedLongitude)
			} else {
				assert.Nil(t, ds.CachedLatitude)
				assert.Nil(t, ds.CachedLongitude)
			}
		})
	}
}

func TestLoadSchedulePolicyDefaults(t *testing.T) {
	policy, err := LoadSchedulePolicy(context.Background(), NewStore(NewMemoryBackend(nil)))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSchedulePolicy(), policy)
}

func TestFileBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conf", "settings.yaml")

	store := NewStore(NewFileBackend(path))
	lat, lon := 51.5074, -0.1278
	require.NoError(t, SavePortalSettings(ctx, store, PortalSettings{
		SSID:      "home",
		Password:  "secret",
		City:      "London",
		Latitude:  &lat,
		Longitude: &lon,
		Units:     models.Celsius,
		Policy: models.SchedulePolicy{
			DayIntervalMinutes:   15,
			NightIntervalMinutes: 120,
			NightStartHour:       23,
			NightEndHour:         6,
			NightModeEnabled:     false,
		},
	}))

	reopened := NewStore(NewFileBackend(path))
	got, err := LoadPortalSettings(ctx, reopened)
	require.NoError(t, err)

	assert.Equal(t, "home", got.SSID)
	assert.Equal(t, "secret", got.Password)
	assert.Equal(t, "London", got.City)
	assert.Equal(t, models.Celsius, got.Units)
	require.NotNil(t, got.Latitude)
	assert.Equal(t, lat, *got.Latitude)
	assert.Equal(t, lon, *got.Longitude)
	assert.Equal(t, 15, got.Policy.DayIntervalMinutes)
	assert.Equal(t, 120, got.Policy.NightIntervalMinutes)
	assert.False(t, got.Policy.NightModeEnabled)

	// Saving without coordinates clears them and keeps the password.
	got.Latitude, got.Longitude = nil, nil
	got.Password = ""
	require.NoError(t, SavePortalSettings(ctx, reopened, got))

	ds, err := LoadDeviceSettings(ctx, NewStore(NewFileBackend(path)))
	require.NoError(t, err)
	assert.Nil(t, ds.CachedLatitude)
	assert.Equal(t, "London", ds.City)

	final, err := LoadPortalSettings(ctx, reopened)
	require.NoError(t, err)
	assert.Equal(t, "secret", final.Password)
}

func TestSaveCoordinates(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend(map[string]string{KeyCity: "Tokyo"}))

	require.NoError(t, SaveCoordinates(ctx, store, 35.6762, 139.6503))

	ds, err := LoadDeviceSettings(ctx, store)
	require.NoError(t, err)
	require.NotNil(t, ds.CachedLatitude)
	assert.Equal(t, 35.6762, *ds.CachedLatitude)
	assert.Equal(t, 139.6503, *ds.CachedLongitude)
	assert.Equal(t, "Tokyo", ds.City)
}
