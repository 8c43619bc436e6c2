package settings

import (
	"context"

	"github.com/bobby-s-dev/weather-paper/internal/models"
)

const (
	KeySSID          = "ssid"
	KeyPassword      = "password"
	KeyCity          = "city"
	KeyLatitude      = "latitude"
	KeyLongitude     = "longitude"
	KeyTempUnit      = "tempunit"
	KeyNightMode     = "nightmode"
	KeyDayInterval   = "day_interval"
	KeyNightInterval = "night_interval"
	KeyNightStart    = "night_start"
	KeyNightEnd      = "night_end"

	DefaultCity = "Auckland"
)

// DeviceSettings is what the acquisition step needs from the store.
// CachedLatitude/CachedLongitude are nil when not set.
type DeviceSettings struct {
	City            string
	CachedLatitude  *float64
	CachedLongitude *float64
	Units           models.Units
}

// PortalSettings is the full set of user-editable values.
type PortalSettings struct {
	SSID      string
	Password  string
	City      string
	Latitude  *float64
	Longitude *float64
	Units     models.Units
	Policy    models.SchedulePolicy
}

func LoadDeviceSettings(ctx context.Context, s *Store) (DeviceSettings, error) {
	p, err := s.Begin(ctx, true)
	if err != nil {
		return DeviceSettings{City: DefaultCity, Units: models.Fahrenheit}, err
	}
	defer p.End(ctx)

	out := DeviceSettings{
		City:  p.String(KeyCity, DefaultCity),
		Units: models.ParseUnits(p.String(KeyTempUnit, "F")),
	}
	out.CachedLatitude, out.CachedLongitude = coordinates(p)
	return out, nil
}

// coordinates returns both values or neither. A stored pair outside the valid
// ranges (including the legacy -9999 marker) reads as not set.
func coordinates(p *Preferences) (*float64, *float64) {
	lat, okLat := p.Float(KeyLatitude)
	lon, okLon := p.Float(KeyLongitude)
	if !okLat || !okLon || !models.ValidCoordinates(lat, lon) {
		return nil, nil
	}
	return &lat, &lon
}

// LoadSchedulePolicy reads the policy with the firmware defaults.
func LoadSchedulePolicy(ctx context.Context, s *Store) (models.SchedulePolicy, error) {
	def := models.DefaultSchedulePolicy()
	p, err := s.Begin(ctx, true)
	if err != nil {
		return def, err
	}
	defer p.End(ctx)

	return models.SchedulePolicy{
		DayIntervalMinutes:   p.Int(KeyDayInterval, def.DayIntervalMinutes),
		NightIntervalMinutes: p.Int(KeyNightInterval, def.NightIntervalMinutes),
		NightStartHour:       p.Int(KeyNightStart, def.NightStartHour),
		NightEndHour:         p.Int(KeyNightEnd, def.NightEndHour),
		NightModeEnabled:     p.Bool(KeyNightMode, def.NightModeEnabled),
	}, nil
}

func SaveCoordinates(ctx context.Context, s *Store, lat, lon float64) error {
	p, err := s.Begin(ctx, false)
	if err != nil {
		return err
	}
	if err := p.PutFloat(KeyLatitude, lat); err != nil {
		return err
	}
	if err := p.PutFloat(KeyLongitude, lon); err != nil {
		return err
	}
	return p.End(ctx)
}

func LoadPortalSettings(ctx context.Context, s *Store) (PortalSettings, error) {
	p, err := s.Begin(ctx, true)
	if err != nil {
		return PortalSettings{}, err
	}
	defer p.End(ctx)

	out := PortalSettings{
		SSID:     p.String(KeySSID, ""),
		Password: p.String(KeyPassword, ""),
		City:     p.String(KeyCity, DefaultCity),
		Units:    models.ParseUnits(p.String(KeyTempUnit, "F")),
	}
	out.Latitude, out.Longitude = coordinates(p)

	policy, err := LoadSchedulePolicy(ctx, s)
	if err != nil {
		return out, err
	}
	out.Policy = policy
	return out, nil
}

// SavePortalSettings writes everything in one session. Missing coordinates
// clear the stored pair so the next boot geocodes the city again.
func SavePortalSettings(ctx context.Context, s *Store, in PortalSettings) error {
	p, err := s.Begin(ctx, false)
	if err != nil {
		return err
	}

	puts := []error{
		p.PutString(KeySSID, in.SSID),
		p.PutString(KeyCity, in.City),
		p.PutString(KeyTempUnit, in.Units.Code()),
		p.PutBool(KeyNightMode, in.Policy.NightModeEnabled),
		p.PutInt(KeyDayInterval, in.Policy.DayIntervalMinutes),
		p.PutInt(KeyNightInterval, in.Policy.NightIntervalMinutes),
		p.PutInt(KeyNightStart, in.Policy.NightStartHour),
		p.PutInt(KeyNightEnd, in.Policy.NightEndHour),
	}
	if in.Password != "" {
		puts = append(puts, p.PutString(KeyPassword, in.Password))
	}
	if in.Latitude != nil && in.Longitude != nil {
		puts = append(puts, p.PutFloat(KeyLatitude, *in.Latitude), p.PutFloat(KeyLongitude, *in.Longitude))
	} else {
		puts = append(puts, p.Remove(KeyLatitude), p.Remove(KeyLongitude))
	}
	for _, err := range puts {
		if err != nil {
			return err
		}
	}
	return p.End(ctx)
}
