package models

import (
	"time"
)

const (
	// MaxHourly is the number of hourly slots kept after the current local hour.
	MaxHourly = 8
	// MaxDaily is the number of daily slots kept, index 0 being today.
	MaxDaily = 7
)

type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Resolved  bool    `json:"resolved"`
}

// Valid reports whether the location carries usable coordinates.
func (l Location) Valid() bool {
	return l.Resolved && ValidCoordinates(l.Latitude, l.Longitude)
}

// ValidCoordinates checks geographic ranges. Zero/zero is a real place.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

type CurrentConditions struct {
	Temperature         float64 `json:"temperature"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Humidity            float64 `json:"humidity"`
	WindSpeed           float64 `json:"wind_speed"`
	WindDirectionDeg    float64 `json:"wind_direction_deg"`
	Precipitation       float64 `json:"precipitation"`
	WeatherCode         int     `json:"weather_code"`
}

type HourlyPoint struct {
	Temp              float64 `json:"temp"`
	PrecipProbability float64 `json:"precip_probability"`
	Humidity          float64 `json:"humidity"`
	Pressure          float64 `json:"pressure"`
	UVIndex           float64 `json:"uv_index"`
	WeatherCode       int     `json:"weather_code"`
}

type DailyPoint struct {
	MaxTemp      float64 `json:"max_temp"`
	MinTemp      float64 `json:"min_temp"`
	RainSum      float64 `json:"rain_sum"`
	HumidityMean float64 `json:"humidity_mean"`
	PressureMean float64 `json:"pressure_mean"`
}

// WeatherSnapshot is the result of one acquisition. It is a value type:
// assigning it copies the fixed series.
type WeatherSnapshot struct {
	Current CurrentConditions `json:"current"`
	Sunrise string            `json:"sunrise"`
	Sunset  string            `json:"sunset"`

	// Hourly[0] is the hour after the current local hour.
	Hourly      [MaxHourly]HourlyPoint `json:"hourly"`
	HourlyCount int                    `json:"hourly_count"`

	Daily      [MaxDaily]DailyPoint `json:"daily"`
	DailyCount int                  `json:"daily_count"`

	TodayMinTemp  float64 `json:"today_min_temp"`
	TodayMaxTemp  float64 `json:"today_max_temp"`
	HasTodayRange bool    `json:"has_today_range"`

	FetchedAt time.Time `json:"fetched_at"`
}

// Empty reports whether the snapshot has never been filled by a fetch.
func (s *WeatherSnapshot) Empty() bool {
	return s.FetchedAt.IsZero()
}

type SchedulePolicy struct {
	DayIntervalMinutes   int  `json:"day_interval"`
	NightIntervalMinutes int  `json:"night_interval"`
	NightStartHour       int  `json:"night_start"`
	NightEndHour         int  `json:"night_end"`
	NightModeEnabled     bool `json:"nightmode"`
}

func DefaultSchedulePolicy() SchedulePolicy {
	return SchedulePolicy{
		DayIntervalMinutes:   10,
		NightIntervalMinutes: 60,
		NightStartHour:       22,
		NightEndHour:         5,
		NightModeEnabled:     true,
	}
}

// IsNight evaluates the night window for a local hour. A window with
// start > end crosses midnight; start == end never matches.
func (p SchedulePolicy) IsNight(localHour int) bool {
	if !p.NightModeEnabled {
		return false
	}
	if p.NightStartHour > p.NightEndHour {
		return localHour >= p.NightStartHour || localHour < p.NightEndHour
	}
	return localHour >= p.NightStartHour && localHour < p.NightEndHour
}

// Interval returns the configured sleep interval for a local hour.
func (p SchedulePolicy) Interval(localHour int) time.Duration {
	if p.IsNight(localHour) {
		return time.Duration(p.NightIntervalMinutes) * time.Minute
	}
	return time.Duration(p.DayIntervalMinutes) * time.Minute
}

type WakeCause int

const (
	WakeManual WakeCause = iota
	WakeTimer
)

func (c WakeCause) String() string {
	switch c {
	case WakeManual:
		return "manual"
	case WakeTimer:
		return "timer"
	default:
		return "unknown"
	}
}

type WakeContext struct {
	Cause    WakeCause
	BootTime time.Time
	BootID   string
}
