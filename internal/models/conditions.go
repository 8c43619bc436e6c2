package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	defaultSunriseHour = 6
	defaultSunsetHour  = 18

	julianRefDate  = 2451550.26
	lunarCycleDays = 29.53058867
)

// ConditionText groups WMO weather interpretation codes into short labels.
func ConditionText(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code == 1:
		return "Mainly Clear"
	case code == 2:
		return "Partly Cloudy"
	case code == 3:
		return "Overcast"
	case code >= 45 && code <= 48:
		return "Foggy"
	case code >= 51 && code <= 55:
		return "Drizzle"
	case code >= 56 && code <= 57:
		return "Freezing Drizzle"
	case code >= 61 && code <= 65:
		return "Rain"
	case code >= 66 && code <= 67:
		return "Freezing Rain"
	case code >= 71 && code <= 75:
		return "Snow"
	case code == 77:
		return "Snow Grains"
	case code >= 80 && code <= 82:
		return "Rain Showers"
	case code >= 85 && code <= 86:
		return "Snow Showers"
	case code >= 95 && code <= 96:
		return "Thunderstorm"
	case code >= 99:
		return "Thunderstorm Hail"
	}
	return "Unknown"
}

// ConditionIcon maps a weather code to an icon name with a day/night suffix.
func ConditionIcon(code int, daytime bool) string {
	var base string
	switch {
	case code == 0:
		base = "01"
	case code <= 3 && code > 0:
		base = "02"
	case code >= 45 && code <= 48:
		base = "50"
	case code >= 51 && code <= 67:
		base = "10"
	case code >= 71 && code <= 86:
		base = "13"
	case code >= 95:
		base = "11"
	default:
		return "unknown"
	}
	if daytime {
		return base + "d"
	}
	return base + "n"
}

// IsDaytime compares hour against the sunrise/sunset hours of the snapshot,
// falling back to 6 and 18 when they are missing.
func (s *WeatherSnapshot) IsDaytime(hour int) bool {
	sunrise := leadingHour(s.Sunrise, defaultSunriseHour)
	sunset := leadingHour(s.Sunset, defaultSunsetHour)
	return hour >= sunrise && hour < sunset
}

func leadingHour(hhmm string, def int) int {
	if len(hhmm) < 2 {
		return def
	}
	h, err := strconv.Atoi(strings.TrimSpace(hhmm[:2]))
	if err != nil {
		return def
	}
	return h
}

// MoonPhase returns the lunar phase of the given date as a fraction in [0,1),
// 0 being new moon.
func MoonPhase(t time.Time) float64 {
	year, month, day := t.Year(), int(t.Month()), t.Day()
	if month <= 2 {
		year--
		month += 12
	}
	a := year / 100
	b := a / 4
	c := 2 - a + b
	e := math.Floor(365.25 * float64(year+4716))
	f := math.Floor(30.6001 * float64(month+1))
	jd := float64(c+day) + e + f - 1524.5

	moons := (jd - julianRefDate) / lunarCycleDays
	return moons - math.Floor(moons)
}
