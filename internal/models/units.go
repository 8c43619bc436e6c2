package models

import "strings"

type Units int

const (
	Fahrenheit Units = iota
	Celsius
)

// ParseUnits maps the persisted "C"/"F" setting. Anything else is Fahrenheit.
func ParseUnits(v string) Units {
	if strings.EqualFold(strings.TrimSpace(v), "C") {
		return Celsius
	}
	return Fahrenheit
}

// Code is the persisted form of the unit choice.
func (u Units) Code() string {
	if u == Celsius {
		return "C"
	}
	return "F"
}

func (u Units) String() string {
	return u.Code()
}

func (u Units) TemperatureUnit() string {
	if u == Celsius {
		return "celsius"
	}
	return "fahrenheit"
}

func (u Units) WindSpeedUnit() string {
	if u == Celsius {
		return "kmh"
	}
	return "mph"
}

func (u Units) PrecipitationUnit() string {
	if u == Celsius {
		return "mm"
	}
	return "inch"
}

// Symbol is the temperature suffix used on screen.
func (u Units) Symbol() string {
	if u == Celsius {
		return "°C"
	}
	return "°F"
}
