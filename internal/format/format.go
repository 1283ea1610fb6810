// Package format holds the pure display formatting used by the API and CLI:
// WMO weather code lookup tables, unit-suffixed number formatting and
// relative day labels. Everything here is stateless and deterministic.
package format

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultDescription is the fallback for weather codes outside the
	// WMO tables. Lookups never fail, they degrade to this.
	DefaultDescription = "Unknown conditions"
	DefaultIcon        = "🌡️"
)

var weatherDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snowfall",
	73: "Moderate snowfall",
	75: "Heavy snowfall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

var weatherIcons = map[int]string{
	0:  "☀️",
	1:  "🌤️",
	2:  "⛅",
	3:  "☁️",
	45: "🌫️",
	48: "🌫️",
	51: "🌦️",
	53: "🌦️",
	55: "🌧️",
	56: "🌧️",
	57: "🌧️",
	61: "🌧️",
	63: "🌧️",
	65: "🌧️",
	66: "🌧️",
	67: "🌧️",
	71: "🌨️",
	73: "🌨️",
	75: "❄️",
	77: "❄️",
	80: "🌦️",
	81: "🌧️",
	82: "⛈️",
	85: "🌨️",
	86: "❄️",
	95: "⛈️",
	96: "⛈️",
	99: "🌩️",
}

// nightIcons override the day icon for clear-ish skies after sunset.
var nightIcons = map[int]string{
	0: "🌙",
	1: "🌙",
	2: "☁️🌙",
}

// WeatherCodes lists every code the tables cover, ascending.
func WeatherCodes() []int {
	return []int{0, 1, 2, 3, 45, 48, 51, 53, 55, 56, 57, 61, 63, 65, 66, 67,
		71, 73, 75, 77, 80, 81, 82, 85, 86, 95, 96, 99}
}

// WeatherDescription returns the display string for a WMO weather code.
func WeatherDescription(code int) string {
	if desc, ok := weatherDescriptions[code]; ok {
		return desc
	}
	return DefaultDescription
}

// WeatherIcon returns the emoji icon for a WMO weather code.
func WeatherIcon(code int, isDay bool) string {
	if !isDay {
		if icon, ok := nightIcons[code]; ok {
			return icon
		}
	}
	if icon, ok := weatherIcons[code]; ok {
		return icon
	}
	return DefaultIcon
}

// Temperature rounds to the nearest whole degree, half away from zero.
func Temperature(v float64) string {
	return fmt.Sprintf("%d°C", int(math.Round(v)))
}

// compassPoints covers the 16-point compass in 22.5° buckets.
var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindDirection maps degrees to a 16-point compass label. Values wrap at
// 360, so 359° is "N" again.
func WindDirection(deg float64) string {
	idx := int(math.Mod(deg+11.25, 360) / 22.5)
	return compassPoints[idx%len(compassPoints)]
}

func WindSpeed(v float64) string {
	return fmt.Sprintf("%.1f km/h", v)
}

func Humidity(v int) string {
	return fmt.Sprintf("%d%%", v)
}

func Pressure(v float64) string {
	return fmt.Sprintf("%d hPa", int(math.Round(v)))
}

func CloudCover(v int) string {
	return fmt.Sprintf("%d%%", v)
}

func Precipitation(v float64) string {
	return fmt.Sprintf("%.1f mm", v)
}

func UVIndex(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// Day classifies an ISO date (2006-01-02) relative to now: "Today",
// "Tomorrow", or the weekday name. Unparseable input is returned as-is.
func Day(isoDate string, now time.Time) string {
	d, err := time.ParseInLocation("2006-01-02", isoDate, now.Location())
	if err != nil {
		return isoDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case d.Equal(today):
		return "Today"
	case d.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return d.Weekday().String()
	}
}

// ClockTime extracts the HH:MM component from an ISO date-time string
// (2006-01-02T15:04), as used for sunrise and sunset.
func ClockTime(isoTime string) string {
	t, err := time.Parse("2006-01-02T15:04", isoTime)
	if err != nil {
		return isoTime
	}
	return t.Format("15:04")
}
