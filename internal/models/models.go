package models

import (
	"database/sql"
	"fmt"
	"time"
)

// Location is a geocoded place, immutable once resolved.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentConditions mirrors the open-meteo current block. Values are kept
// verbatim from the upstream response and only formatted for display.
type CurrentConditions struct {
	Temperature         float64 `json:"temperature_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Humidity            int     `json:"relative_humidity_2m"`
	WindSpeed           float64 `json:"wind_speed_10m"`
	WindDirection       float64 `json:"wind_direction_10m"`
	PressureMSL         float64 `json:"pressure_msl"`
	SurfacePressure     float64 `json:"surface_pressure"`
	CloudCover          int     `json:"cloud_cover"`
	Precipitation       float64 `json:"precipitation"`
	WeatherCode         int     `json:"weather_code"`
	IsDay               bool    `json:"is_day"`
}

// DailyForecast holds the open-meteo daily block as parallel arrays indexed
// by day offset. All slices must share the same length and index alignment.
type DailyForecast struct {
	Time                 []string  `json:"time"`
	TempMax              []float64 `json:"temperature_2m_max"`
	TempMin              []float64 `json:"temperature_2m_min"`
	WeatherCode          []int     `json:"weather_code"`
	Sunrise              []string  `json:"sunrise"`
	Sunset               []string  `json:"sunset"`
	RainSum              []float64 `json:"rain_sum"`
	UVIndexMax           []float64 `json:"uv_index_max"`
	PrecipProbabilityMax []int     `json:"precipitation_probability_max"`
}

// Days returns the number of forecast days.
func (d *DailyForecast) Days() int {
	return len(d.Time)
}

// Validate checks the parallel-array alignment invariant.
func (d *DailyForecast) Validate() error {
	n := len(d.Time)
	if n == 0 {
		return fmt.Errorf("daily forecast has no days")
	}
	for name, got := range map[string]int{
		"temperature_2m_max":            len(d.TempMax),
		"temperature_2m_min":            len(d.TempMin),
		"weather_code":                  len(d.WeatherCode),
		"sunrise":                       len(d.Sunrise),
		"sunset":                        len(d.Sunset),
		"rain_sum":                      len(d.RainSum),
		"uv_index_max":                  len(d.UVIndexMax),
		"precipitation_probability_max": len(d.PrecipProbabilityMax),
	} {
		if got != n {
			return fmt.Errorf("daily array %s has %d entries, want %d", name, got, n)
		}
	}
	return nil
}

// WeatherData is a complete lookup result: location metadata merged with
// the forecast payload.
type WeatherData struct {
	Location  Location          `json:"location"`
	Current   CurrentConditions `json:"current"`
	Daily     DailyForecast     `json:"daily"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// SearchRecord is one row in the search history log.
type SearchRecord struct {
	ID          int64
	City        string
	Country     sql.NullString
	Latitude    float64
	Longitude   float64
	Temperature sql.NullFloat64
	WeatherCode sql.NullInt64
	SearchedAt  time.Time
}
