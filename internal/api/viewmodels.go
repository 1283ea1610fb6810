package api

import (
	"time"

	"github.com/skycast/skycast/internal/format"
	"github.com/skycast/skycast/internal/models"
)

// WeatherView is the display-ready shape of a lookup result: raw values
// alongside their formatted strings, so clients render without re-deriving
// units, icons or day labels.
type WeatherView struct {
	Location  models.Location `json:"location"`
	Current   CurrentView     `json:"current"`
	Daily     []DayView       `json:"daily"`
	FetchedAt time.Time       `json:"fetched_at"`
}

type CurrentView struct {
	models.CurrentConditions
	Description       string `json:"description"`
	Icon              string `json:"icon"`
	TemperatureText   string `json:"temperature_text"`
	FeelsLikeText     string `json:"feels_like_text"`
	HumidityText      string `json:"humidity_text"`
	WindText          string `json:"wind_text"`
	WindCompass       string `json:"wind_compass"`
	PressureText      string `json:"pressure_text"`
	CloudCoverText    string `json:"cloud_cover_text"`
	PrecipitationText string `json:"precipitation_text"`
}

type DayView struct {
	Date              string `json:"date"`
	Label             string `json:"label"`
	Description       string `json:"description"`
	Icon              string `json:"icon"`
	TempMaxText       string `json:"temp_max_text"`
	TempMinText       string `json:"temp_min_text"`
	Sunrise           string `json:"sunrise"`
	Sunset            string `json:"sunset"`
	RainSumText       string `json:"rain_sum_text"`
	UVIndexText       string `json:"uv_index_text"`
	PrecipProbability int    `json:"precipitation_probability_max"`
}

func buildWeatherView(data *models.WeatherData, now time.Time) *WeatherView {
	cur := data.Current
	view := &WeatherView{
		Location:  data.Location,
		FetchedAt: data.FetchedAt,
		Current: CurrentView{
			CurrentConditions: cur,
			Description:       format.WeatherDescription(cur.WeatherCode),
			Icon:              format.WeatherIcon(cur.WeatherCode, cur.IsDay),
			TemperatureText:   format.Temperature(cur.Temperature),
			FeelsLikeText:     format.Temperature(cur.ApparentTemperature),
			HumidityText:      format.Humidity(cur.Humidity),
			WindText:          format.WindSpeed(cur.WindSpeed),
			WindCompass:       format.WindDirection(cur.WindDirection),
			PressureText:      format.Pressure(cur.PressureMSL),
			CloudCoverText:    format.CloudCover(cur.CloudCover),
			PrecipitationText: format.Precipitation(cur.Precipitation),
		},
	}

	for i := 0; i < data.Daily.Days(); i++ {
		d := data.Daily
		view.Daily = append(view.Daily, DayView{
			Date:              d.Time[i],
			Label:             format.Day(d.Time[i], now),
			Description:       format.WeatherDescription(d.WeatherCode[i]),
			Icon:              format.WeatherIcon(d.WeatherCode[i], true),
			TempMaxText:       format.Temperature(d.TempMax[i]),
			TempMinText:       format.Temperature(d.TempMin[i]),
			Sunrise:           format.ClockTime(d.Sunrise[i]),
			Sunset:            format.ClockTime(d.Sunset[i]),
			RainSumText:       format.Precipitation(d.RainSum[i]),
			UVIndexText:       format.UVIndex(d.UVIndexMax[i]),
			PrecipProbability: d.PrecipProbabilityMax[i],
		})
	}

	return view
}

// StateView is the session snapshot exposed over the API.
type StateView struct {
	Weather             *WeatherView `json:"weather"`
	Loading             bool         `json:"loading"`
	Error               string       `json:"error,omitempty"`
	ActiveForecastIndex *int         `json:"active_forecast_index"`
}

// SearchView is one row of the search history.
type SearchView struct {
	City        string    `json:"city"`
	Country     string    `json:"country,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Temperature *float64  `json:"temperature,omitempty"`
	Description string    `json:"description,omitempty"`
	SearchedAt  time.Time `json:"searched_at"`
}

func buildSearchView(rec models.SearchRecord) SearchView {
	view := SearchView{
		City:       rec.City,
		Latitude:   rec.Latitude,
		Longitude:  rec.Longitude,
		SearchedAt: rec.SearchedAt,
	}
	if rec.Country.Valid {
		view.Country = rec.Country.String
	}
	if rec.Temperature.Valid {
		t := rec.Temperature.Float64
		view.Temperature = &t
	}
	if rec.WeatherCode.Valid {
		view.Description = format.WeatherDescription(int(rec.WeatherCode.Int64))
	}
	return view
}
