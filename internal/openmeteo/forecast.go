package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/skycast/skycast/internal/metrics"
	"github.com/skycast/skycast/internal/models"
)

const (
	forecastDays = 7

	currentFields = "temperature_2m,apparent_temperature,relative_humidity_2m," +
		"wind_speed_10m,wind_direction_10m,pressure_msl,surface_pressure," +
		"cloud_cover,precipitation,weather_code,is_day"
	dailyFields = "temperature_2m_max,temperature_2m_min,weather_code," +
		"sunrise,sunset,rain_sum,uv_index_max,precipitation_probability_max"
)

type forecastResponse struct {
	Current currentBlock         `json:"current"`
	Daily   models.DailyForecast `json:"daily"`
}

// currentBlock matches the wire shape; is_day arrives as 0/1.
type currentBlock struct {
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
	IsDay               int     `json:"is_day"`
}

// Forecast fetches current conditions and the 7-day daily forecast for a
// coordinate pair. Misaligned daily arrays are rejected.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (*models.CurrentConditions, *models.DailyForecast, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current", currentFields)
	q.Set("daily", dailyFields)
	q.Set("forecast_days", strconv.Itoa(forecastDays))
	q.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.forecastURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("forecast", "error").Inc()
		return nil, nil, fmt.Errorf("fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	metrics.UpstreamLatency.WithLabelValues("forecast").Observe(time.Since(start).Seconds())
	metrics.UpstreamRequestsTotal.WithLabelValues("forecast", strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &StatusError{Endpoint: "forecast", Status: resp.StatusCode}
	}

	var data forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, nil, fmt.Errorf("unmarshal forecast: %w", err)
	}

	if err := data.Daily.Validate(); err != nil {
		return nil, nil, fmt.Errorf("forecast daily block: %w", err)
	}

	current := &models.CurrentConditions{
		Temperature:         data.Current.Temperature,
		ApparentTemperature: data.Current.ApparentTemperature,
		Humidity:            data.Current.Humidity,
		WindSpeed:           data.Current.WindSpeed,
		WindDirection:       data.Current.WindDirection,
		PressureMSL:         data.Current.PressureMSL,
		SurfacePressure:     data.Current.SurfacePressure,
		CloudCover:          data.Current.CloudCover,
		Precipitation:       data.Current.Precipitation,
		WeatherCode:         data.Current.WeatherCode,
		IsDay:               data.Current.IsDay == 1,
	}

	daily := data.Daily
	return current, &daily, nil
}
