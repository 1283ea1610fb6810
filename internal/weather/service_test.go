package weather_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/skycast/skycast/internal/openmeteo"
	"github.com/skycast/skycast/internal/weather"
)

const (
	geocodeBody = `{"results":[{"name":"London","country":"United Kingdom","latitude":51.5074,"longitude":-0.1278}]}`

	forecastBody = `{
		"current": {
			"temperature_2m": 18.4,
			"apparent_temperature": 17.1,
			"relative_humidity_2m": 64,
			"wind_speed_10m": 14.3,
			"wind_direction_10m": 225,
			"pressure_msl": 1013.2,
			"surface_pressure": 1008.9,
			"cloud_cover": 40,
			"precipitation": 0,
			"weather_code": 2,
			"is_day": 1
		},
		"daily": {
			"time": ["2024-03-15", "2024-03-16"],
			"temperature_2m_max": [19.2, 16.8],
			"temperature_2m_min": [9.1, 8.4],
			"weather_code": [2, 61],
			"sunrise": ["2024-03-15T06:14", "2024-03-16T06:12"],
			"sunset": ["2024-03-15T18:09", "2024-03-16T18:10"],
			"rain_sum": [0, 4.2],
			"uv_index_max": [3.5, 2.1],
			"precipitation_probability_max": [10, 80]
		}
	}`
)

func newService(t *testing.T, geocode, forecast http.HandlerFunc) *weather.Service {
	t.Helper()

	geoSrv := httptest.NewServer(geocode)
	fcSrv := httptest.NewServer(forecast)
	t.Cleanup(geoSrv.Close)
	t.Cleanup(fcSrv.Close)

	client := openmeteo.NewClientWithURLs(geoSrv.Client(), geoSrv.URL, fcSrv.URL)
	return weather.NewService(client)
}

func TestGetWeatherByCity(t *testing.T) {
	t.Parallel()

	svc := newService(t,
		func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(geocodeBody)) },
		func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(forecastBody)) },
	)

	data, err := svc.GetWeatherByCity(context.Background(), "London")
	if err != nil {
		t.Fatalf("GetWeatherByCity: %v", err)
	}

	if data.Location.Name != "London" || data.Location.Country != "United Kingdom" {
		t.Errorf("location not merged from geocoding: %+v", data.Location)
	}
	if data.Current.Temperature != 18.4 {
		t.Errorf("temperature = %v, want 18.4", data.Current.Temperature)
	}
	if data.Daily.Days() != 2 {
		t.Errorf("days = %d, want 2", data.Daily.Days())
	}
	if data.FetchedAt.IsZero() {
		t.Error("FetchedAt should be stamped")
	}
}

func TestGetWeatherByCityCaches(t *testing.T) {
	t.Parallel()

	var forecastCalls atomic.Int64
	svc := newService(t,
		func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(geocodeBody)) },
		func(w http.ResponseWriter, r *http.Request) {
			forecastCalls.Add(1)
			w.Write([]byte(forecastBody))
		},
	)

	if _, err := svc.GetWeatherByCity(context.Background(), "London"); err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	// Same city modulo case and whitespace hits the cache.
	if _, err := svc.GetWeatherByCity(context.Background(), "  LONDON "); err != nil {
		t.Fatalf("second lookup: %v", err)
	}

	if got := forecastCalls.Load(); got != 1 {
		t.Errorf("forecast fetched %d times, want 1 (cache miss only)", got)
	}
}

func TestGetWeatherByCityNotFound(t *testing.T) {
	t.Parallel()

	svc := newService(t,
		func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"results":[]}`)) },
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("forecast should not be fetched when geocoding fails")
		},
	)

	_, err := svc.GetWeatherByCity(context.Background(), "InvalidCity123")
	if !errors.Is(err, weather.ErrLocationNotFound) {
		t.Fatalf("err = %v, want ErrLocationNotFound", err)
	}
}

func TestGetWeatherByCityEmptyName(t *testing.T) {
	t.Parallel()

	svc := newService(t,
		func(w http.ResponseWriter, r *http.Request) { t.Error("empty city should not reach geocoding") },
		func(w http.ResponseWriter, r *http.Request) { t.Error("empty city should not reach forecast") },
	)

	for _, city := range []string{"", "   "} {
		if _, err := svc.GetWeatherByCity(context.Background(), city); !errors.Is(err, weather.ErrLocationNotFound) {
			t.Errorf("GetWeatherByCity(%q) err = %v, want ErrLocationNotFound", city, err)
		}
	}
}

func TestGetWeatherByCityUpstreamFailure(t *testing.T) {
	t.Parallel()

	svc := newService(t,
		func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(geocodeBody)) },
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
	)

	_, err := svc.GetWeatherByCity(context.Background(), "London")

	var apiErr *weather.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", apiErr.Status)
	}
}
