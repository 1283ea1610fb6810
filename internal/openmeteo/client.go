package openmeteo

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/skycast/skycast/internal/httputil"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"

	// Open-meteo is a free shared API; keep outbound traffic polite.
	requestsPerSecond = 2
	requestBurst      = 4
)

// ErrNoResults is returned when geocoding matches no locations.
var ErrNoResults = errors.New("openmeteo: no matching locations")

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Endpoint string
	Status   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openmeteo: %s: status %d", e.Endpoint, e.Status)
}

// Client talks to the open-meteo geocoding and forecast endpoints.
// Lookups are single-attempt; retry policy belongs to the caller.
type Client struct {
	client       *http.Client
	geocodingURL string
	forecastURL  string
	limiter      *rate.Limiter
}

func NewClient() *Client {
	return &Client{
		client:       httputil.NewClient(),
		geocodingURL: defaultGeocodingURL,
		forecastURL:  defaultForecastURL,
		limiter:      rate.NewLimiter(requestsPerSecond, requestBurst),
	}
}

// NewClientWithURLs overrides the endpoint URLs, for tests.
func NewClientWithURLs(client *http.Client, geocodingURL, forecastURL string) *Client {
	return &Client{
		client:       client,
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
		limiter:      rate.NewLimiter(rate.Inf, 1),
	}
}
