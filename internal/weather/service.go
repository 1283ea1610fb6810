// Package weather implements the city lookup service: geocode the city,
// fetch its forecast and merge the location metadata into the result.
package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/skycast/skycast/internal/metrics"
	"github.com/skycast/skycast/internal/models"
	"github.com/skycast/skycast/internal/openmeteo"
)

// ErrLocationNotFound is returned for an empty city name or when geocoding
// matches no locations.
var ErrLocationNotFound = errors.New("weather: location not found")

// APIError wraps an upstream HTTP or network failure. Status is zero for
// transport-level errors.
type APIError struct {
	Status int
	Err    error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("weather: upstream status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("weather: upstream request failed: %v", e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Source resolves a city name to weather data. The live Service and the
// FixtureSource both implement it.
type Source interface {
	GetWeatherByCity(ctx context.Context, city string) (*models.WeatherData, error)
}

const (
	cacheTTL     = 10 * time.Minute
	cacheCleanup = 30 * time.Minute
)

// Service is the live open-meteo backed Source. Forecasts are cached per
// city so repeated lookups within the TTL skip the network entirely.
type Service struct {
	client *openmeteo.Client
	cache  *gocache.Cache
}

func NewService(client *openmeteo.Client) *Service {
	return &Service{
		client: client,
		cache:  gocache.New(cacheTTL, cacheCleanup),
	}
}

// GetWeatherByCity performs the two-step lookup: geocode then forecast.
// Single attempt, no retries; this backs an interactive request.
func (s *Service) GetWeatherByCity(ctx context.Context, city string) (*models.WeatherData, error) {
	key := cacheKey(city)
	if key == "" {
		metrics.LookupsTotal.WithLabelValues("not_found").Inc()
		return nil, ErrLocationNotFound
	}

	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheHitsTotal.Inc()
		metrics.LookupsTotal.WithLabelValues("ok").Inc()
		return cached.(*models.WeatherData), nil
	}
	metrics.CacheMissesTotal.Inc()

	loc, err := s.client.Search(ctx, city)
	if err != nil {
		return nil, s.countErr(classify(err))
	}

	current, daily, err := s.client.Forecast(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, s.countErr(classify(err))
	}

	data := &models.WeatherData{
		Location:  *loc,
		Current:   *current,
		Daily:     *daily,
		FetchedAt: time.Now().UTC(),
	}
	s.cache.Set(key, data, gocache.DefaultExpiration)

	metrics.LookupsTotal.WithLabelValues("ok").Inc()
	return data, nil
}

func (s *Service) countErr(err error) error {
	switch {
	case errors.Is(err, ErrLocationNotFound):
		metrics.LookupsTotal.WithLabelValues("not_found").Inc()
	default:
		metrics.LookupsTotal.WithLabelValues("api_error").Inc()
	}
	return err
}

// classify maps transport-level errors onto the two error kinds callers
// are expected to handle.
func classify(err error) error {
	if errors.Is(err, openmeteo.ErrNoResults) {
		return ErrLocationNotFound
	}
	var statusErr *openmeteo.StatusError
	if errors.As(err, &statusErr) {
		return &APIError{Status: statusErr.Status, Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &APIError{Err: err}
}

func cacheKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
