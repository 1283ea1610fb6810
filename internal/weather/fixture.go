package weather

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/skycast/skycast/internal/models"
)

//go:embed fixture.json
var fixtureJSON []byte

// fixtureCities are the locations the fixture can resolve. Anything else
// returns ErrLocationNotFound; the fixture never defaults to London, so a
// failing lookup in tests stays a failing lookup.
var fixtureCities = map[string]models.Location{
	"london":    {Name: "London", Country: "United Kingdom", Latitude: 51.5074, Longitude: -0.1278},
	"tokyo":     {Name: "Tokyo", Country: "Japan", Latitude: 35.6762, Longitude: 139.6503},
	"new york":  {Name: "New York", Country: "United States", Latitude: 40.7128, Longitude: -74.0060},
	"paris":     {Name: "Paris", Country: "France", Latitude: 48.8566, Longitude: 2.3522},
	"sydney":    {Name: "Sydney", Country: "Australia", Latitude: -33.8688, Longitude: 151.2093},
	"berlin":    {Name: "Berlin", Country: "Germany", Latitude: 52.5200, Longitude: 13.4050},
	"toronto":   {Name: "Toronto", Country: "Canada", Latitude: 43.6532, Longitude: -79.3832},
	"mumbai":    {Name: "Mumbai", Country: "India", Latitude: 19.0760, Longitude: 72.8777},
	"singapore": {Name: "Singapore", Country: "Singapore", Latitude: 1.3521, Longitude: 103.8198},
	"amsterdam": {Name: "Amsterdam", Country: "Netherlands", Latitude: 52.3676, Longitude: 4.9041},
}

// FixtureSource serves the embedded forecast fixture instead of calling
// open-meteo. It is selected by explicit configuration, never by
// environment sniffing, and exists to make automated tests deterministic.
type FixtureSource struct {
	delay    time.Duration
	template models.WeatherData
}

// NewFixtureSource parses the embedded fixture. The delay is applied to
// every lookup to mimic network latency; zero disables it.
func NewFixtureSource(delay time.Duration) (*FixtureSource, error) {
	var template models.WeatherData
	if err := json.Unmarshal(fixtureJSON, &template); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := template.Daily.Validate(); err != nil {
		return nil, fmt.Errorf("fixture daily block: %w", err)
	}
	return &FixtureSource{delay: delay, template: template}, nil
}

func (f *FixtureSource) GetWeatherByCity(ctx context.Context, city string) (*models.WeatherData, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	loc, ok := fixtureCities[cacheKey(city)]
	if !ok {
		return nil, ErrLocationNotFound
	}

	data := f.template
	data.Location = loc
	data.FetchedAt = time.Now().UTC()
	return &data, nil
}
