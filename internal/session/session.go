// Package session holds the application state machine that sits between
// the weather service and whatever renders it: Idle → Loading →
// Success/Error, plus the orthogonal forecast-day expansion toggle.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/skycast/skycast/internal/models"
	"github.com/skycast/skycast/internal/weather"
)

// User-facing error messages, one per error kind.
const (
	MsgLocationNotFound = "City not found. Check the city name and try again."
	MsgFetchFailed      = "Could not fetch weather data. Check the city name and try again."
)

// ErrIndexOutOfRange is returned by ToggleForecastDay for an index outside
// the loaded forecast.
var ErrIndexOutOfRange = errors.New("session: forecast index out of range")

// AppState is a point-in-time snapshot of the session.
type AppState struct {
	Data                *models.WeatherData
	Loading             bool
	Err                 string
	ActiveForecastIndex *int
}

// Recorder persists the outcome of successful searches.
type Recorder interface {
	SaveLastCity(city string) error
	InsertSearch(rec models.SearchRecord) error
	LastCity() (string, error)
}

// Session owns the app state and serializes all mutations. It is
// constructed explicitly and injected where needed; there is no package
// level instance.
type Session struct {
	svc         weather.Source
	rec         Recorder
	defaultCity string

	mu      sync.Mutex
	state   AppState
	lastReq uint64
}

func New(svc weather.Source, rec Recorder, defaultCity string) *Session {
	return &Session{
		svc:         svc,
		rec:         rec,
		defaultCity: defaultCity,
	}
}

// Start performs the initial search: the last persisted city if there is
// one, otherwise the configured default. A failed initial search is
// non-fatal; it simply leaves the session in the error state.
func (s *Session) Start(ctx context.Context) {
	city := s.defaultCity
	if s.rec != nil {
		saved, err := s.rec.LastCity()
		if err != nil {
			log.Printf("session: read saved city: %v", err)
		} else if saved != "" {
			city = saved
		}
	}
	s.Search(ctx, city)
}

// Search runs one lookup through the state machine. Concurrent calls race
// deliberately: each gets a monotonically increasing request id, and a
// lookup that resolves after a newer one started is discarded
// (last-writer-wins). Superseded requests are not cancelled.
func (s *Session) Search(ctx context.Context, city string) {
	s.mu.Lock()
	s.lastReq++
	id := s.lastReq
	s.state.Loading = true
	s.state.Err = ""
	s.mu.Unlock()

	data, err := s.svc.GetWeatherByCity(ctx, city)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id != s.lastReq {
		// A newer search superseded this one while it was in flight.
		return
	}

	s.state.Loading = false
	if err != nil {
		// Previously displayed data stays visible alongside the error.
		s.state.Err = userMessage(err)
		return
	}

	s.state.Data = data
	s.state.Err = ""
	s.state.ActiveForecastIndex = nil
	s.persist(data)
}

func (s *Session) persist(data *models.WeatherData) {
	if s.rec == nil {
		return
	}
	if err := s.rec.SaveLastCity(data.Location.Name); err != nil {
		log.Printf("session: save last city: %v", err)
	}
	if err := s.rec.InsertSearch(searchRecord(data)); err != nil {
		log.Printf("session: record search: %v", err)
	}
}

// ToggleForecastDay expands forecast day i, collapsing whatever was
// expanded before. Toggling the already-active day collapses it.
func (s *Session) ToggleForecastDay(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Data == nil {
		return fmt.Errorf("session: no forecast loaded")
	}
	if i < 0 || i >= s.state.Data.Daily.Days() {
		return ErrIndexOutOfRange
	}

	if s.state.ActiveForecastIndex != nil && *s.state.ActiveForecastIndex == i {
		s.state.ActiveForecastIndex = nil
		return nil
	}
	idx := i
	s.state.ActiveForecastIndex = &idx
	return nil
}

// Snapshot returns a copy of the current state. Data is shared but
// treated as immutable after creation.
func (s *Session) Snapshot() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state
	if s.state.ActiveForecastIndex != nil {
		idx := *s.state.ActiveForecastIndex
		snap.ActiveForecastIndex = &idx
	}
	return snap
}

func userMessage(err error) string {
	if errors.Is(err, weather.ErrLocationNotFound) {
		return MsgLocationNotFound
	}
	return MsgFetchFailed
}

func searchRecord(data *models.WeatherData) models.SearchRecord {
	rec := models.SearchRecord{
		City:       data.Location.Name,
		Latitude:   data.Location.Latitude,
		Longitude:  data.Location.Longitude,
		SearchedAt: data.FetchedAt,
	}
	if data.Location.Country != "" {
		rec.Country.String = data.Location.Country
		rec.Country.Valid = true
	}
	rec.Temperature.Float64 = data.Current.Temperature
	rec.Temperature.Valid = true
	rec.WeatherCode.Int64 = int64(data.Current.WeatherCode)
	rec.WeatherCode.Valid = true
	return rec
}
