package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skycast/skycast/internal/api"
	"github.com/skycast/skycast/internal/models"
	"github.com/skycast/skycast/internal/session"
	"github.com/skycast/skycast/internal/store"
	"github.com/skycast/skycast/internal/weather"
)

func newTestServer(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	src, err := weather.NewFixtureSource(0)
	if err != nil {
		t.Fatalf("fixture source: %v", err)
	}

	sess := session.New(src, st, "London")
	srv := api.NewServer(src, sess, st, "0")
	return srv.Handler(), st
}

func getJSON(t *testing.T, handler http.Handler, path string, v any) int {
	t.Helper()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	if v != nil {
		if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
			t.Fatalf("decode %s response: %v\nbody: %s", path, err, rr.Body.String())
		}
	}
	return rr.Code
}

func postJSON(t *testing.T, handler http.Handler, path string, body string, v any) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if v != nil {
		if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
			t.Fatalf("decode %s response: %v\nbody: %s", path, err, rr.Body.String())
		}
	}
	return rr.Code
}

func TestWeatherEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	var view api.WeatherView
	code := getJSON(t, handler, "/api/weather?city=London", &view)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}

	if view.Location.Name != "London" || view.Location.Country != "United Kingdom" {
		t.Errorf("location = %+v", view.Location)
	}
	if view.Current.Description != "Partly cloudy" {
		t.Errorf("description = %q, want Partly cloudy", view.Current.Description)
	}
	if view.Current.TemperatureText != "18°C" {
		t.Errorf("temperature text = %q, want 18°C", view.Current.TemperatureText)
	}
	if view.Current.WindCompass != "SW" {
		t.Errorf("wind compass = %q, want SW", view.Current.WindCompass)
	}
	if len(view.Daily) != 7 {
		t.Errorf("daily days = %d, want 7", len(view.Daily))
	}
}

func TestWeatherEndpointNotFound(t *testing.T) {
	handler, _ := newTestServer(t)

	var resp map[string]string
	code := getJSON(t, handler, "/api/weather?city=InvalidCity123", &resp)
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	if resp["error"] != session.MsgLocationNotFound {
		t.Errorf("error = %q, want %q", resp["error"], session.MsgLocationNotFound)
	}
}

func TestSearchEndpoint(t *testing.T) {
	handler, st := newTestServer(t)

	var state api.StateView
	code := postJSON(t, handler, "/api/search", `{"city":"Tokyo"}`, &state)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if state.Weather == nil || state.Weather.Location.Name != "Tokyo" {
		t.Fatalf("state weather = %+v, want Tokyo", state.Weather)
	}
	if state.Loading || state.Error != "" {
		t.Errorf("unexpected state: loading=%v error=%q", state.Loading, state.Error)
	}

	// A successful search persists the city for the next startup.
	city, err := st.LastCity()
	if err != nil {
		t.Fatalf("LastCity: %v", err)
	}
	if city != "Tokyo" {
		t.Errorf("saved city = %q, want Tokyo", city)
	}
}

func TestSearchEndpointUnknownCity(t *testing.T) {
	handler, _ := newTestServer(t)

	var state api.StateView
	code := postJSON(t, handler, "/api/search", `{"city":"InvalidCity123"}`, &state)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (errors surface in state)", code)
	}
	if state.Error != session.MsgLocationNotFound {
		t.Errorf("error = %q, want %q", state.Error, session.MsgLocationNotFound)
	}
}

func TestSearchEndpointMethodNotAllowed(t *testing.T) {
	handler, _ := newTestServer(t)

	if code := getJSON(t, handler, "/api/search", nil); code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", code)
	}
}

func TestToggleEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	if code := postJSON(t, handler, "/api/search", `{"city":"London"}`, nil); code != http.StatusOK {
		t.Fatalf("search status = %d", code)
	}

	var state api.StateView
	if code := postJSON(t, handler, "/api/forecast/toggle", `{"index":2}`, &state); code != http.StatusOK {
		t.Fatalf("toggle status = %d", code)
	}
	if state.ActiveForecastIndex == nil || *state.ActiveForecastIndex != 2 {
		t.Fatalf("active index = %v, want 2", state.ActiveForecastIndex)
	}

	// Toggling the same day collapses it.
	if code := postJSON(t, handler, "/api/forecast/toggle", `{"index":2}`, &state); code != http.StatusOK {
		t.Fatalf("second toggle status = %d", code)
	}
	if state.ActiveForecastIndex != nil {
		t.Errorf("active index = %v, want nil", *state.ActiveForecastIndex)
	}

	if code := postJSON(t, handler, "/api/forecast/toggle", `{"index":42}`, nil); code != http.StatusBadRequest {
		t.Errorf("out-of-range toggle status = %d, want 400", code)
	}
}

func TestStateEndpointBeforeAnySearch(t *testing.T) {
	handler, _ := newTestServer(t)

	var state api.StateView
	if code := getJSON(t, handler, "/api/state", &state); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if state.Weather != nil {
		t.Errorf("weather = %+v, want nil before any search", state.Weather)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	handler, st := newTestServer(t)

	rec := models.SearchRecord{
		City:        "Paris",
		Country:     sql.NullString{String: "France", Valid: true},
		Latitude:    48.8566,
		Longitude:   2.3522,
		Temperature: sql.NullFloat64{Float64: 14.2, Valid: true},
		WeatherCode: sql.NullInt64{Int64: 61, Valid: true},
		SearchedAt:  time.Now().UTC(),
	}
	if err := st.InsertSearch(rec); err != nil {
		t.Fatalf("InsertSearch: %v", err)
	}

	var views []api.SearchView
	if code := getJSON(t, handler, "/api/history", &views); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if len(views) != 1 {
		t.Fatalf("got %d history rows, want 1", len(views))
	}
	if views[0].City != "Paris" || views[0].Description != "Slight rain" {
		t.Errorf("history row = %+v", views[0])
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler, st := newTestServer(t)

	var health map[string]any
	if code := getJSON(t, handler, "/health", &health); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if health["status"] != "ok" {
		t.Errorf("status = %v, want ok", health["status"])
	}

	stale := models.SearchRecord{
		City:       "London",
		Latitude:   51.5,
		Longitude:  -0.1,
		SearchedAt: time.Now().UTC().Add(-3 * time.Hour),
	}
	if err := st.InsertSearch(stale); err != nil {
		t.Fatalf("InsertSearch: %v", err)
	}

	if code := getJSON(t, handler, "/health", &health); code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 for stale snapshot", code)
	}
	if health["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", health["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	if code := getJSON(t, handler, "/metrics", nil); code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
}
