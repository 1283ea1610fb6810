package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skycast/skycast/internal/session"
	"github.com/skycast/skycast/internal/store"
	"github.com/skycast/skycast/internal/weather"
)

// staleThreshold marks the stored snapshot degraded when the refresher has
// not recorded anything for this long.
const staleThreshold = 90 * time.Minute

type Server struct {
	svc     weather.Source
	session *session.Session
	store   *store.Store
	port    string
}

func NewServer(svc weather.Source, sess *session.Session, st *store.Store, port string) *Server {
	return &Server{
		svc:     svc,
		session: sess,
		store:   st,
		port:    port,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/weather", s.handleWeather)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/forecast/toggle", s.handleToggle)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleWeather is the stateless lookup: GET /api/weather?city=London.
func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")

	data, err := s.svc.GetWeatherByCity(r.Context(), city)
	if err != nil {
		switch {
		case errors.Is(err, weather.ErrLocationNotFound):
			writeError(w, http.StatusNotFound, session.MsgLocationNotFound)
		default:
			log.Printf("api: lookup %q: %v", city, err)
			writeError(w, http.StatusBadGateway, session.MsgFetchFailed)
		}
		return
	}

	writeJSON(w, http.StatusOK, buildWeatherView(data, time.Now()))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stateView())
}

func (s *Server) stateView() StateView {
	snap := s.session.Snapshot()
	view := StateView{
		Loading:             snap.Loading,
		Error:               snap.Err,
		ActiveForecastIndex: snap.ActiveForecastIndex,
	}
	if snap.Data != nil {
		view.Weather = buildWeatherView(snap.Data, time.Now())
	}
	return view
}

type searchRequest struct {
	City string `json:"city"`
}

// handleSearch drives the session state machine. The lookup runs in the
// request goroutine; concurrent searches race and the newest one wins.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.session.Search(r.Context(), req.City)
	writeJSON(w, http.StatusOK, s.stateView())
}

type toggleRequest struct {
	Index int `json:"index"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.session.ToggleForecastDay(req.Index); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.stateView())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.RecentSearches(20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]SearchView, 0, len(records))
	for _, rec := range records {
		views = append(views, buildSearchView(rec))
	}
	writeJSON(w, http.StatusOK, views)
}

type healthStatus struct {
	Status     string     `json:"status"`
	LastSearch *time.Time `json:"last_search,omitempty"`
	AgeMinutes int        `json:"age_minutes,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := healthStatus{Status: "ok"}

	latest, err := s.store.LatestSearch()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
		return
	}

	if latest != nil {
		health.LastSearch = &latest.SearchedAt
		age := time.Since(latest.SearchedAt)
		health.AgeMinutes = int(age.Minutes())
		if age > staleThreshold {
			health.Status = "degraded"
		}
	}

	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}
