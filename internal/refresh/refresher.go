// Package refresh keeps the stored weather snapshot for the last-searched
// city warm. This is the only non-interactive fetch path, so unlike the
// lookup service it retries transient upstream failures.
package refresh

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/skycast/skycast/internal/metrics"
	"github.com/skycast/skycast/internal/models"
	"github.com/skycast/skycast/internal/session"
	"github.com/skycast/skycast/internal/weather"
)

const DefaultInterval = 30 * time.Minute

type Refresher struct {
	svc      weather.Source
	rec      session.Recorder
	interval time.Duration
}

func New(svc weather.Source, rec session.Recorder, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Refresher{svc: svc, rec: rec, interval: interval}
}

// Run refreshes once at startup and then on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	if err := r.RefreshOnce(ctx); err != nil {
		log.Printf("refresh: %v", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("refresh: shutting down")
			return
		case <-ticker.C:
			if err := r.RefreshOnce(ctx); err != nil {
				log.Printf("refresh: %v", err)
			}
		}
	}
}

// RefreshOnce re-fetches the last-searched city and appends a snapshot to
// the search log. A missing saved city is not an error; there is simply
// nothing to refresh yet.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	city, err := r.rec.LastCity()
	if err != nil {
		return fmt.Errorf("read saved city: %w", err)
	}
	if city == "" {
		return nil
	}

	var data *models.WeatherData
	operation := func() error {
		var err error
		data, err = r.svc.GetWeatherByCity(ctx, city)
		if err != nil {
			if errors.Is(err, weather.ErrLocationNotFound) {
				// The saved city will not start resolving on retry.
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		metrics.RefreshRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("refresh %q: %w", city, err)
	}

	if err := r.rec.InsertSearch(models.SearchRecord{
		City:        data.Location.Name,
		Country:     nullString(data.Location.Country),
		Latitude:    data.Location.Latitude,
		Longitude:   data.Location.Longitude,
		Temperature: nullFloat(data.Current.Temperature),
		WeatherCode: nullInt(int64(data.Current.WeatherCode)),
		SearchedAt:  data.FetchedAt,
	}); err != nil {
		metrics.RefreshRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("record refresh %q: %w", city, err)
	}

	metrics.RefreshRunsTotal.WithLabelValues("ok").Inc()
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}
