package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/skycast/skycast/internal/metrics"
	"github.com/skycast/skycast/internal/models"
)

type geocodingResponse struct {
	Results []geocodingResult `json:"results"`
}

type geocodingResult struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Search resolves a free-text city name to a location. It returns
// ErrNoResults for an empty name or when geocoding matches nothing.
func (c *Client) Search(ctx context.Context, name string) (*models.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNoResults
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("name", name)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocodingURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("geocoding", "error").Inc()
		return nil, fmt.Errorf("fetch geocoding: %w", err)
	}
	defer resp.Body.Close()

	metrics.UpstreamLatency.WithLabelValues("geocoding").Observe(time.Since(start).Seconds())
	metrics.UpstreamRequestsTotal.WithLabelValues("geocoding", strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Endpoint: "geocoding", Status: resp.StatusCode}
	}

	var data geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("unmarshal geocoding: %w", err)
	}

	if len(data.Results) == 0 {
		return nil, ErrNoResults
	}

	r := data.Results[0]
	return &models.Location{
		Name:      r.Name,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}, nil
}
