package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skycast_upstream_requests_total",
			Help: "Total open-meteo API requests",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skycast_upstream_latency_seconds",
			Help:    "Open-meteo API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skycast_lookups_total",
			Help: "Total city weather lookups",
		},
		[]string{"result"},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skycast_cache_hits_total",
			Help: "Forecast cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skycast_cache_misses_total",
			Help: "Forecast cache misses",
		},
	)

	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skycast_refresh_runs_total",
			Help: "Background refresh attempts",
		},
		[]string{"status"},
	)
)
