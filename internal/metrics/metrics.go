// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package metrics defines the Prometheus instruments exported on /metrics.
//
// All collectors register with the default registry through promauto, so
// importing the package is enough to expose them.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Model Metrics
	ModelMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_model_movies",
			Help: "Number of movies in the loaded catalog",
		},
	)

	ModelLoadDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_model_load_duration_seconds",
			Help: "Time taken to load the catalog and similarity matrix at startup",
		},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // ok, not_found, malformed
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marquee_recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency including poster resolution",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// Poster Metrics
	PosterLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_poster_lookups_total",
			Help: "Total number of poster resolutions by result",
		},
		[]string{"result"}, // found, absent, fetch_error, config_missing
	)

	PosterCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_poster_cache_requests_total",
			Help: "Poster cache lookups by tier and result",
		},
		[]string{"tier", "result"}, // tier: memory, store; result: hit, miss
	)

	PosterCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_poster_cache_entries",
			Help: "Current number of entries in the in-memory poster cache",
		},
	)

	// TMDB Client Metrics
	TMDBRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_tmdb_requests_total",
			Help: "Total number of TMDB API requests by HTTP status code",
		},
		[]string{"status_code"}, // "error" when no response was received
	)

	TMDBRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marquee_tmdb_request_duration_seconds",
			Help:    "TMDB API request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	TMDBRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_tmdb_retries_total",
			Help: "Total number of TMDB requests retried after HTTP 429",
		},
	)

	// Persistent Store Metrics
	StoreGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_store_gc_runs_total",
			Help: "Badger value log garbage collection runs by result",
		},
		[]string{"result"}, // rewritten, nothing, error
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordModelLoad records the size and load time of the similarity model.
func RecordModelLoad(movies int, duration time.Duration) {
	ModelMovies.Set(float64(movies))
	ModelLoadDuration.Set(duration.Seconds())
}

// RecordRecommendation records one recommendation request.
func RecordRecommendation(outcome string, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordPosterCache records a cache lookup on the given tier.
func RecordPosterCache(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	PosterCacheRequests.WithLabelValues(tier, result).Inc()
}

// RecordTMDBRequest records a TMDB request. A zero status means the request
// failed before a response was received.
func RecordTMDBRequest(status int, duration time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	TMDBRequests.WithLabelValues(code).Inc()
	TMDBRequestDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
