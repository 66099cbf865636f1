// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/recommend"
)

// PosterStats exposes poster cache counters. Implemented by *poster.Resolver.
type PosterStats interface {
	CacheStats() cache.Stats
}

// BreakerState exposes the TMDB circuit breaker state. Implemented by *poster.BreakerClient.
type BreakerState interface {
	State() string
}

// Handler serves the page and the JSON API.
type Handler struct {
	engine      *recommend.Engine
	posterStats PosterStats
	breaker     BreakerState
	perfMon     *middleware.PerformanceMonitor
	startTime   time.Time
	version     string
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithPosterStats reports poster cache counters on /api/v1/stats.
func WithPosterStats(s PosterStats) HandlerOption {
	return func(h *Handler) { h.posterStats = s }
}

// WithBreakerState reports the circuit breaker on readiness and stats.
func WithBreakerState(b BreakerState) HandlerOption {
	return func(h *Handler) { h.breaker = b }
}

// WithPerformanceMonitor replaces the default request monitor.
func WithPerformanceMonitor(pm *middleware.PerformanceMonitor) HandlerOption {
	return func(h *Handler) { h.perfMon = pm }
}

// WithVersion sets the version reported by health endpoints.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) { h.version = v }
}

// NewHandler creates the API handler. The performance monitor keeps the
// last 1000 requests unless replaced.
func NewHandler(engine *recommend.Engine, opts ...HandlerOption) *Handler {
	h := &Handler{
		engine:    engine,
		perfMon:   middleware.NewPerformanceMonitor(1000, middleware.DefaultSlowThreshold),
		startTime: time.Now(),
		version:   "dev",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// PerformanceMonitor returns the request monitor used by the router.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// Movies lists catalog entries, optionally filtered by a title substring.
//
// GET /api/v1/movies?q=&limit=
func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	req, ok := bindAndValidate(w, r, func() (MoviesRequest, error) {
		return parseMoviesRequest(r.URL.Query())
	})
	if !ok {
		return
	}

	matches := h.engine.Movies(req.Query, 0)
	total := len(matches)
	if req.Limit > 0 && req.Limit < total {
		matches = matches[:req.Limit]
	}

	NewResponseWriter(w, r).SuccessWithPagination(matches, &PaginationMeta{
		Total:   total,
		Count:   len(matches),
		Limit:   req.Limit,
		HasMore: len(matches) < total,
	})
}

// Recommendations returns the top-K movies similar to a title. Lookup and
// poster problems are reported in data.warnings with status 200.
//
// GET /api/v1/recommendations?title=&k=&posters=
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	req, ok := bindAndValidate(w, r, func() (RecommendationsRequest, error) {
		return parseRecommendationsRequest(r.URL.Query())
	})
	if !ok {
		return
	}

	resp := h.engine.Recommend(r.Context(), recommend.Request{
		Title:       req.Title,
		K:           req.K,
		SkipPosters: !req.Posters,
	})
	WriteSuccess(w, r, resp)
}

// Similar returns neighbors of one catalog movie.
//
// GET /api/v1/movies/{movieID}/similar?k=&posters=
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	req, ok := bindAndValidate(w, r, func() (SimilarRequest, error) {
		return parseSimilarRequest(chi.URLParam(r, "movieID"), r.URL.Query())
	})
	if !ok {
		return
	}

	if _, found := h.engine.Movie(req.MovieID); !found {
		NewResponseWriter(w, r).NotFound("Movie not found in catalog")
		return
	}

	resp := h.engine.Similar(r.Context(), req.MovieID, recommend.Request{
		K:           req.K,
		SkipPosters: !req.Posters,
	})
	WriteSuccess(w, r, resp)
}

// Poster resolves the poster for one catalog movie.
//
// GET /api/v1/movies/{movieID}/poster
func (h *Handler) Poster(w http.ResponseWriter, r *http.Request) {
	req, ok := bindAndValidate(w, r, func() (SimilarRequest, error) {
		return parseSimilarRequest(chi.URLParam(r, "movieID"), nil)
	})
	if !ok {
		return
	}

	item, warning, found := h.engine.Poster(r.Context(), req.MovieID)
	if !found {
		NewResponseWriter(w, r).NotFound("Movie not found in catalog")
		return
	}

	warnings := []recommend.Warning{}
	if warning != nil {
		warnings = append(warnings, *warning)
	}
	WriteSuccess(w, r, PosterResponse{Item: item, Warnings: warnings})
}

// PosterResponse is the data of GET /api/v1/movies/{movieID}/poster.
type PosterResponse struct {
	Item     recommend.Item      `json:"item"`
	Warnings []recommend.Warning `json:"warnings"`
}

// StatsResponse is the data of GET /api/v1/stats.
type StatsResponse struct {
	Engine        recommend.Stats            `json:"engine"`
	CatalogSize   int                        `json:"catalog_size"`
	PosterCache   *cache.Stats               `json:"poster_cache,omitempty"`
	BreakerState  string                     `json:"breaker_state,omitempty"`
	Endpoints     []middleware.EndpointStats `json:"endpoints"`
	UptimeSeconds float64                    `json:"uptime_seconds"`
}

// Stats reports engine counters, poster cache efficiency, and per-route latency.
//
// GET /api/v1/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Engine:        h.engine.Stats(),
		CatalogSize:   h.engine.CatalogSize(),
		Endpoints:     h.perfMon.GetStats(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.posterStats != nil {
		s := h.posterStats.CacheStats()
		resp.PosterCache = &s
	}
	if h.breaker != nil {
		resp.BreakerState = h.breaker.State()
	}
	WriteSuccess(w, r, resp)
}
