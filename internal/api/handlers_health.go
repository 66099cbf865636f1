// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"
)

// ReadinessStatus is the data of GET /api/v1/health/ready.
type ReadinessStatus struct {
	Ready             bool    `json:"ready"`
	Version           string  `json:"version"`
	CatalogSize       int     `json:"catalog_size"`
	PostersConfigured bool    `json:"posters_configured"`
	BreakerState      string  `json:"breaker_state,omitempty"`
	Uptime            float64 `json:"uptime"`
}

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
//
// GET /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests. The service is ready once
// a non-empty model is loaded. A missing TMDB key or an open breaker only
// degrades posters and is reported without failing the probe.
//
// GET /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := ReadinessStatus{
		Version:           h.version,
		CatalogSize:       h.engine.CatalogSize(),
		PostersConfigured: h.engine.PostersConfigured(),
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.breaker != nil {
		status.BreakerState = h.breaker.State()
	}
	status.Ready = status.CatalogSize > 0

	if !status.Ready {
		NewResponseWriter(w, r).ServiceUnavailable("Model not loaded", status)
		return
	}
	WriteSuccess(w, r, status)
}
