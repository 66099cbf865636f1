// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package api serves the recommendation page and the JSON API using the Chi router.
//
// Routes:
//
//	GET /                                    HTML page: title select, Recommend button, five-poster grid
//	GET /api/v1/movies                       catalog titles and ids (?q=, ?limit=)
//	GET /api/v1/recommendations              ?title=&k=&posters=
//	GET /api/v1/movies/{movieID}/similar     neighbors by catalog id
//	GET /api/v1/movies/{movieID}/poster      one poster lookup
//	GET /api/v1/stats                        engine counters and per-route latency
//	GET /api/v1/health/live                  liveness
//	GET /api/v1/health/ready                 readiness with catalog and poster status
//	GET /metrics                             Prometheus
//
// JSON responses use the APIResponse envelope. Recommendation endpoints
// answer 200 even when nothing was found: the reason is in data.warnings.
package api
