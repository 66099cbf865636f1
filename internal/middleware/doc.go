// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package middleware provides HTTP middleware shared by the API router.
//
//   - RequestID: propagates or generates X-Request-ID and seeds the logging context.
//   - PrometheusMetrics: request counts, latency and in-flight gauge, labelled
//     by chi route pattern so path parameters do not explode cardinality.
//   - PerformanceMonitor: a sliding window of recent request latencies with
//     per-route percentiles, served by the stats endpoint.
//
// All middleware uses the func(http.Handler) http.Handler shape accepted by
// chi's Router.Use.
package middleware
