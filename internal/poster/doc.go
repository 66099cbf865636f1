// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package poster resolves TMDB movie ids to poster image URLs.

The lookup chain is:

	Resolver ─► memory LRU ─► BadgerStore (optional) ─► BreakerClient ─► Client ─► TMDB

Client issues GET /3/movie/{id}?api_key=... and decodes the poster_path
field. By default each lookup is a single request. With MaxRetries > 0,
HTTP 429 responses are retried with exponential backoff, honoring
Retry-After. Outbound requests are rate limited with golang.org/x/time/rate.

BreakerClient wraps any Fetcher in a sony/gobreaker circuit breaker. While
the circuit is open lookups fail immediately and the caller shows a
placeholder.

Resolver caches three kinds of outcome:

  - poster found: the full image URL, kept for the positive TTL
  - no poster: TMDB answered but poster_path was null or empty, also kept
    for the positive TTL
  - failure: transport, status or decode errors, kept for the shorter
    negative TTL so a failing id is not retried on every page view

Concurrent lookups for one id share a single fetch. If the caller that
started it is cancelled, waiters with live contexts run the lookup again.

A missing API key is reported as ErrAPIKeyMissing on every call. It is never
cached and never reaches the network. There is no built-in fallback key.

Concurrent lookups for the same id are collapsed with singleflight, so each
id is fetched at most once per cache lifetime.
*/
package poster
