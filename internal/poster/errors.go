// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package poster

import (
	"errors"
	"fmt"
)

// ErrAPIKeyMissing indicates no TMDB API key is configured. Lookups fail
// fast without touching the network and the result is never cached.
var ErrAPIKeyMissing = errors.New("TMDB API key not configured")

// ErrRateLimited indicates TMDB kept answering 429 after all retries.
var ErrRateLimited = errors.New("TMDB rate limit exceeded")

// StatusError is returned for a non-2xx TMDB response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("TMDB returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("TMDB returned HTTP %d: %s", e.StatusCode, e.Body)
}

// FetchError reports a failed poster lookup for one movie: transport
// failure, bad status, undecodable body or an open circuit.
type FetchError struct {
	MovieID int
	Err     error

	// Cached is true when the failure was served from the negative cache.
	Cached bool
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("poster lookup for movie %d failed: %v", e.MovieID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
