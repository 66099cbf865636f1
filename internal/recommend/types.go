// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import "time"

// Warning codes reported inline on a Response.
const (
	WarnLookupNotFound = "LOOKUP_NOT_FOUND"
	WarnMalformedRow   = "MALFORMED_ROW"
	WarnConfigMissing  = "CONFIG_MISSING"
	WarnFetchFailed    = "POSTER_FETCH_FAILED"
)

// NoResultsMessage is shown in place of the result grid.
const NoResultsMessage = "No recommendations available. Try another movie."

// Request asks for movies similar to Title.
type Request struct {
	// Title must match a catalog title exactly.
	Title string `json:"title"`

	// K is the number of recommendations; zero means Config.DefaultK.
	K int `json:"k,omitempty"`

	// SkipPosters leaves every item on the placeholder without lookups.
	SkipPosters bool `json:"skip_posters,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Item is one recommended movie with its poster.
type Item struct {
	Rank        int     `json:"rank"`
	MovieID     int     `json:"movie_id"`
	Title       string  `json:"title"`
	Score       float64 `json:"score"`
	PosterURL   string  `json:"poster_url"`
	PosterFound bool    `json:"poster_found"`
}

// Warning is a recoverable problem reported to the user.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// MovieID is set for per-item warnings.
	MovieID int `json:"movie_id,omitempty"`
}

// Response is the outcome of one recommendation request.
type Response struct {
	RequestID string           `json:"request_id"`
	Query     string           `json:"query"`
	Items     []Item           `json:"items"`
	Warnings  []Warning        `json:"warnings"`
	Metadata  ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing information.
type ResponseMetadata struct {
	K           int       `json:"k"`
	LatencyMS   int64     `json:"latency_ms"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Empty reports whether the response has no recommendations.
func (r *Response) Empty() bool {
	return len(r.Items) == 0
}

// Titles returns the recommended titles in rank order.
func (r *Response) Titles() []string {
	titles := make([]string, len(r.Items))
	for i, item := range r.Items {
		titles[i] = item.Title
	}
	return titles
}

// PosterURLs returns the poster URLs in rank order, aligned with Titles.
func (r *Response) PosterURLs() []string {
	urls := make([]string, len(r.Items))
	for i, item := range r.Items {
		urls[i] = item.PosterURL
	}
	return urls
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Requests       int64 `json:"requests"`
	NotFound       int64 `json:"not_found"`
	Malformed      int64 `json:"malformed"`
	PosterFailures int64 `json:"poster_failures"`
	ConfigMissing  int64 `json:"config_missing"`
}
