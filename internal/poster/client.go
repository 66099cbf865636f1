// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package poster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// DefaultAPIBaseURL is the TMDB REST API root.
const DefaultAPIBaseURL = "https://api.themoviedb.org"

// maxErrorBodySize limits how much of an error response is kept.
const maxErrorBodySize = 4 * 1024

// maxRetryDelay caps both exponential backoff and Retry-After.
const maxRetryDelay = 30 * time.Second

// MovieDetails is the subset of TMDB's movie details response Marquee uses.
type MovieDetails struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	PosterPath *string `json:"poster_path"`
}

// Fetcher retrieves movie details from the metadata service.
type Fetcher interface {
	// MovieDetails fetches details for one movie id.
	MovieDetails(ctx context.Context, movieID int) (*MovieDetails, error)

	// Configured reports whether credentials are present. When false every
	// call fails with ErrAPIKeyMissing without network access.
	Configured() bool
}

// ClientConfig configures the TMDB HTTP client.
type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration

	// RequestsPerSecond bounds outbound request rate; 0 disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// Client calls the TMDB movie details endpoint.
type Client struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a TMDB client. An empty API key yields a client whose
// calls always fail with ErrAPIKeyMissing.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAPIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		client:         &http.Client{Timeout: cfg.Timeout},
		limiter:        limiter,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// MovieDetails performs GET {base}/3/movie/{id}?api_key={key}.
func (c *Client) MovieDetails(ctx context.Context, movieID int) (*MovieDetails, error) {
	if !c.Configured() {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s/3/movie/%d?%s", c.baseURL, movieID, params.Encode())

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       readBodyForError(resp.Body),
		}
	}

	var details MovieDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("decode TMDB response: %w", err)
	}
	return &details, nil
}

// doRequestWithRateLimit performs a GET. With MaxRetries > 0 it retries HTTP
// 429 with exponential backoff (base, 2*base, 4*base...) or the server's
// Retry-After when given; the default of 0 makes a single attempt.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", redactURLError(err))
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			metrics.RecordTMDBRequest(0, time.Since(start))
			return nil, fmt.Errorf("TMDB request failed: %w", redactURLError(err))
		}
		metrics.RecordTMDBRequest(resp.StatusCode, time.Since(start))

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		delay := retryDelay(resp.Header.Get("Retry-After"), c.retryBaseDelay, attempt)
		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("%w after %d retries", ErrRateLimited, c.maxRetries)
		}

		metrics.TMDBRetries.Inc()
		logging.Debug().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("TMDB rate limited, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

// retryDelay honors a Retry-After header given in seconds or as an HTTP
// date, falling back to exponential backoff.
func retryDelay(retryAfter string, base time.Duration, attempt int) time.Duration {
	delay := base * time.Duration(1<<uint(attempt))

	if retryAfter != "" {
		if seconds, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && seconds >= 0 {
			delay = time.Duration(seconds) * time.Second
		} else if when, err := http.ParseTime(retryAfter); err == nil {
			delay = time.Until(when)
		}
	}

	if delay < 0 {
		delay = 0
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// redactURLError strips the API key from the URL net/http embeds in errors.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		redacted := *urlErr
		redacted.URL = logging.RedactURL(urlErr.URL)
		return &redacted
	}
	return err
}

func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	return strings.TrimSpace(string(body))
}
