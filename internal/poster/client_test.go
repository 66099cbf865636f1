// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package poster

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const testAPIKey = "test-api-key-0123456789"

func newTestClient(baseURL, apiKey string) *Client {
	return NewClient(ClientConfig{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		Timeout:        2 * time.Second,
		MaxRetries:     2,
		RetryBaseDelay: time.Millisecond,
	})
}

func TestClient_MovieDetails_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/movie/19995" || r.URL.Query().Get("api_key") != testAPIKey {
			http.Error(w, "unexpected request "+r.URL.Path, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":19995,"title":"Avatar","poster_path":"/kyeqWdyUXW608qlYkRqosgbbJyK.jpg","budget":237000000}`))
	}))
	defer server.Close()

	details, err := newTestClient(server.URL, testAPIKey).MovieDetails(context.Background(), 19995)
	if err != nil {
		t.Fatalf("MovieDetails() error = %v", err)
	}

	if details.ID != 19995 || details.Title != "Avatar" {
		t.Errorf("details = %+v", details)
	}
	if details.PosterPath == nil || *details.PosterPath != "/kyeqWdyUXW608qlYkRqosgbbJyK.jpg" {
		t.Errorf("PosterPath = %v", details.PosterPath)
	}
}

func TestClient_MovieDetails_NullPosterPath(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"title":"Obscure","poster_path":null}`))
	}))
	defer server.Close()

	details, err := newTestClient(server.URL, testAPIKey).MovieDetails(context.Background(), 1)
	if err != nil {
		t.Fatalf("MovieDetails() error = %v", err)
	}
	if details.PosterPath != nil {
		t.Errorf("PosterPath = %q, want nil", *details.PosterPath)
	}
}

func TestClient_MovieDetails_MissingKey(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := newTestClient(server.URL, "")
	if c.Configured() {
		t.Error("Configured() = true for empty key")
	}
	if _, err := c.MovieDetails(context.Background(), 1); !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("error = %v, want ErrAPIKeyMissing", err)
	}
	if calls.Load() != 0 {
		t.Errorf("server called %d times, want 0", calls.Load())
	}
}

func TestClient_MovieDetails_StatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, testAPIKey).MovieDetails(context.Background(), 1)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
	if !strings.Contains(statusErr.Body, "could not be found") {
		t.Errorf("Body = %q", statusErr.Body)
	}
}

func TestClient_MovieDetails_InvalidJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL, testAPIKey).MovieDetails(context.Background(), 1); err == nil {
		t.Error("expected decode error")
	}
}

func TestClient_RetriesOn429(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"id":7,"poster_path":"/p.jpg"}`))
	}))
	defer server.Close()

	details, err := newTestClient(server.URL, testAPIKey).MovieDetails(context.Background(), 7)
	if err != nil {
		t.Fatalf("MovieDetails() error = %v", err)
	}
	if details.ID != 7 {
		t.Errorf("ID = %d, want 7", details.ID)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, testAPIKey).MovieDetails(context.Background(), 1)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3 (1 + 2 retries)", calls.Load())
	}
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "10")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestClient(server.URL, testAPIKey).MovieDetails(ctx, 1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("backoff ignored context cancellation")
	}
}

func TestClient_TransportErrorRedactsKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	_, err := newTestClient(baseURL, testAPIKey).MovieDetails(context.Background(), 1)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), testAPIKey) {
		t.Errorf("API key leaked in error: %v", err)
	}
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	base := 100 * time.Millisecond
	tests := []struct {
		name       string
		retryAfter string
		attempt    int
		want       time.Duration
	}{
		{"exponential first", "", 0, 100 * time.Millisecond},
		{"exponential third", "", 2, 400 * time.Millisecond},
		{"retry-after seconds", "3", 0, 3 * time.Second},
		{"retry-after zero", "0", 4, 0},
		{"capped", "3600", 0, maxRetryDelay},
		{"garbage falls back", "soon", 1, 200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := retryDelay(tt.retryAfter, base, tt.attempt); got != tt.want {
				t.Errorf("retryDelay(%q, %d) = %v, want %v", tt.retryAfter, tt.attempt, got, tt.want)
			}
		})
	}
}

func TestClient_RateLimiter(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	c := NewClient(ClientConfig{
		BaseURL:           server.URL,
		APIKey:            testAPIKey,
		RequestsPerSecond: 20,
		Burst:             1,
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.MovieDetails(context.Background(), 1); err != nil {
			t.Fatalf("MovieDetails() error = %v", err)
		}
	}
	// Burst 1 at 20/s: the 2nd and 3rd requests wait ~50ms each.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 requests took %v, expected limiter to space them", elapsed)
	}
}
