// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package poster

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marquee/internal/metrics"
)

func testBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

func TestBreakerClient_OpensAfterFailures(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher().withError(1, errors.New("connection refused"))
	b := NewBreakerClient(fetcher, testBreakerConfig("test-open"))

	for i := 0; i < 3; i++ {
		if _, err := b.MovieDetails(context.Background(), 1); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	if b.State() != "open" {
		t.Fatalf("State() = %q, want open", b.State())
	}

	before := fetcher.calls.Load()
	_, err := b.MovieDetails(context.Background(), 1)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
	if fetcher.calls.Load() != before {
		t.Error("open circuit should not call the wrapped fetcher")
	}

	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-open")); got != 2 {
		t.Errorf("circuit_breaker_state = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-open", "rejected")); got != 1 {
		t.Errorf("rejected requests = %v, want 1", got)
	}
}

func TestBreakerClient_NotFoundDoesNotTrip(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher().withError(1, &StatusError{StatusCode: http.StatusNotFound})
	b := NewBreakerClient(fetcher, testBreakerConfig("test-404"))

	for i := 0; i < 10; i++ {
		_, err := b.MovieDetails(context.Background(), 1)
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("call %d: error = %v, want *StatusError", i, err)
		}
	}

	if b.State() != "closed" {
		t.Errorf("State() = %q, want closed", b.State())
	}
}

func TestBreakerClient_MissingKeyDoesNotTrip(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.configured = false
	b := NewBreakerClient(fetcher, testBreakerConfig("test-nokey"))

	if b.Configured() {
		t.Error("Configured() = true, want false")
	}
	for i := 0; i < 10; i++ {
		if _, err := b.MovieDetails(context.Background(), 1); !errors.Is(err, ErrAPIKeyMissing) {
			t.Fatalf("error = %v, want ErrAPIKeyMissing", err)
		}
	}
	if b.State() != "closed" {
		t.Errorf("State() = %q, want closed", b.State())
	}
}

func TestBreakerClient_Success(t *testing.T) {
	t.Parallel()

	b := NewBreakerClient(newFakeFetcher().withPoster(5, "/five.jpg"), testBreakerConfig("test-ok"))

	details, err := b.MovieDetails(context.Background(), 5)
	if err != nil {
		t.Fatalf("MovieDetails() error = %v", err)
	}
	if details.PosterPath == nil || *details.PosterPath != "/five.jpg" {
		t.Errorf("PosterPath = %v", details.PosterPath)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-ok", "success")); got != 1 {
		t.Errorf("success requests = %v, want 1", got)
	}
}

func TestStateToString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state gobreaker.State
		str   string
		num   float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
	}
	for _, tt := range tests {
		if got := stateToString(tt.state); got != tt.str {
			t.Errorf("stateToString(%v) = %q, want %q", tt.state, got, tt.str)
		}
		if got := stateToFloat(tt.state); got != tt.num {
			t.Errorf("stateToFloat(%v) = %v, want %v", tt.state, got, tt.num)
		}
	}
}
