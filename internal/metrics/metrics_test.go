// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getHistogramCount extracts the sample count from a Prometheus histogram
func getHistogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordModelLoad(t *testing.T) {
	RecordModelLoad(4803, 1500*time.Millisecond)

	if got := testutil.ToFloat64(ModelMovies); got != 4803 {
		t.Errorf("ModelMovies = %v, want 4803", got)
	}
	if got := testutil.ToFloat64(ModelLoadDuration); got != 1.5 {
		t.Errorf("ModelLoadDuration = %v, want 1.5", got)
	}
}

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsTotal.WithLabelValues("not_found"))
	samples := getHistogramCount(t, RecommendationDuration)

	RecordRecommendation("not_found", 2*time.Millisecond)

	after := testutil.ToFloat64(RecommendationsTotal.WithLabelValues("not_found"))
	if after != before+1 {
		t.Errorf("not_found counter = %v, want %v", after, before+1)
	}
	if got := getHistogramCount(t, RecommendationDuration); got != samples+1 {
		t.Errorf("duration samples = %d, want %d", got, samples+1)
	}
}

func TestRecordPosterCache(t *testing.T) {
	tests := []struct {
		tier   string
		hit    bool
		result string
	}{
		{"memory", true, "hit"},
		{"memory", false, "miss"},
		{"store", true, "hit"},
		{"store", false, "miss"},
	}

	for _, tt := range tests {
		counter := PosterCacheRequests.WithLabelValues(tt.tier, tt.result)
		before := testutil.ToFloat64(counter)
		RecordPosterCache(tt.tier, tt.hit)
		if got := testutil.ToFloat64(counter); got != before+1 {
			t.Errorf("%s/%s = %v, want %v", tt.tier, tt.result, got, before+1)
		}
	}
}

func TestRecordTMDBRequest(t *testing.T) {
	tests := []struct {
		status int
		label  string
	}{
		{200, "200"},
		{404, "404"},
		{0, "error"},
	}

	for _, tt := range tests {
		counter := TMDBRequests.WithLabelValues(tt.label)
		before := testutil.ToFloat64(counter)
		RecordTMDBRequest(tt.status, 100*time.Millisecond)
		if got := testutil.ToFloat64(counter); got != before+1 {
			t.Errorf("status %d: counter = %v, want %v", tt.status, got, before+1)
		}
	}
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/api/v1/recommendations", "200", 15*time.Millisecond)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("api_requests_total = %v, want %v", got, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec = %v, want %v", got, before)
	}
}
