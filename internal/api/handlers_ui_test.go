// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/tomtom215/marquee/internal/recommend"
)

func getPage(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d", target, rec.Code)
	}
	return rec
}

func TestIndex_SelectAndNonce(t *testing.T) {
	t.Parallel()

	rec := getPage(t, newTestRouter(t, &fakeResolver{configured: true}), "/")
	body := rec.Body.String()

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := strings.Count(body, "<option"); got != 7 {
		t.Errorf("options = %d, want 7", got)
	}
	if strings.Contains(body, `class="grid"`) {
		t.Error("grid rendered without a selection")
	}

	csp := rec.Header().Get("Content-Security-Policy")
	start := strings.Index(csp, "'nonce-")
	if start < 0 {
		t.Fatalf("CSP without nonce: %q", csp)
	}
	nonce := csp[start+len("'nonce-"):]
	nonce = nonce[:strings.Index(nonce, "'")]
	if !strings.Contains(body, `<style nonce="`+nonce+`">`) {
		t.Error("style tag does not carry the CSP nonce")
	}
	if !strings.Contains(csp, "img-src 'self' https: data:") {
		t.Errorf("CSP img-src = %q", csp)
	}
}

func TestIndex_Results(t *testing.T) {
	t.Parallel()

	body := getPage(t, newTestRouter(t, &fakeResolver{configured: true}), "/?title=Avatar").Body.String()

	if got := strings.Count(body, `<div class="card">`); got != 5 {
		t.Errorf("cards = %d, want 5", got)
	}
	for _, want := range []string{"Titanic", "https://img.test/11.jpg", "True Lies"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if !strings.Contains(body, `<option value="Avatar" selected>`) {
		t.Error("submitted title is not selected")
	}
}

func TestIndex_NoResults(t *testing.T) {
	t.Parallel()

	body := getPage(t, newTestRouter(t, &fakeResolver{configured: true}), "/?title=Unknown+Film").Body.String()

	if strings.Contains(body, `<div class="card">`) {
		t.Error("cards rendered for unknown title")
	}
	if !strings.Contains(body, recommend.NoResultsMessage) {
		t.Error("no-results message missing")
	}
}

func TestIndex_PostersUnavailable(t *testing.T) {
	t.Parallel()

	body := getPage(t, newTestRouter(t, &fakeResolver{configured: false}), "/?title=Avatar").Body.String()

	if got := strings.Count(body, recommend.DefaultPlaceholderURL); got != 5 {
		t.Errorf("placeholder posters = %d, want 5", got)
	}
	if got := strings.Count(body, "TMDB_API_KEY is not set"); got != 1 {
		t.Errorf("config warning shown %d times, want 1", got)
	}
}

func TestWarningMessages(t *testing.T) {
	t.Parallel()

	got := warningMessages([]recommend.Warning{
		{Code: "A", Message: "one"},
		{Code: "B", Message: "two"},
		{Code: "A", Message: "one"},
	})
	if want := []string{"one", "two"}; !reflect.DeepEqual(got, want) {
		t.Errorf("warningMessages() = %v, want %v", got, want)
	}
}
