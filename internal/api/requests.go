// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/marquee/internal/validation"
)

// RecommendationsRequest is the query string of GET /api/v1/recommendations.
type RecommendationsRequest struct {
	Title   string `query:"title" validate:"notblank"`
	K       int    `query:"k" validate:"omitempty,min=1,max=500"`
	Posters bool   `query:"posters"`
}

// MoviesRequest is the query string of GET /api/v1/movies.
type MoviesRequest struct {
	Query string `query:"q" validate:"max=200"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=10000"`
}

// SimilarRequest is the query string of GET /api/v1/movies/{movieID}/similar.
type SimilarRequest struct {
	MovieID int  `query:"movieID" validate:"min=0"`
	K       int  `query:"k" validate:"omitempty,min=1,max=500"`
	Posters bool `query:"posters"`
}

// parseRecommendationsRequest reads the query. Posters default to on.
func parseRecommendationsRequest(q url.Values) (RecommendationsRequest, error) {
	req := RecommendationsRequest{
		Title:   q.Get("title"),
		Posters: true,
	}
	var err error
	if req.K, err = intParam(q, "k"); err != nil {
		return req, err
	}
	if req.Posters, err = boolParam(q, "posters", true); err != nil {
		return req, err
	}
	return req, nil
}

func parseMoviesRequest(q url.Values) (MoviesRequest, error) {
	req := MoviesRequest{Query: strings.TrimSpace(q.Get("q"))}
	var err error
	req.Limit, err = intParam(q, "limit")
	return req, err
}

func parseSimilarRequest(movieID string, q url.Values) (SimilarRequest, error) {
	id, err := strconv.Atoi(movieID)
	if err != nil {
		return SimilarRequest{}, fmt.Errorf("movieID must be an integer")
	}
	req := SimilarRequest{MovieID: id}
	if req.K, err = intParam(q, "k"); err != nil {
		return req, err
	}
	req.Posters, err = boolParam(q, "posters", true)
	return req, err
}

func intParam(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func boolParam(q url.Values, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("%s must be true or false", name)
	}
	return v, nil
}

// bindAndValidate writes a 400 and returns false when parsing or validation fails.
func bindAndValidate[T any](w http.ResponseWriter, r *http.Request, parse func() (T, error)) (T, bool) {
	req, err := parse()
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return req, false
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
		return req, false
	}
	return req, true
}
