// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/poster"
)

// PosterResolver resolves a movie id to a poster. *poster.Resolver
// implements it.
type PosterResolver interface {
	Resolve(ctx context.Context, movieID int) poster.Result
	Configured() bool
}

// Engine produces recommendations with posters. It is safe for concurrent use.
type Engine struct {
	model    *catalog.Model
	resolver PosterResolver
	config   *Config
	logger   zerolog.Logger

	requests       atomic.Int64
	notFound       atomic.Int64
	malformed      atomic.Int64
	posterFailures atomic.Int64
	configMissing  atomic.Int64
}

// NewEngine creates a recommendation engine. resolver may be nil, in which
// case every poster is the placeholder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(model *catalog.Model, resolver PosterResolver, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		model:    model,
		resolver: resolver,
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend returns up to K movies similar to req.Title. It never returns
// nil; lookup and poster problems are reported as warnings.
func (e *Engine) Recommend(ctx context.Context, req Request) *Response {
	return e.serve(ctx, req, func(k int) (*catalog.Result, error) {
		return e.model.Recommend(req.Title, k)
	})
}

// Similar returns neighbors of the movie with the given id. Ranking is by
// catalog index, so duplicate titles resolve to the requested movie.
// req.Title is replaced by the catalog title.
func (e *Engine) Similar(ctx context.Context, movieID int, req Request) *Response {
	cat := e.model.Catalog()
	idx, ok := cat.IndexOfID(movieID)

	req.Title = fmt.Sprintf("movie %d", movieID)
	if movie, found := cat.At(idx); ok && found {
		req.Title = movie.Title
	}

	return e.serve(ctx, req, func(k int) (*catalog.Result, error) {
		if !ok {
			return &catalog.Result{QueryIndex: -1, Items: []catalog.Recommendation{}},
				fmt.Errorf("%w: id %d", catalog.ErrNotFound, movieID)
		}
		return e.model.Neighbors(idx, k)
	})
}

// serve runs one lookup and attaches posters to its results.
func (e *Engine) serve(ctx context.Context, req Request, lookup func(k int) (*catalog.Result, error)) *Response {
	start := time.Now()
	e.requests.Add(1)

	if req.RequestID == "" {
		req.RequestID = logging.RequestIDFromContext(ctx)
	}
	if req.RequestID == "" {
		req.RequestID = logging.GenerateRequestID()
	}
	k := e.config.clampK(req.K)

	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("title", req.Title).
		Int("k", k).
		Logger()

	resp := &Response{
		RequestID: req.RequestID,
		Query:     req.Title,
		Items:     []Item{},
		Warnings:  []Warning{},
	}

	result, err := lookup(k)
	outcome := e.lookupOutcome(err)
	if err != nil {
		resp.Warnings = append(resp.Warnings, lookupWarning(req.Title, err))
		logger.Warn().Err(err).Msg("Recommendation lookup failed")
	} else {
		resp.Items = e.attachPosters(ctx, req, result, resp, logger)
	}

	elapsed := time.Since(start)
	resp.Metadata = ResponseMetadata{
		K:           k,
		LatencyMS:   elapsed.Milliseconds(),
		GeneratedAt: time.Now().UTC(),
	}
	metrics.RecordRecommendation(outcome, elapsed)

	logger.Debug().
		Int("items", len(resp.Items)).
		Int("warnings", len(resp.Warnings)).
		Dur("latency", elapsed).
		Msg("Recommendation served")

	return resp
}

// attachPosters resolves posters sequentially. A failure only affects its own item.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) attachPosters(ctx context.Context, req Request, result *catalog.Result, resp *Response, logger zerolog.Logger) []Item {
	items := make([]Item, 0, len(result.Items))
	for _, rec := range result.Items {
		item := Item{
			Rank:      rec.Rank,
			MovieID:   rec.MovieID,
			Title:     rec.Title,
			Score:     rec.Score,
			PosterURL: e.config.PlaceholderURL,
		}

		if !req.SkipPosters {
			if w, ok := e.resolvePoster(ctx, &item, logger); !ok {
				resp.Warnings = append(resp.Warnings, w)
			}
		}
		items = append(items, item)
	}
	return items
}

// resolvePoster fills item's poster fields. It returns a warning and false
// when the lookup failed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) resolvePoster(ctx context.Context, item *Item, logger zerolog.Logger) (Warning, bool) {
	if e.resolver == nil {
		e.configMissing.Add(1)
		return configMissingWarning(item.MovieID), false
	}

	res := e.resolver.Resolve(ctx, item.MovieID)
	item.PosterURL = res.URLOr(e.config.PlaceholderURL)
	item.PosterFound = res.Found

	switch {
	case res.Err == nil:
		return Warning{}, true
	case errors.Is(res.Err, poster.ErrAPIKeyMissing):
		e.configMissing.Add(1)
		return configMissingWarning(item.MovieID), false
	default:
		e.posterFailures.Add(1)
		logger.Debug().Err(res.Err).Int("movie_id", item.MovieID).Msg("Poster lookup failed")
		return Warning{
			Code:    WarnFetchFailed,
			Message: fmt.Sprintf("Could not load the poster for %q; showing a placeholder.", item.Title),
			MovieID: item.MovieID,
		}, false
	}
}

func configMissingWarning(movieID int) Warning {
	return Warning{
		Code:    WarnConfigMissing,
		Message: "TMDB_API_KEY is not set; posters are disabled.",
		MovieID: movieID,
	}
}

// lookupOutcome counts a lookup result and returns its metrics label.
func (e *Engine) lookupOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, catalog.ErrNotFound):
		e.notFound.Add(1)
		return "not_found"
	default:
		e.malformed.Add(1)
		return "malformed"
	}
}

func lookupWarning(title string, err error) Warning {
	if errors.Is(err, catalog.ErrNotFound) {
		return Warning{
			Code:    WarnLookupNotFound,
			Message: fmt.Sprintf("%q is not in the catalog. %s", title, NoResultsMessage),
		}
	}
	return Warning{
		Code:    WarnMalformedRow,
		Message: fmt.Sprintf("Similarity data for %q is unusable. %s", title, NoResultsMessage),
	}
}

// Movie returns the catalog entry with the given id.
func (e *Engine) Movie(movieID int) (catalog.Movie, bool) {
	cat := e.model.Catalog()
	idx, ok := cat.IndexOfID(movieID)
	if !ok {
		return catalog.Movie{}, false
	}
	return cat.At(idx)
}

// Poster resolves the poster for one catalog movie. ok is false when the id
// is not in the catalog. A non-nil warning means the placeholder was used
// because of a failure.
func (e *Engine) Poster(ctx context.Context, movieID int) (item Item, warning *Warning, ok bool) {
	movie, ok := e.Movie(movieID)
	if !ok {
		return Item{}, nil, false
	}

	item = Item{
		MovieID:   movie.ID,
		Title:     movie.Title,
		PosterURL: e.config.PlaceholderURL,
	}
	if w, resolved := e.resolvePoster(ctx, &item, e.logger); !resolved {
		warning = &w
	}
	return item, warning, true
}

// Titles returns every catalog title in catalog order.
func (e *Engine) Titles() []string {
	return e.model.Catalog().Titles()
}

// Movies returns catalog entries matching query (all when empty), up to limit.
func (e *Engine) Movies(query string, limit int) []catalog.Movie {
	return e.model.Catalog().Search(query, limit)
}

// CatalogSize returns the number of movies in the model.
func (e *Engine) CatalogSize() int {
	return e.model.Size()
}

// PostersConfigured reports whether posters can be fetched at all.
func (e *Engine) PostersConfigured() bool {
	return e.resolver != nil && e.resolver.Configured()
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return *e.config
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:       e.requests.Load(),
		NotFound:       e.notFound.Load(),
		Malformed:      e.malformed.Load(),
		PosterFailures: e.posterFailures.Load(),
		ConfigMissing:  e.configMissing.Load(),
	}
}
