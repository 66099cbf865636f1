// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package poster

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Result is the outcome of resolving one movie's poster.
type Result struct {
	MovieID int    `json:"movie_id"`
	URL     string `json:"url,omitempty"`
	Found   bool   `json:"found"`
	Cached  bool   `json:"cached"`

	// Err is ErrAPIKeyMissing or a *FetchError. A movie that simply has no
	// poster is Found == false with a nil Err.
	Err error `json:"-"`

	// abandoned marks a failure caused by the fetching caller's own context.
	abandoned bool
}

// URLOr returns the poster URL, or placeholder when none was found.
func (r Result) URLOr(placeholder string) string {
	if r.Found {
		return r.URL
	}
	return placeholder
}

// ResolverConfig configures poster caching.
type ResolverConfig struct {
	ImageBaseURL string
	CacheSize    int
	TTL          time.Duration

	// NegativeTTL is how long failed lookups are remembered.
	NegativeTTL time.Duration
}

// DefaultResolverConfig returns the default cache settings.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		ImageBaseURL: DefaultImageBaseURL,
		CacheSize:    10000,
		TTL:          24 * time.Hour,
		NegativeTTL:  time.Minute,
	}
}

// Resolver maps movie ids to poster URLs through a memory cache, an optional
// persistent store and the metadata service. Concurrent lookups of the same
// id share a single fetch.
type Resolver struct {
	fetcher Fetcher
	store   Store
	cfg     ResolverConfig
	memory  *cache.LRU[int, Entry]
	group   singleflight.Group
	logger  zerolog.Logger
}

// NewResolver creates a resolver. store may be nil.
func NewResolver(fetcher Fetcher, store Store, cfg ResolverConfig) *Resolver {
	def := DefaultResolverConfig()
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = def.ImageBaseURL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.NegativeTTL <= 0 {
		cfg.NegativeTTL = def.NegativeTTL
	}

	return &Resolver{
		fetcher: fetcher,
		store:   store,
		cfg:     cfg,
		memory:  cache.NewLRU[int, Entry](cfg.CacheSize, cfg.TTL),
		logger:  logging.WithComponent("poster"),
	}
}

// Configured reports whether lookups can reach the metadata service.
func (r *Resolver) Configured() bool {
	return r.fetcher != nil && r.fetcher.Configured()
}

// CacheStats returns the in-memory cache counters.
func (r *Resolver) CacheStats() cache.Stats {
	return r.memory.Stats()
}

// Resolve returns the poster for movieID. It never panics and never returns
// an error separately: failures are carried in Result.Err.
func (r *Resolver) Resolve(ctx context.Context, movieID int) Result {
	if !r.Configured() {
		metrics.PosterLookups.WithLabelValues("config_missing").Inc()
		return Result{MovieID: movieID, Err: ErrAPIKeyMissing}
	}

	if entry, ok := r.memory.Get(movieID); ok {
		metrics.RecordPosterCache("memory", true)
		return r.resultFrom(movieID, entry, true)
	}
	metrics.RecordPosterCache("memory", false)

	key := strconv.Itoa(movieID)
	for {
		v, _, _ := r.group.Do(key, func() (interface{}, error) {
			return r.populate(ctx, movieID), nil
		})
		res, _ := v.(Result)

		// A shared lookup abandoned by another caller is retried under
		// this caller's context.
		if res.abandoned && ctx.Err() == nil {
			continue
		}
		res.abandoned = false
		return res
	}
}

// populate fills the memory tier from the store or the metadata service.
// Only one populate per id runs at a time.
func (r *Resolver) populate(ctx context.Context, movieID int) Result {
	// A concurrent caller may have finished while we queued.
	if entry, ok := r.memory.Get(movieID); ok {
		return r.resultFrom(movieID, entry, true)
	}

	if r.store != nil {
		entry, ok, err := r.store.Get(ctx, movieID)
		if err != nil {
			r.logger.Warn().Err(err).Int("movie_id", movieID).Msg("Poster store read failed")
		}
		metrics.RecordPosterCache("store", ok)
		if ok {
			r.remember(movieID, entry)
			return r.resultFrom(movieID, entry, true)
		}
	}

	details, err := r.fetcher.MovieDetails(ctx, movieID)
	if err != nil {
		if errors.Is(err, ErrAPIKeyMissing) {
			metrics.PosterLookups.WithLabelValues("config_missing").Inc()
			return Result{MovieID: movieID, Err: ErrAPIKeyMissing}
		}

		metrics.PosterLookups.WithLabelValues("fetch_error").Inc()
		r.logger.Warn().Err(err).Int("movie_id", movieID).Msg("Poster lookup failed")

		// The caller gave up; that says nothing about the movie.
		if ctx.Err() != nil {
			return Result{MovieID: movieID, Err: &FetchError{MovieID: movieID, Err: err}, abandoned: true}
		}
		r.persist(ctx, movieID, Entry{Failure: err.Error()})
		return Result{MovieID: movieID, Err: &FetchError{MovieID: movieID, Err: err}}
	}

	var entry Entry
	if details.PosterPath != nil {
		entry.URL, entry.Found = BuildURL(r.cfg.ImageBaseURL, *details.PosterPath)
	}
	r.persist(ctx, movieID, entry)

	return r.resultFrom(movieID, entry, false)
}

func (r *Resolver) ttlFor(entry Entry) time.Duration {
	if entry.Failure != "" {
		return r.cfg.NegativeTTL
	}
	return r.cfg.TTL
}

// remember stores entry in the memory tier only.
func (r *Resolver) remember(movieID int, entry Entry) {
	r.memory.AddWithTTL(movieID, entry, r.ttlFor(entry))
	metrics.PosterCacheSize.Set(float64(r.memory.Len()))
}

// persist stores entry in both tiers.
func (r *Resolver) persist(ctx context.Context, movieID int, entry Entry) {
	r.remember(movieID, entry)
	if r.store == nil {
		return
	}
	if err := r.store.Put(ctx, movieID, entry, r.ttlFor(entry)); err != nil {
		r.logger.Warn().Err(err).Int("movie_id", movieID).Msg("Poster store write failed")
	}
}

func (r *Resolver) resultFrom(movieID int, entry Entry, cached bool) Result {
	res := Result{MovieID: movieID, URL: entry.URL, Found: entry.Found, Cached: cached}
	switch {
	case entry.Failure != "":
		metrics.PosterLookups.WithLabelValues("fetch_error").Inc()
		res.Err = &FetchError{MovieID: movieID, Err: errors.New(entry.Failure), Cached: cached}
	case entry.Found:
		metrics.PosterLookups.WithLabelValues("found").Inc()
	default:
		metrics.PosterLookups.WithLabelValues("absent").Inc()
	}
	return res
}
