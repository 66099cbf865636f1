// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package poster

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// fakeFetcher is an in-memory Fetcher with per-id responses.
type fakeFetcher struct {
	mu         sync.Mutex
	configured bool
	paths      map[int]*string
	errs       map[int]error
	delay      time.Duration
	calls      atomic.Int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		configured: true,
		paths:      make(map[int]*string),
		errs:       make(map[int]error),
	}
}

func (f *fakeFetcher) withPoster(id int, path string) *fakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[id] = &path
	return f
}

func (f *fakeFetcher) withoutPoster(id int) *fakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[id] = nil
	return f
}

func (f *fakeFetcher) withError(id int, err error) *fakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[id] = err
	return f
}

func (f *fakeFetcher) Configured() bool {
	return f.configured
}

func (f *fakeFetcher) MovieDetails(ctx context.Context, movieID int) (*MovieDetails, error) {
	f.calls.Add(1)
	if !f.configured {
		return nil, ErrAPIKeyMissing
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[movieID]; ok {
		return nil, err
	}
	return &MovieDetails{ID: movieID, PosterPath: f.paths[movieID]}, nil
}
