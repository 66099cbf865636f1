// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// GarbageCollector is satisfied by *poster.BadgerStore.
type GarbageCollector interface {
	RunGC(discardRatio float64) error
}

// StoreGCService runs value log garbage collection on the poster store at a
// fixed interval. Each tick keeps collecting until badger reports nothing
// left to rewrite.
type StoreGCService struct {
	store        GarbageCollector
	interval     time.Duration
	discardRatio float64
	name         string
}

// NewStoreGCService creates the GC service. interval defaults to 10m and
// discardRatio to 0.5.
func NewStoreGCService(store GarbageCollector, interval time.Duration, discardRatio float64) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = 0.5
	}
	return &StoreGCService{
		store:        store,
		interval:     interval,
		discardRatio: discardRatio,
		name:         "poster-store-gc",
	}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.collect(ctx)
		}
	}
}

// collect runs GC until badger has nothing left or ctx ends.
// It returns the number of files rewritten.
func (s *StoreGCService) collect(ctx context.Context) int {
	logger := logging.WithComponent(s.name)
	rewritten := 0
	for ctx.Err() == nil {
		err := s.store.RunGC(s.discardRatio)
		switch {
		case err == nil:
			rewritten++
			metrics.StoreGCRuns.WithLabelValues("rewritten").Inc()
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected):
			metrics.StoreGCRuns.WithLabelValues("nothing").Inc()
		default:
			metrics.StoreGCRuns.WithLabelValues("error").Inc()
			logger.Warn().Err(err).Msg("Poster store GC failed")
		}
		break
	}
	if rewritten > 0 {
		logger.Debug().Int("rewritten", rewritten).Msg("Poster store GC complete")
	}
	return rewritten
}

// String implements fmt.Stringer for logging.
func (s *StoreGCService) String() string {
	return s.name
}
