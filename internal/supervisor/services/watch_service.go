// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"fmt"
)

// StartFunc starts a background watcher and returns its stop function.
// config.WatchConfigFile has this shape once its arguments are bound.
type StartFunc func() (stop func() error, err error)

// WatchService adapts a start/stop watcher to suture.Service.
type WatchService struct {
	start StartFunc
	name  string
}

// NewWatchService creates a watcher service with the given name.
func NewWatchService(name string, start StartFunc) *WatchService {
	return &WatchService{start: start, name: name}
}

// Serve implements suture.Service. A start failure is returned so the
// supervisor retries with backoff.
func (s *WatchService) Serve(ctx context.Context) error {
	stop, err := s.start()
	if err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()

	if err := stop(); err != nil {
		return fmt.Errorf("%s stop failed: %w", s.name, err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *WatchService) String() string {
	return s.name
}
