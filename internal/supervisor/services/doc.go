// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package services adapts Marquee components to suture.Service.
//
// Each wrapper translates a component's lifecycle (blocking ListenAndServe,
// periodic maintenance, start/stop watchers) into Serve(ctx) error and
// implements fmt.Stringer so supervisor events name the service.
package services
