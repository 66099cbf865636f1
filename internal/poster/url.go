// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package poster

import "strings"

// DefaultImageBaseURL is the TMDB image CDN prefix for w500 renditions.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"

// BuildURL joins the image prefix and a TMDB poster path with exactly one
// slash. It reports false for an empty path.
//
//	BuildURL(DefaultImageBaseURL, "/abc.jpg") // https://image.tmdb.org/t/p/w500/abc.jpg
func BuildURL(prefix, posterPath string) (string, bool) {
	posterPath = strings.TrimSpace(posterPath)
	if posterPath == "" || posterPath == "/" {
		return "", false
	}
	if prefix == "" {
		prefix = DefaultImageBaseURL
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(posterPath, "/"), true
}
