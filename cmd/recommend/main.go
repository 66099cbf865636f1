// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Command recommend prints the movies most similar to a title without
// starting the web server.
//
//	recommend "The Dark Knight"
//	recommend --matrix data/similarity.parquet -k 10 --posters "Avatar"
//	recommend --list
//
// The exit status is non-zero only when the catalog or similarity data
// cannot be loaded. An unknown title prints a warning and exits 0.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
