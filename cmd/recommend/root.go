// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/poster"
	"github.com/tomtom215/marquee/internal/recommend"
)

type options struct {
	catalogPath string
	matrixPath  string
	k           int
	posters     bool
	list        bool
	jsonOut     bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "recommend [title]",
		Short: "Print movies similar to a title",
		Long: `Loads the movie catalog and similarity matrix and prints the top-K most
similar movies for the given title. Paths and the TMDB key default to the
server configuration (config.yaml and environment).`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.catalogPath, "catalog", "", "catalog artifact (.csv, .json or .parquet)")
	flags.StringVar(&opts.matrixPath, "matrix", "", "similarity matrix artifact (.csv, .json or .parquet)")
	flags.IntVarP(&opts.k, "k", "k", 0, "number of recommendations (default from config)")
	flags.BoolVar(&opts.posters, "posters", false, "resolve poster URLs from TMDB (needs TMDB_API_KEY)")
	flags.BoolVar(&opts.list, "list", false, "print every catalog title and exit")
	flags.BoolVar(&opts.jsonOut, "json", false, "print the full response as JSON")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")

	return cmd
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger := cliLogger(stderr, opts.verbose)
	logging.SetLogger(logger)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.catalogPath != "" {
		cfg.Data.CatalogPath = opts.catalogPath
	}
	if opts.matrixPath != "" {
		cfg.Data.MatrixPath = opts.matrixPath
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	model, err := catalog.LoadModel(ctx, cfg.Data.CatalogPath, cfg.Data.MatrixPath)
	if err != nil {
		return err
	}

	if opts.list {
		for _, title := range model.Catalog().Titles() {
			fmt.Fprintln(stdout, title)
		}
		return nil
	}

	var resolver recommend.PosterResolver
	if opts.posters {
		client := poster.NewClient(cfg.TMDB.ClientConfig())
		resolver = poster.NewResolver(poster.NewBreakerClient(client, cfg.TMDB.BreakerConfig()), nil, cfg.ResolverConfig())
	}

	engine, err := recommend.NewEngine(model, resolver, cfg.Recommend.ToRecommend(), logger)
	if err != nil {
		return err
	}

	resp := engine.Recommend(ctx, recommend.Request{
		Title:       args[0],
		K:           opts.k,
		SkipPosters: !opts.posters,
	})

	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printResponse(stdout, stderr, resp, opts.posters)
	return nil
}

// printResponse writes a numbered table to out and warnings to errOut.
func printResponse(out, errOut io.Writer, resp *recommend.Response, posters bool) {
	for _, w := range resp.Warnings {
		fmt.Fprintf(errOut, "warning [%s]: %s\n", w.Code, w.Message)
	}
	if resp.Empty() {
		if len(resp.Warnings) == 0 {
			fmt.Fprintln(errOut, recommend.NoResultsMessage)
		}
		return
	}

	fmt.Fprintf(out, "Movies similar to %q:\n", resp.Query)
	for _, item := range resp.Items {
		fmt.Fprintf(out, "%3d. %-48s %8d  %.4f", item.Rank, item.Title, item.MovieID, item.Score)
		if posters {
			fmt.Fprintf(out, "  %s", item.PosterURL)
		}
		fmt.Fprintln(out)
	}
}

func cliLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()
}
