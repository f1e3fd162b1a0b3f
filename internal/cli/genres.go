package cli

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
	"github.com/ewilliams-labs/soundmetrics/internal/core/services"
)

func (a *app) genresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "genres",
		Aliases: []string{"genre"},
		Short:   "Analyze and compare genres",
	}
	cmd.AddCommand(
		a.genreAnalyzeCmd(),
		a.genreCompareCmd(),
		a.genreUndergroundCmd(),
		a.genreTrendingCmd(),
		a.genreHistoryCmd(),
	)
	return cmd
}

func (a *app) genreAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <genre> [genre...]",
		Short: "Sample playlists for one or more genres and report metrics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error) {
				if len(args) == 1 {
					m, err := svc.AnalyzeGenre(ctx, args[0])
					if err != nil {
						return nil, nil, err
					}
					return m, func(w io.Writer) error { return renderGenre(w, m) }, nil
				}
				b, err := svc.AnalyzeGenres(ctx, args)
				if err != nil {
					return nil, nil, err
				}
				return b, func(w io.Writer) error { return renderGenreBatch(w, b) }, nil
			})
		},
	}
}

func (a *app) genreCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare [genre...]",
		Short: "Compare genres; without arguments the default targets are used",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error) {
				var (
					b   domain.GenreBatch
					err error
				)
				if len(args) == 2 {
					b, err = svc.CompareGenres(ctx, args[0], args[1])
				} else {
					b, err = svc.AnalyzeGenres(ctx, args)
				}
				if err != nil {
					return nil, nil, err
				}
				return b, func(w io.Writer) error { return renderGenreBatch(w, b) }, nil
			})
		},
	}
}

func (a *app) genreUndergroundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "underground",
		Short: "Rank underground candidate genres and surface hidden gems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error) {
				r, err := svc.FindUnderground(ctx)
				if err != nil {
					return nil, nil, err
				}
				return r, func(w io.Writer) error { return renderUnderground(w, r) }, nil
			})
		},
	}
}

func (a *app) genreTrendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trending",
		Short: "Contrast mainstream and underground genre groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error) {
				r, err := svc.Trending(ctx)
				if err != nil {
					return nil, nil, err
				}
				return r, func(w io.Writer) error { return renderTrending(w, r) }, nil
			})
		},
	}
}

func (a *app) genreHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <genre>",
		Short: "List recorded snapshots for a genre, newest first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			genre := strings.Join(args, " ")
			return a.run(cmd, false, func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error) {
				snaps, err := svc.GenreHistory(ctx, genre, limit)
				if err != nil {
					return nil, nil, err
				}
				return snaps, func(w io.Writer) error { return renderGenreHistory(w, snaps) }, nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum snapshots to list")
	return cmd
}
