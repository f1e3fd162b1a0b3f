package cli

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
	"github.com/ewilliams-labs/soundmetrics/internal/core/services"
)

func (a *app) artistsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "artists",
		Aliases: []string{"artist"},
		Short:   "Search, analyze and compare artists",
	}
	cmd.AddCommand(
		a.artistSearchCmd(),
		a.artistAnalyzeCmd(),
		a.artistCompareCmd(),
		a.artistVersusCmd(),
		a.artistScenesCmd(),
		a.artistHistoryCmd(),
	)
	return cmd
}

func (a *app) artistSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Find the closest catalog match for an artist name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return a.run(cmd, true, func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error) {
				stub, err := svc.SearchArtist(ctx, name)
				if err != nil {
					return nil, nil, err
				}
				return stub, func(w io.Writer) error { return renderArtistStub(w, stub) }, nil
			})
		},
	}
}

func (a *app) artistAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <name>",
		Short: "Profile an artist from their top tracks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return a.run(cmd, true, func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error) {
				p, err := svc.AnalyzeArtist(ctx, name)
				if err != nil {
					return nil, nil, err
				}
				return p, func(w io.Writer) error { return renderArtist(w, p) }, nil
			})
		},
	}
}

func (a *app) artistCompareCmd() *cobra.Command {
	var preset string
	cmd := &cobra.Command{
		Use:   "compare <name> <name> [name...]",
		Short: "Compare several artists, or a named lineup with --preset",
		Example: `  soundmetrics artists compare "Aphex Twin" Burial Skream
  soundmetrics artists compare --preset breakbeat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error) {
				var (
					b   domain.ArtistBatch
					err error
				)
				if preset != "" {
					b, err = svc.ComparePreset(ctx, preset)
				} else {
					b, err = svc.CompareArtists(ctx, args)
				}
				if err != nil {
					return nil, nil, err
				}
				return b, func(w io.Writer) error { return renderArtistBatch(w, b) }, nil
			})
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "compare a configured lineup ("+services.PresetBreakbeat+")")
	return cmd
}

func (a *app) artistVersusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vs <name> <name>",
		Short: "Quick head to head on popularity, followers and top track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error) {
				r, err := svc.ArtistVersus(ctx, args[0], args[1])
				if err != nil {
					return nil, nil, err
				}
				return r, func(w io.Writer) error { return renderVersus(w, r) }, nil
			})
		},
	}
}

func (a *app) artistScenesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "Compare the underground and mainstream artist lineups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error) {
				r, err := svc.UndergroundVersusMainstream(ctx)
				if err != nil {
					return nil, nil, err
				}
				return r, func(w io.Writer) error { return renderScenes(w, r) }, nil
			})
		},
	}
}

type artistHistory struct {
	Artist    domain.ArtistIdentity   `json:"artist"`
	Snapshots []domain.ArtistSnapshot `json:"snapshots"`
}

func (a *app) artistHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <artist-id>",
		Short: "List recorded snapshots for an artist, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, false, func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error) {
				artist, snaps, err := svc.ArtistHistory(ctx, args[0], limit)
				if err != nil {
					return nil, nil, err
				}
				return artistHistory{Artist: artist, Snapshots: snaps}, func(w io.Writer) error {
					return renderArtistHistory(w, artist, snaps)
				}, nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum snapshots to list")
	return cmd
}
