package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
	"github.com/ewilliams-labs/soundmetrics/internal/core/ports"
)

// Sample is the bounded track sample for one genre.
type Sample struct {
	Tracks        []domain.TrackSample
	PlaylistCount int
}

// Collector draws a deduplicated track sample from genre playlists.
type Collector struct {
	catalog ports.CatalogProvider
	pacer   ports.Pacer
	limits  Limits
	pacing  Pacing
	logger  *slog.Logger
}

// NewCollector constructs a Collector.
func NewCollector(catalog ports.CatalogProvider, pacer ports.Pacer, limits Limits, pacing Pacing, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{catalog: catalog, pacer: pacer, limits: limits, pacing: pacing, logger: logger}
}

// Collect searches playlists for genre and samples their tracks. A failed
// playlist search is an error; a failed playlist fetch only skips that playlist.
func (c *Collector) Collect(ctx context.Context, genre string) (Sample, error) {
	playlists, err := c.catalog.SearchPlaylists(ctx, genre, c.limits.MaxPlaylists)
	if err != nil {
		return Sample{}, fmt.Errorf("service: failed to search playlists for %q: %w", genre, err)
	}
	if err := c.pacer.Pause(ctx, c.pacing.AfterSearch); err != nil {
		return Sample{}, err
	}
	if len(playlists) > c.limits.MaxPlaylists {
		playlists = playlists[:c.limits.MaxPlaylists]
	}

	var sample Sample
	var raw []domain.TrackSample
	for _, pl := range playlists {
		if pl.TotalTracks <= c.limits.MinPlaylistTracks {
			continue
		}
		sample.PlaylistCount++

		tracks, err := c.catalog.PlaylistTracks(ctx, pl.ID, c.limits.MaxTracksPerPlaylist)
		if err != nil {
			if ctx.Err() != nil {
				return Sample{}, ctx.Err()
			}
			c.logger.Warn("playlist skipped", "genre", genre, "playlist", pl.ID, "error", err)
		} else {
			raw = append(raw, sampleTracks(tracks, c.limits.MaxTracksPerPlaylist)...)
		}

		if err := c.pacer.Pause(ctx, c.pacing.BetweenPlaylists); err != nil {
			return Sample{}, err
		}
	}

	sample.Tracks = dedupeTracks(raw, c.limits.MaxTotalTracks)
	c.logger.Debug("genre sample collected", "genre", genre, "playlists", sample.PlaylistCount, "tracks", len(sample.Tracks))
	return sample, nil
}

// sampleTracks keeps tracks with an id and non-zero popularity.
func sampleTracks(tracks []domain.TrackStub, limit int) []domain.TrackSample {
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	out := make([]domain.TrackSample, 0, len(tracks))
	for _, t := range tracks {
		if t.ID == "" || t.Popularity <= 0 {
			continue
		}
		out = append(out, domain.TrackSample{
			ID:         t.ID,
			Name:       t.Name,
			Popularity: t.Popularity,
			Artist:     t.PrimaryArtist(),
		})
	}
	return out
}

// dedupeTracks drops repeated ids, first occurrence wins, then truncates.
func dedupeTracks(tracks []domain.TrackSample, limit int) []domain.TrackSample {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]domain.TrackSample, 0, min(len(tracks), limit))
	for _, t := range tracks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
