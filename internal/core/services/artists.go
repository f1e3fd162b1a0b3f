package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

// SearchArtist resolves a name to the catalog's best match.
func (o *Orchestrator) SearchArtist(ctx context.Context, name string) (domain.ArtistStub, error) {
	name, err := normalizeArtist(name)
	if err != nil {
		return domain.ArtistStub{}, err
	}
	stub, err := o.catalog.SearchArtist(ctx, name)
	if err != nil {
		return domain.ArtistStub{}, fmt.Errorf("service: failed to search artist %q: %w", name, err)
	}
	return stub, nil
}

// AnalyzeArtist builds a full profile for one artist and queues a snapshot.
func (o *Orchestrator) AnalyzeArtist(ctx context.Context, name string) (domain.ArtistProfile, error) {
	stub, err := o.SearchArtist(ctx, name)
	if err != nil {
		return domain.ArtistProfile{}, err
	}
	o.logger.Info("artist analysis started", "artist", stub.Name, "id", stub.ID)
	if err := o.pacer.Pause(ctx, o.settings.Pacing.BetweenArtistCalls); err != nil {
		return domain.ArtistProfile{}, err
	}

	tracks, err := o.catalog.TopTracks(ctx, stub.ID)
	if err != nil {
		return domain.ArtistProfile{}, fmt.Errorf("service: failed to fetch top tracks for %q: %w", stub.Name, err)
	}
	if len(tracks) > o.settings.Limits.MaxTopTracks {
		tracks = tracks[:o.settings.Limits.MaxTopTracks]
	}

	profile := domain.ArtistProfile{
		ID:                 stub.ID,
		Name:               stub.Name,
		Popularity:         stub.Popularity,
		Followers:          stub.Followers,
		FollowersFormatted: FormatCount(stub.Followers),
		Genres:             stub.Genres,
		ImageURL:           stub.ImageURL,
		TopTracks:          []domain.ArtistTrack{},
	}
	if profile.Genres == nil {
		profile.Genres = []string{}
	}

	if len(tracks) == 0 {
		profile.Note = "No top tracks available for this artist"
	} else {
		if err := o.pacer.Pause(ctx, o.settings.Pacing.BetweenArtistCalls); err != nil {
			return domain.ArtistProfile{}, err
		}
		ids := make([]string, len(tracks))
		for i, t := range tracks {
			ids[i] = t.ID
		}
		features, err := o.resolver.Measure(ctx, ids)
		if err != nil {
			if ctx.Err() != nil {
				return domain.ArtistProfile{}, ctx.Err()
			}
			o.logger.Warn("audio features unavailable", "artist", stub.Name, "error", err)
			features = nil
		}

		agg := AggregateArtist(tracks, features)
		profile.TracksAnalyzed = agg.TracksAnalyzed
		profile.AvgTrackPopularity = agg.AvgTrackPopularity
		profile.TopTrackPopularity = agg.TopTrackPopularity
		profile.AudioFeatures = agg.Features
		profile.ConsistencyScore = agg.Consistency
		if agg.Features == nil {
			profile.Note = "Audio features unavailable; consistency score not computed"
		}
		for _, t := range tracks[:min(len(tracks), o.settings.Limits.ArtistTopTracks)] {
			profile.TopTracks = append(profile.TopTracks, domain.ArtistTrack{Name: t.Name, Popularity: t.Popularity, Album: t.Album})
		}
	}

	if err := o.pacer.Pause(ctx, o.settings.Pacing.BetweenArtistCalls); err != nil {
		return domain.ArtistProfile{}, err
	}
	filter := domain.AlbumFilter{Type: o.settings.Limits.AlbumType, Limit: o.settings.Limits.AlbumLimit}
	if albums, err := o.catalog.AlbumCount(ctx, stub.ID, filter); err != nil {
		if ctx.Err() != nil {
			return domain.ArtistProfile{}, ctx.Err()
		}
		o.logger.Warn("album count unavailable", "artist", stub.Name, "error", err)
	} else {
		profile.TotalAlbums = &albums
	}

	profile.AnalyzedAt = o.now()
	o.recordArtist(profile)
	o.logger.Info("artist analysis complete", "artist", profile.Name, "tracks", profile.TracksAnalyzed, "features", profile.AudioFeatures != nil)
	return profile, nil
}

// CompareArtists analyzes artists sequentially and compares the successes.
func (o *Orchestrator) CompareArtists(ctx context.Context, names []string) (domain.ArtistBatch, error) {
	names = cleanList(names, false)
	if err := o.comparator.ValidateCount(len(names)); err != nil {
		return domain.ArtistBatch{}, err
	}

	batch := domain.ArtistBatch{
		ArtistsCompared: make([]string, 0, len(names)),
		DetailedData:    make(map[string]domain.ArtistProfile, len(names)),
	}
	var entities []domain.Entity
	for i, name := range names {
		if err := o.pauseBetween(ctx, i); err != nil {
			return domain.ArtistBatch{}, err
		}
		p, err := o.AnalyzeArtist(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return domain.ArtistBatch{}, ctx.Err()
			}
			msg := err.Error()
			if errors.Is(err, domain.ErrNotFound) {
				msg = "artist not found"
			} else {
				o.logger.Warn("artist analysis failed", "artist", name, "error", err)
			}
			batch.Errors = append(batch.Errors, domain.EntityError{Entity: name, Error: msg})
			continue
		}
		batch.ArtistsCompared = append(batch.ArtistsCompared, name)
		batch.DetailedData[name] = p
		entities = append(entities, domain.Entity{Name: name, Metrics: p})
	}
	batch.TotalArtists = len(batch.DetailedData)
	batch.AnalyzedAt = o.now()

	if len(entities) < o.settings.Limits.MinCompare {
		batch.Message = fmt.Sprintf("Need at least %d analyzed artists for comparison, got %d", o.settings.Limits.MinCompare, len(entities))
		return batch, nil
	}
	cmp, err := o.comparator.Compare(domain.KindArtist, entities)
	if err != nil {
		return domain.ArtistBatch{}, fmt.Errorf("service: failed to compare artists: %w", err)
	}
	batch.Comparison = &cmp
	return batch, nil
}

// Preset names accepted by ComparePreset.
const PresetBreakbeat = "breakbeat"

// ComparePreset compares a named artist lineup.
func (o *Orchestrator) ComparePreset(ctx context.Context, preset string) (domain.ArtistBatch, error) {
	switch preset {
	case PresetBreakbeat:
		return o.CompareArtists(ctx, o.settings.Lineups.BreakbeatArtists)
	}
	return domain.ArtistBatch{}, domain.InvalidInputError{Field: "preset", Reason: fmt.Sprintf("unknown preset %q", preset)}
}

// UndergroundVersusMainstream compares the underground and mainstream artist lineups.
func (o *Orchestrator) UndergroundVersusMainstream(ctx context.Context) (domain.ScenePairReport, error) {
	underground, err := o.CompareArtists(ctx, o.settings.Lineups.UndergroundArtists)
	if err != nil {
		return domain.ScenePairReport{}, err
	}
	if err := o.pacer.Pause(ctx, o.settings.Pacing.BetweenEntities); err != nil {
		return domain.ScenePairReport{}, err
	}
	mainstream, err := o.CompareArtists(ctx, o.settings.Lineups.MainstreamArtists)
	if err != nil {
		return domain.ScenePairReport{}, err
	}
	return domain.ScenePairReport{Underground: underground, Mainstream: mainstream, AnalyzedAt: o.now()}, nil
}

// ArtistVersus is a light head-to-head on identity metrics and top track.
func (o *Orchestrator) ArtistVersus(ctx context.Context, first, second string) (domain.VersusReport, error) {
	names := make([]string, 0, 2)
	for _, n := range []string{first, second} {
		n, err := normalizeArtist(n)
		if err != nil {
			return domain.VersusReport{}, err
		}
		names = append(names, n)
	}

	report := domain.VersusReport{
		Matchup:  names[0] + " vs " + names[1],
		Winners:  make(map[domain.MetricKey]domain.Winner, 2),
		Insights: []string{},
	}
	for i, name := range names {
		if err := o.pauseBetween(ctx, i); err != nil {
			return domain.VersusReport{}, err
		}
		stub, err := o.SearchArtist(ctx, name)
		if err != nil {
			return domain.VersusReport{}, err
		}
		entry := domain.VersusEntry{
			Name:               stub.Name,
			Popularity:         stub.Popularity,
			Followers:          stub.Followers,
			FollowersFormatted: FormatCount(stub.Followers),
			Genres:             stub.Genres[:min(3, len(stub.Genres))],
		}
		if err := o.pacer.Pause(ctx, o.settings.Pacing.BetweenArtistCalls); err != nil {
			return domain.VersusReport{}, err
		}
		if tracks, err := o.catalog.TopTracks(ctx, stub.ID); err != nil {
			o.logger.Warn("top tracks unavailable", "artist", stub.Name, "error", err)
		} else if len(tracks) > 0 {
			entry.TopTrack = tracks[0].Name
		}
		report.Contenders = append(report.Contenders, entry)
	}

	a, b := report.Contenders[0], report.Contenders[1]
	popWinner, popLoser := a, b
	if b.Popularity > a.Popularity {
		popWinner, popLoser = b, a
	}
	report.Winners[domain.MetricPopularity] = domain.Winner{Name: popWinner.Name, Value: float64(popWinner.Popularity)}
	report.Insights = append(report.Insights, fmt.Sprintf("🏆 %s is more popular (%d vs %d)", popWinner.Name, popWinner.Popularity, popLoser.Popularity))

	fWinner, fLoser := a, b
	if b.Followers > a.Followers {
		fWinner, fLoser = b, a
	}
	report.Winners[domain.MetricFollowers] = domain.Winner{Name: fWinner.Name, Value: float64(fWinner.Followers)}
	report.Insights = append(report.Insights, fmt.Sprintf("👥 %s has more followers (%s vs %s)", fWinner.Name, fWinner.FollowersFormatted, fLoser.FollowersFormatted))

	report.AnalyzedAt = o.now()
	return report, nil
}
