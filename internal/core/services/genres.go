package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

const genreRetryNote = "Try a different genre or analyze fewer genres at once"

// AnalyzeGenre samples, resolves and aggregates one genre and queues a snapshot.
func (o *Orchestrator) AnalyzeGenre(ctx context.Context, genre string) (domain.GenreMetrics, error) {
	genre, err := normalizeGenre(genre)
	if err != nil {
		return domain.GenreMetrics{}, err
	}
	o.logger.Info("genre analysis started", "genre", genre)

	sample, err := o.collector.Collect(ctx, genre)
	if err != nil {
		return domain.GenreMetrics{}, err
	}
	if len(sample.Tracks) == 0 {
		return domain.GenreMetrics{}, fmt.Errorf("service: no tracks found for genre %q: %w", genre, domain.ErrInsufficientData)
	}

	avgPopularity := mean(pluck(sample.Tracks, func(t domain.TrackSample) float64 { return float64(t.Popularity) }))
	ids := make([]string, len(sample.Tracks))
	for i, t := range sample.Tracks {
		ids[i] = t.ID
	}
	res, err := o.resolver.Resolve(ctx, ids, genre, avgPopularity, sample.PlaylistCount)
	if err != nil {
		return domain.GenreMetrics{}, err
	}

	m := AggregateGenre(genre, sample, res, o.settings.Limits.GenreTopTracks)
	m.AnalyzedAt = o.now()
	o.recordGenre(m, sample)
	o.logger.Info("genre analysis complete", "genre", genre, "tracks", m.TracksAnalyzed, "estimated", m.Estimated)
	return m, nil
}

// AnalyzeGenres analyzes genres sequentially and compares the successes.
// An empty list uses the default target genres.
func (o *Orchestrator) AnalyzeGenres(ctx context.Context, genres []string) (domain.GenreBatch, error) {
	genres = cleanList(genres, true)
	if len(genres) == 0 {
		targets := o.settings.Lineups.TargetGenres
		genres = targets[:min(o.settings.Lineups.DefaultGenreCount, len(targets))]
	}
	if err := o.comparator.ValidateCount(len(genres)); err != nil {
		return domain.GenreBatch{}, err
	}

	batch, err := o.analyzeAll(ctx, genres)
	if err != nil {
		return domain.GenreBatch{}, err
	}

	succeeded := batch.Succeeded()
	if len(succeeded) < o.settings.Limits.MinCompare {
		batch.Message = fmt.Sprintf("Need at least %d analyzed genres for comparison, got %d", o.settings.Limits.MinCompare, len(succeeded))
		return batch, nil
	}
	entities := make([]domain.Entity, len(succeeded))
	for i, m := range succeeded {
		entities[i] = domain.Entity{Name: m.Genre, Metrics: m}
	}
	cmp, err := o.comparator.Compare(domain.KindGenre, entities)
	if err != nil {
		return domain.GenreBatch{}, fmt.Errorf("service: failed to compare genres: %w", err)
	}
	batch.Comparison = &cmp
	return batch, nil
}

// CompareGenres compares exactly two genres.
func (o *Orchestrator) CompareGenres(ctx context.Context, first, second string) (domain.GenreBatch, error) {
	a, err := normalizeGenre(first)
	if err != nil {
		return domain.GenreBatch{}, err
	}
	b, err := normalizeGenre(second)
	if err != nil {
		return domain.GenreBatch{}, err
	}
	return o.AnalyzeGenres(ctx, []string{a, b})
}

// FindUnderground classifies the underground candidate genres.
func (o *Orchestrator) FindUnderground(ctx context.Context) (domain.UndergroundReport, error) {
	batch, err := o.analyzeAll(ctx, o.settings.Lineups.UndergroundCandidates)
	if err != nil {
		return domain.UndergroundReport{}, err
	}
	succeeded := batch.Succeeded()
	entities := make([]domain.Entity, len(succeeded))
	for i, m := range succeeded {
		entities[i] = domain.Entity{Name: m.Genre, Metrics: m}
	}
	gems := o.comparator.UndergroundGems(entities)
	if gems == nil {
		gems = []domain.UndergroundGem{}
	}
	return domain.UndergroundReport{
		UndergroundGems: gems,
		TotalAnalyzed:   len(succeeded),
		Errors:          batch.Errors,
		Summary:         fmt.Sprintf("Found %d underground gems among %d analyzed genres", len(gems), len(succeeded)),
		AnalyzedAt:      o.now(),
	}, nil
}

// Trending contrasts the mainstream and underground genre groups.
func (o *Orchestrator) Trending(ctx context.Context) (domain.TrendingReport, error) {
	lineups := o.settings.Lineups
	mainstream, err := o.analyzeAll(ctx, lineups.MainstreamGenres)
	if err != nil {
		return domain.TrendingReport{}, err
	}
	if err := o.pacer.Pause(ctx, o.settings.Pacing.BetweenEntities); err != nil {
		return domain.TrendingReport{}, err
	}
	underground, err := o.analyzeAll(ctx, lineups.UndergroundGenres)
	if err != nil {
		return domain.TrendingReport{}, err
	}

	report := domain.TrendingReport{
		Mainstream:  summarizeGroup(lineups.MainstreamGenres, mainstream.Succeeded()),
		Underground: summarizeGroup(lineups.UndergroundGenres, underground.Succeeded()),
		Genres:      make(map[string]domain.GenreMetrics, len(mainstream.Genres)+len(underground.Genres)),
		Errors:      append(mainstream.Errors, underground.Errors...),
		AnalyzedAt:  o.now(),
	}
	for k, v := range mainstream.Genres {
		report.Genres[k] = v
	}
	for k, v := range underground.Genres {
		report.Genres[k] = v
	}

	if report.Mainstream.Analyzed > 0 && report.Underground.Analyzed > 0 {
		cmp := &domain.EnergyComparison{
			MainstreamAvgEnergy:  report.Mainstream.AvgEnergy,
			UndergroundAvgEnergy: report.Underground.AvgEnergy,
			Winner:               "mainstream",
			Difference:           domain.Round(math.Abs(report.Underground.AvgEnergy-report.Mainstream.AvgEnergy), 3),
		}
		if report.Underground.AvgEnergy > report.Mainstream.AvgEnergy {
			cmp.Winner = "underground"
		}
		report.Energy = cmp
	}
	return report, nil
}

func summarizeGroup(genres []string, metrics []domain.GenreMetrics) domain.GroupSummary {
	s := domain.GroupSummary{Genres: genres, Analyzed: len(metrics)}
	if len(metrics) == 0 {
		return s
	}
	s.AvgPopularity = domain.Round(mean(pluck(metrics, func(m domain.GenreMetrics) float64 { return m.AvgPopularity })), 2)
	s.AvgEnergy = domain.Round(mean(pluck(metrics, func(m domain.GenreMetrics) float64 { return m.AvgEnergy })), 3)
	return s
}

// analyzeAll runs AnalyzeGenre for each genre. Entity failures are recorded
// and do not stop the batch; only cancellation does.
func (o *Orchestrator) analyzeAll(ctx context.Context, genres []string) (domain.GenreBatch, error) {
	batch := domain.GenreBatch{
		GenresAnalyzed: make([]string, 0, len(genres)),
		Genres:         make(map[string]domain.GenreMetrics, len(genres)),
	}
	for i, g := range genres {
		if err := o.pauseBetween(ctx, i); err != nil {
			return domain.GenreBatch{}, err
		}
		m, err := o.AnalyzeGenre(ctx, g)
		if err != nil {
			if ctx.Err() != nil {
				return domain.GenreBatch{}, ctx.Err()
			}
			if !errors.Is(err, domain.ErrInsufficientData) {
				o.logger.Warn("genre analysis failed", "genre", g, "error", err)
			}
			batch.Errors = append(batch.Errors, domain.EntityError{Entity: g, Error: err.Error(), Note: genreRetryNote})
			continue
		}
		batch.GenresAnalyzed = append(batch.GenresAnalyzed, m.Genre)
		batch.Genres[m.Genre] = m
	}
	batch.TotalGenresAnalyzed = len(batch.Genres)
	batch.AnalyzedAt = o.now()
	return batch, nil
}
