package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
	"github.com/ewilliams-labs/soundmetrics/internal/core/ports"
)

// Resolution is the outcome of feature resolution for a genre sample.
type Resolution struct {
	Features  []domain.AudioFeatures
	Estimated bool
	Reason    string
}

// FeatureResolver fetches measured audio features in batches and falls back
// to the estimator when any batch fails or nothing usable comes back.
type FeatureResolver struct {
	catalog   ports.CatalogProvider
	pacer     ports.Pacer
	estimator *Estimator
	batchSize int
	pause     time.Duration
	logger    *slog.Logger
}

// NewFeatureResolver constructs a FeatureResolver.
func NewFeatureResolver(catalog ports.CatalogProvider, pacer ports.Pacer, estimator *Estimator, limits Limits, pacing Pacing, logger *slog.Logger) *FeatureResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeatureResolver{
		catalog:   catalog,
		pacer:     pacer,
		estimator: estimator,
		batchSize: limits.MaxFeaturesPerRequest,
		pause:     pacing.BetweenFeatureBatches,
		logger:    logger,
	}
}

// Resolve returns measured features for ids, or a single estimated set.
// Measured rows from batches that succeeded before a failure are discarded.
func (r *FeatureResolver) Resolve(ctx context.Context, ids []string, genre string, avgPopularity float64, playlistCount int) (Resolution, error) {
	measured, err := r.Measure(ctx, ids)
	switch {
	case err != nil && ctx.Err() != nil:
		return Resolution{}, ctx.Err()
	case err != nil:
		r.logger.Warn("audio features unavailable", "genre", genre, "error", err)
		return r.estimate(genre, avgPopularity, playlistCount, "audio features request failed"), nil
	case len(measured) == 0:
		r.logger.Warn("audio features unavailable", "genre", genre, "tracks", len(ids))
		return r.estimate(genre, avgPopularity, playlistCount, "no audio features returned"), nil
	}
	return Resolution{Features: measured}, nil
}

// Measure fetches measured features only, dropping null entries and
// clamping the rest to the descriptor bounds. Any batch
// failure aborts and returns the error without partial results.
func (r *FeatureResolver) Measure(ctx context.Context, ids []string) ([]domain.AudioFeatures, error) {
	out := make([]domain.AudioFeatures, 0, len(ids))
	for start := 0; start < len(ids); start += r.batchSize {
		end := min(start+r.batchSize, len(ids))
		batch, err := r.catalog.AudioFeatures(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("service: failed to fetch audio features: %w", err)
		}
		for _, f := range batch {
			if f != nil {
				out = append(out, f.Clamp())
			}
		}
		if end < len(ids) {
			if err := r.pacer.Pause(ctx, r.pause); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (r *FeatureResolver) estimate(genre string, avgPopularity float64, playlistCount int, reason string) Resolution {
	f := r.estimator.Estimate(genre, avgPopularity, playlistCount)
	return Resolution{Features: []domain.AudioFeatures{f}, Estimated: true, Reason: reason}
}
