package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
	"github.com/ewilliams-labs/soundmetrics/internal/core/ports"
	"github.com/ewilliams-labs/soundmetrics/internal/pacing"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Orchestrator coordinates catalog sampling, aggregation, comparison and
// snapshot recording. Entities in a batch are processed one at a time.
type Orchestrator struct {
	catalog    ports.CatalogProvider
	store      ports.SnapshotStore
	recorder   ports.SnapshotRecorder
	pacer      ports.Pacer
	random     RandomSource
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
	settings   Settings
	hasCreds   bool
	collector  *Collector
	resolver   *FeatureResolver
	comparator *Comparator
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithPacer replaces the sleeping pacer.
func WithPacer(p ports.Pacer) Option {
	return func(o *Orchestrator) { o.pacer = p }
}

// WithRandom sets the noise source of the feature estimator.
func WithRandom(r RandomSource) Option {
	return func(o *Orchestrator) { o.random = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock sets the time source used for analysis dates.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator sets the snapshot id generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

// WithCredentials records whether catalog credentials were supplied.
func WithCredentials(configured bool) Option {
	return func(o *Orchestrator) { o.hasCreds = configured }
}

// NewOrchestrator constructs an Orchestrator. recorder may be nil, in which
// case nothing is persisted.
func NewOrchestrator(catalog ports.CatalogProvider, store ports.SnapshotStore, recorder ports.SnapshotRecorder, settings Settings, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:  catalog,
		store:    store,
		recorder: recorder,
		pacer:    pacing.Sleeper{},
		logger:   slog.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
		settings: settings,
		hasCreds: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.random == nil {
		o.random = rand.New(rand.NewPCG(uint64(o.now().UnixNano()), 0x5eed))
	}
	o.collector = NewCollector(catalog, o.pacer, settings.Limits, settings.Pacing, o.logger)
	o.resolver = NewFeatureResolver(catalog, o.pacer, NewEstimator(o.random), settings.Limits, settings.Pacing, o.logger)
	o.comparator = NewComparator(settings.Thresholds, settings.Limits)
	return o
}

// Settings returns the active settings.
func (o *Orchestrator) Settings() Settings { return o.settings }

// Health probes the snapshot store and the catalog.
func (o *Orchestrator) Health(ctx context.Context) domain.HealthReport {
	report := domain.HealthReport{
		Status:                "healthy",
		Database:              "connected",
		Catalog:               "connected",
		CredentialsConfigured: o.hasCreds,
	}
	if o.store == nil {
		report.Database = "not configured"
		report.Status = "degraded"
	} else if err := o.store.Ping(ctx); err != nil {
		o.logger.Warn("health: database ping failed", "error", err)
		report.Database = "error: " + err.Error()
		report.Status = "degraded"
	}
	if !o.hasCreds {
		report.Catalog = "not configured"
		report.Status = "degraded"
	} else if err := o.catalog.Ping(ctx); err != nil {
		o.logger.Warn("health: catalog ping failed", "error", err)
		report.Catalog = "error: " + err.Error()
		report.Status = "degraded"
	}
	return report
}

// GenreHistory returns stored snapshots for genre, newest first.
func (o *Orchestrator) GenreHistory(ctx context.Context, genre string, limit int) ([]domain.GenreSnapshot, error) {
	genre, err := normalizeGenre(genre)
	if err != nil {
		return nil, err
	}
	if o.store == nil {
		return nil, fmt.Errorf("service: history: %w", domain.ErrPersistence)
	}
	snaps, err := o.store.ListGenreSnapshots(ctx, genre, historyLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("service: failed to load genre history: %w", err)
	}
	return snaps, nil
}

// ArtistHistory returns stored snapshots for an artist id, newest first.
func (o *Orchestrator) ArtistHistory(ctx context.Context, artistID string, limit int) (domain.ArtistIdentity, []domain.ArtistSnapshot, error) {
	artistID = strings.TrimSpace(artistID)
	if artistID == "" {
		return domain.ArtistIdentity{}, nil, domain.InvalidInputError{Field: "artist id", Reason: "must not be empty"}
	}
	if o.store == nil {
		return domain.ArtistIdentity{}, nil, fmt.Errorf("service: history: %w", domain.ErrPersistence)
	}
	artist, err := o.store.GetArtist(ctx, artistID)
	if err != nil {
		return domain.ArtistIdentity{}, nil, fmt.Errorf("service: failed to load artist: %w", err)
	}
	snaps, err := o.store.ListArtistSnapshots(ctx, artistID, historyLimit(limit))
	if err != nil {
		return domain.ArtistIdentity{}, nil, fmt.Errorf("service: failed to load artist history: %w", err)
	}
	return artist, snaps, nil
}

func historyLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	}
	return limit
}

// pauseBetween inserts the inter-entity delay before every entity but the first.
func (o *Orchestrator) pauseBetween(ctx context.Context, i int) error {
	if i == 0 {
		return nil
	}
	return o.pacer.Pause(ctx, o.settings.Pacing.BetweenEntities)
}

func (o *Orchestrator) recordGenre(m domain.GenreMetrics, sample Sample) {
	if o.recorder == nil {
		return
	}
	top := topTracks(sample.Tracks, o.settings.Limits.GenreTopTracks)
	o.recorder.RecordGenre(domain.GenreSnapshot{
		ID:                  o.newID(),
		Genre:               m.Genre,
		CapturedAt:          m.AnalyzedAt,
		TracksAnalyzed:      m.TracksAnalyzed,
		PlaylistPresence:    m.PlaylistPresence,
		AvgPopularity:       m.AvgPopularity,
		AvgEnergy:           m.AvgEnergy,
		AvgDanceability:     m.AvgDanceability,
		AvgValence:          m.AvgValence,
		AvgTempo:            m.AvgTempo,
		AvgAcousticness:     m.AvgAcousticness,
		AvgInstrumentalness: m.AvgInstrumentalness,
		Estimated:           m.Estimated,
		TopArtists:          TopArtistScores(top, o.settings.Limits.GenreTopTracks),
	})
	o.logger.Debug("snapshot queued", "genre", m.Genre)
}

func (o *Orchestrator) recordArtist(p domain.ArtistProfile) {
	if o.recorder == nil {
		return
	}
	o.recorder.RecordArtist(domain.ArtistIdentity{
		ID:         p.ID,
		Name:       p.Name,
		Popularity: p.Popularity,
		Followers:  p.Followers,
		Genres:     p.Genres,
		UpdatedAt:  p.AnalyzedAt,
	}, domain.ArtistSnapshot{
		ID:                 o.newID(),
		ArtistID:           p.ID,
		CapturedAt:         p.AnalyzedAt,
		Popularity:         p.Popularity,
		Followers:          p.Followers,
		TotalAlbums:        p.TotalAlbums,
		AvgTrackPopularity: p.AvgTrackPopularity,
		AudioFeatures:      p.AudioFeatures,
		ConsistencyScore:   p.ConsistencyScore,
		TopTracks:          p.TopTracks,
	})
	o.logger.Debug("snapshot queued", "artist", p.Name)
}

func normalizeGenre(genre string) (string, error) {
	g := strings.ToLower(strings.TrimSpace(genre))
	if g == "" {
		return "", domain.InvalidInputError{Field: "genre", Reason: "must not be empty"}
	}
	return g, nil
}

func normalizeArtist(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", domain.InvalidInputError{Field: "artist", Reason: "must not be empty"}
	}
	return n, nil
}

// cleanList trims entries and drops blanks and repeats.
func cleanList(items []string, lower bool) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if lower {
			it = strings.ToLower(it)
		}
		if _, dup := seen[it]; it == "" || dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
