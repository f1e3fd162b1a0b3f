package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
	"github.com/ewilliams-labs/soundmetrics/internal/core/ports"
	"github.com/ewilliams-labs/soundmetrics/internal/pacing"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestOrchestrator(catalog *mockCatalog, store *mockStore, rec *mockRecorder) (*Orchestrator, *pacing.Recorder) {
	pacer := &pacing.Recorder{}
	var recorder ports.SnapshotRecorder
	if rec != nil {
		recorder = rec
	}
	o := NewOrchestrator(catalog, store, recorder, DefaultSettings(),
		WithPacer(pacer),
		WithRandom(fixedRandom(0.5)),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "snap-1" }),
	)
	return o, pacer
}

// multiGenreCatalog gives each genre one playlist with two tracks and measured features.
func multiGenreCatalog(genres map[string][2]float64) *mockCatalog {
	c := &mockCatalog{
		playlists: map[string][]domain.PlaylistStub{},
		tracks:    map[string][]domain.TrackStub{},
		features:  map[string]*domain.AudioFeatures{},
	}
	for g, v := range genres {
		pl := g + "-pl"
		c.playlists[g] = []domain.PlaylistStub{{ID: pl, TotalTracks: 30}}
		c.tracks[pl] = []domain.TrackStub{track(g+"-1", int(v[0]), "Artist "+g), track(g+"-2", int(v[0]), "Artist "+g)}
		c.features[g+"-1"] = feat(v[1], 0.5, 125)
		c.features[g+"-2"] = feat(v[1], 0.5, 125)
	}
	return c
}

func TestOrchestrator_AnalyzeGenre(t *testing.T) {
	tests := []struct {
		name          string
		catalog       *mockCatalog
		input         string
		wantErr       error
		wantEstimated bool
		wantRecorded  int
	}{
		{
			name: "measured analysis records a snapshot",
			catalog: genreCatalog("techno", []domain.TrackStub{track("t1", 60, "A"), track("t2", 40, "B")},
				map[string]*domain.AudioFeatures{"t1": feat(0.8, 0.7, 130), "t2": feat(0.6, 0.5, 126)}),
			input:        "  Techno ",
			wantRecorded: 1,
		},
		{
			name: "withheld features are estimated",
			catalog: func() *mockCatalog {
				c := genreCatalog("techno", []domain.TrackStub{track("t1", 60, "A")}, nil)
				c.featuresErr = &domain.UpstreamError{Op: "audio features", Status: 403}
				return c
			}(),
			input:         "techno",
			wantEstimated: true,
			wantRecorded:  1,
		},
		{
			name:    "empty sample is insufficient data",
			catalog: &mockCatalog{},
			input:   "techno",
			wantErr: domain.ErrInsufficientData,
		},
		{
			name:    "blank genre is rejected",
			catalog: &mockCatalog{},
			input:   "  ",
			wantErr: domain.ErrValidation,
		},
		{
			name:    "playlist search failure surfaces upstream error",
			catalog: &mockCatalog{playlistErr: map[string]error{"techno": &domain.UpstreamError{Op: "search", Status: 503}}},
			input:   "techno",
			wantErr: domain.ErrUpstreamUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &mockRecorder{}
			o, _ := newTestOrchestrator(tc.catalog, &mockStore{}, rec)

			got, err := o.AnalyzeGenre(context.Background(), tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if len(rec.genres) != 0 {
					t.Fatalf("failed analysis must not be recorded")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Genre != "techno" {
				t.Errorf("expected normalized genre, got %q", got.Genre)
			}
			if got.Estimated != tc.wantEstimated {
				t.Errorf("expected estimated=%v, got %v", tc.wantEstimated, got.Estimated)
			}
			if !got.AnalyzedAt.Equal(fixedNow) {
				t.Errorf("expected analysis date from clock, got %v", got.AnalyzedAt)
			}
			if len(rec.genres) != tc.wantRecorded {
				t.Fatalf("expected %d snapshots, got %d", tc.wantRecorded, len(rec.genres))
			}
			snap := rec.genres[0]
			if snap.ID != "snap-1" || snap.Genre != "techno" || snap.Estimated != tc.wantEstimated {
				t.Errorf("unexpected snapshot %+v", snap)
			}
			if len(snap.TopArtists) == 0 {
				t.Errorf("expected top artists in snapshot")
			}
		})
	}
}

func TestOrchestrator_AnalyzeGenres(t *testing.T) {
	t.Run("compares successes and records failures", func(t *testing.T) {
		catalog := multiGenreCatalog(map[string][2]float64{
			"breakbeat": {40, 0.8},
			"pop":       {70, 0.6},
		})
		catalog.playlistErr = map[string]error{"rock": &domain.UpstreamError{Op: "search", Status: 500}}
		rec := &mockRecorder{}
		o, pacer := newTestOrchestrator(catalog, &mockStore{}, rec)

		got, err := o.AnalyzeGenres(context.Background(), []string{"breakbeat", "rock", "pop"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.TotalGenresAnalyzed != 2 || len(got.Errors) != 1 || got.Errors[0].Entity != "rock" {
			t.Fatalf("unexpected batch %+v", got)
		}
		if got.Comparison == nil {
			t.Fatal("expected comparison")
		}
		if got.Comparison.Winners[domain.MetricAvgPopularity].Name != "pop" {
			t.Errorf("unexpected winners %+v", got.Comparison.Winners)
		}
		if len(got.Comparison.UndergroundGems) != 1 || got.Comparison.UndergroundGems[0].Genre != "breakbeat" {
			t.Errorf("unexpected gems %+v", got.Comparison.UndergroundGems)
		}
		if len(rec.genres) != 2 {
			t.Errorf("expected 2 snapshots, got %d", len(rec.genres))
		}
		betweenEntities := 0
		for _, d := range pacer.Pauses {
			if d == time.Second {
				betweenEntities++
			}
		}
		if betweenEntities != 2 {
			t.Errorf("expected 2 inter-entity pauses, got %d", betweenEntities)
		}
	})

	t.Run("single success needs more data", func(t *testing.T) {
		catalog := multiGenreCatalog(map[string][2]float64{"pop": {70, 0.6}})
		o, _ := newTestOrchestrator(catalog, &mockStore{}, &mockRecorder{})
		got, err := o.AnalyzeGenres(context.Background(), []string{"pop", "polka"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Comparison != nil || !strings.Contains(got.Message, "Need at least 2") {
			t.Fatalf("expected need-more-data result, got %+v", got)
		}
	})

	t.Run("validation happens before any catalog call", func(t *testing.T) {
		catalog := &mockCatalog{}
		o, _ := newTestOrchestrator(catalog, &mockStore{}, &mockRecorder{})
		_, err := o.AnalyzeGenres(context.Background(), []string{"pop"})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		_, err = o.AnalyzeGenres(context.Background(), []string{"a", "b", "c", "d", "e", "f"})
		var tooMany domain.TooManyInputsError
		if !errors.As(err, &tooMany) {
			t.Fatalf("expected TooManyInputsError, got %v", err)
		}
		if catalog.searchCalls != 0 {
			t.Fatalf("expected no catalog calls, got %d", catalog.searchCalls)
		}
	})

	t.Run("empty list uses default genres", func(t *testing.T) {
		catalog := &mockCatalog{}
		o, _ := newTestOrchestrator(catalog, &mockStore{}, &mockRecorder{})
		got, err := o.AnalyzeGenres(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if catalog.searchCalls != 4 || len(got.Errors) != 4 {
			t.Fatalf("expected the 4 default genres to be attempted, got %d calls %+v", catalog.searchCalls, got.Errors)
		}
	})
}

func TestOrchestrator_FindUndergroundAndTrending(t *testing.T) {
	catalog := multiGenreCatalog(map[string][2]float64{
		"breakbeat":     {30, 0.85},
		"drum-and-bass": {45, 0.9},
		"pop":           {80, 0.6},
		"rock":          {70, 0.7},
	})
	o, _ := newTestOrchestrator(catalog, &mockStore{}, &mockRecorder{})

	under, err := o.FindUnderground(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if under.TotalAnalyzed != 2 || len(under.UndergroundGems) != 2 {
		t.Fatalf("unexpected underground report %+v", under)
	}
	if under.UndergroundGems[0].Genre != "breakbeat" {
		t.Errorf("expected breakbeat to score highest, got %+v", under.UndergroundGems)
	}

	trend, err := o.Trending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trend.Mainstream.Analyzed != 2 || trend.Underground.Analyzed != 2 {
		t.Fatalf("unexpected group counts %+v %+v", trend.Mainstream, trend.Underground)
	}
	if trend.Mainstream.AvgPopularity != 75 {
		t.Errorf("expected mainstream popularity 75, got %v", trend.Mainstream.AvgPopularity)
	}
	if trend.Energy == nil || trend.Energy.Winner != "underground" || !floatEquals(trend.Energy.Difference, 0.225, 1e-9) {
		t.Errorf("unexpected energy comparison %+v", trend.Energy)
	}
}

func artistCatalog() *mockCatalog {
	return &mockCatalog{
		artists: map[string]domain.ArtistStub{
			"pendulum":       {ID: "a1", Name: "Pendulum", Popularity: 65, Followers: 2_100_000, Genres: []string{"drum and bass", "breakbeat", "electronic", "rock"}},
			"chase & status": {ID: "a2", Name: "Chase & Status", Popularity: 60, Followers: 990_000},
		},
		topTracks: map[string][]domain.TrackStub{
			"a1": {track("p1", 70, "Pendulum"), track("p2", 66, "Pendulum"), track("p3", 60, "Pendulum"), track("p4", 55, "Pendulum"), track("p5", 50, "Pendulum"), track("p6", 40, "Pendulum")},
			"a2": {track("c1", 64, "Chase & Status")},
		},
		features: map[string]*domain.AudioFeatures{
			"p1": feat(0.9, 0.6, 174), "p2": feat(0.85, 0.55, 172),
			"c1": feat(0.8, 0.7, 175),
		},
		albums: map[string]int{"a1": 4, "a2": 5},
	}
}

func TestOrchestrator_AnalyzeArtist(t *testing.T) {
	t.Run("full profile", func(t *testing.T) {
		rec := &mockRecorder{}
		o, _ := newTestOrchestrator(artistCatalog(), &mockStore{}, rec)
		got, err := o.AnalyzeArtist(context.Background(), "Pendulum")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.TracksAnalyzed != 5 {
			t.Errorf("expected top tracks capped at 5, got %d", got.TracksAnalyzed)
		}
		if len(got.TopTracks) != 3 {
			t.Errorf("expected 3 displayed tracks, got %d", len(got.TopTracks))
		}
		if got.AudioFeatures == nil || got.ConsistencyScore == nil {
			t.Fatalf("expected features and consistency, got %+v", got)
		}
		if got.TotalAlbums == nil || *got.TotalAlbums != 4 {
			t.Errorf("expected 4 albums, got %v", got.TotalAlbums)
		}
		if got.FollowersFormatted != "2.1M" {
			t.Errorf("unexpected follower format %q", got.FollowersFormatted)
		}
		if len(rec.identity) != 1 || rec.identity[0].ID != "a1" || len(rec.artists[0].TopTracks) != 3 {
			t.Errorf("unexpected recorded artist %+v %+v", rec.identity, rec.artists)
		}
	})

	t.Run("features and albums unavailable", func(t *testing.T) {
		catalog := artistCatalog()
		catalog.featuresErr = &domain.UpstreamError{Op: "audio features", Status: 403}
		catalog.albumErr = &domain.UpstreamError{Op: "albums", Status: 500}
		o, _ := newTestOrchestrator(catalog, &mockStore{}, &mockRecorder{})
		got, err := o.AnalyzeArtist(context.Background(), "pendulum")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.AudioFeatures != nil || got.ConsistencyScore != nil {
			t.Fatalf("expected no features, got %+v", got)
		}
		if !strings.Contains(got.Note, "unavailable") {
			t.Errorf("expected unavailable note, got %q", got.Note)
		}
		if got.TotalAlbums != nil {
			t.Errorf("expected albums omitted, got %v", *got.TotalAlbums)
		}
	})

	t.Run("unknown artist", func(t *testing.T) {
		o, _ := newTestOrchestrator(artistCatalog(), &mockStore{}, &mockRecorder{})
		if _, err := o.AnalyzeArtist(context.Background(), "Nobody"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestOrchestrator_CompareArtists(t *testing.T) {
	t.Run("reports failures beside comparison", func(t *testing.T) {
		o, _ := newTestOrchestrator(artistCatalog(), &mockStore{}, &mockRecorder{})
		got, err := o.CompareArtists(context.Background(), []string{"Pendulum", "Nobody", "Chase & Status"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.TotalArtists != 2 || len(got.Errors) != 1 || got.Errors[0].Error != "artist not found" {
			t.Fatalf("unexpected batch %+v", got)
		}
		if got.Comparison == nil || got.Comparison.Winners[domain.MetricPopularity].Name != "Pendulum" {
			t.Fatalf("unexpected comparison %+v", got.Comparison)
		}
	})

	t.Run("one success needs more data", func(t *testing.T) {
		o, _ := newTestOrchestrator(artistCatalog(), &mockStore{}, &mockRecorder{})
		got, err := o.CompareArtists(context.Background(), []string{"Pendulum", "Nobody"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Comparison != nil || got.Message == "" {
			t.Fatalf("expected need-more-data, got %+v", got)
		}
	})

	t.Run("too few names", func(t *testing.T) {
		catalog := artistCatalog()
		o, _ := newTestOrchestrator(catalog, &mockStore{}, &mockRecorder{})
		_, err := o.CompareArtists(context.Background(), []string{"Pendulum", " "})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if catalog.searchCalls != 0 {
			t.Fatalf("expected no catalog calls")
		}
	})
}

func TestOrchestrator_ArtistVersus(t *testing.T) {
	o, _ := newTestOrchestrator(artistCatalog(), &mockStore{}, &mockRecorder{})
	got, err := o.ArtistVersus(context.Background(), "Pendulum", "Chase & Status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Matchup != "Pendulum vs Chase & Status" {
		t.Errorf("unexpected matchup %q", got.Matchup)
	}
	if len(got.Contenders[0].Genres) != 3 {
		t.Errorf("genres should be trimmed to 3, got %v", got.Contenders[0].Genres)
	}
	if got.Contenders[0].TopTrack != "Song p1" {
		t.Errorf("unexpected top track %q", got.Contenders[0].TopTrack)
	}
	if got.Winners[domain.MetricFollowers].Name != "Pendulum" {
		t.Errorf("unexpected winners %+v", got.Winners)
	}
	if len(got.Insights) != 2 || !strings.Contains(got.Insights[1], "2.1M vs 990.0K") {
		t.Errorf("unexpected insights %v", got.Insights)
	}
}

func TestOrchestrator_Health(t *testing.T) {
	tests := []struct {
		name       string
		store      *mockStore
		catalogErr error
		wantStatus string
	}{
		{"all healthy", &mockStore{}, nil, "healthy"},
		{"database down", &mockStore{pingErr: errors.New("locked")}, nil, "degraded"},
		{"catalog down", &mockStore{}, errors.New("401"), "degraded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o, _ := newTestOrchestrator(&mockCatalog{pingErr: tc.catalogErr}, tc.store, nil)
			if got := o.Health(context.Background()); got.Status != tc.wantStatus {
				t.Fatalf("expected %s, got %+v", tc.wantStatus, got)
			}
		})
	}
}

func TestOrchestrator_History(t *testing.T) {
	store := &mockStore{
		artist:      domain.ArtistIdentity{ID: "a1", Name: "Pendulum"},
		genreSnaps:  []domain.GenreSnapshot{{ID: "g1", Genre: "techno"}},
		artistSnaps: []domain.ArtistSnapshot{{ID: "s1", ArtistID: "a1"}},
	}
	o, _ := newTestOrchestrator(&mockCatalog{}, store, nil)

	snaps, err := o.GenreHistory(context.Background(), "Techno", 0)
	if err != nil || len(snaps) != 1 || store.lastLimit != defaultHistoryLimit {
		t.Fatalf("unexpected genre history %+v %v limit=%d", snaps, err, store.lastLimit)
	}
	artist, asnaps, err := o.ArtistHistory(context.Background(), "a1", 500)
	if err != nil || artist.Name != "Pendulum" || len(asnaps) != 1 || store.lastLimit != maxHistoryLimit {
		t.Fatalf("unexpected artist history %+v %+v %v", artist, asnaps, err)
	}
	if _, _, err := o.ArtistHistory(context.Background(), "", 5); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
