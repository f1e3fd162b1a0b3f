package services

import (
	"context"
	"strings"
	"sync"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

// mockCatalog is a scripted ports.CatalogProvider.
type mockCatalog struct {
	mu sync.Mutex

	playlists    map[string][]domain.PlaylistStub
	playlistErr  map[string]error
	tracks       map[string][]domain.TrackStub
	tracksErr    map[string]error
	features     map[string]*domain.AudioFeatures
	featuresErr  error
	failOnBatch  int
	featureCalls [][]string

	artists   map[string]domain.ArtistStub
	topTracks map[string][]domain.TrackStub
	topErr    error
	albums    map[string]int
	albumErr  error
	pingErr   error

	searchCalls int
}

func (m *mockCatalog) SearchArtist(_ context.Context, name string) (domain.ArtistStub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	a, ok := m.artists[strings.ToLower(name)]
	if !ok {
		return domain.ArtistStub{}, domain.ErrNotFound
	}
	return a, nil
}

func (m *mockCatalog) TopTracks(_ context.Context, artistID string) ([]domain.TrackStub, error) {
	if m.topErr != nil {
		return nil, m.topErr
	}
	return m.topTracks[artistID], nil
}

func (m *mockCatalog) AudioFeatures(_ context.Context, ids []string) ([]*domain.AudioFeatures, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.featureCalls = append(m.featureCalls, append([]string(nil), ids...))
	if m.featuresErr != nil && (m.failOnBatch == 0 || m.failOnBatch == len(m.featureCalls)) {
		return nil, m.featuresErr
	}
	out := make([]*domain.AudioFeatures, len(ids))
	for i, id := range ids {
		out[i] = m.features[id]
	}
	return out, nil
}

func (m *mockCatalog) AlbumCount(_ context.Context, artistID string, _ domain.AlbumFilter) (int, error) {
	if m.albumErr != nil {
		return 0, m.albumErr
	}
	return m.albums[artistID], nil
}

func (m *mockCatalog) SearchPlaylists(_ context.Context, genre string, _ int) ([]domain.PlaylistStub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	if err := m.playlistErr[genre]; err != nil {
		return nil, err
	}
	return m.playlists[genre], nil
}

func (m *mockCatalog) PlaylistTracks(_ context.Context, playlistID string, _ int) ([]domain.TrackStub, error) {
	if err := m.tracksErr[playlistID]; err != nil {
		return nil, err
	}
	return m.tracks[playlistID], nil
}

func (m *mockCatalog) Ping(context.Context) error { return m.pingErr }

// mockRecorder captures recorded snapshots.
type mockRecorder struct {
	genres   []domain.GenreSnapshot
	identity []domain.ArtistIdentity
	artists  []domain.ArtistSnapshot
}

func (r *mockRecorder) RecordGenre(s domain.GenreSnapshot) { r.genres = append(r.genres, s) }

func (r *mockRecorder) RecordArtist(a domain.ArtistIdentity, s domain.ArtistSnapshot) {
	r.identity = append(r.identity, a)
	r.artists = append(r.artists, s)
}

// mockStore serves history and health reads.
type mockStore struct {
	pingErr     error
	artist      domain.ArtistIdentity
	artistErr   error
	genreSnaps  []domain.GenreSnapshot
	artistSnaps []domain.ArtistSnapshot
	lastLimit   int
}

func (s *mockStore) SaveGenreSnapshot(context.Context, domain.GenreSnapshot) error { return nil }

func (s *mockStore) SaveArtistSnapshot(context.Context, domain.ArtistIdentity, domain.ArtistSnapshot) error {
	return nil
}

func (s *mockStore) GetArtist(context.Context, string) (domain.ArtistIdentity, error) {
	return s.artist, s.artistErr
}

func (s *mockStore) ListGenreSnapshots(_ context.Context, _ string, limit int) ([]domain.GenreSnapshot, error) {
	s.lastLimit = limit
	return s.genreSnaps, nil
}

func (s *mockStore) ListArtistSnapshots(_ context.Context, _ string, limit int) ([]domain.ArtistSnapshot, error) {
	s.lastLimit = limit
	return s.artistSnaps, nil
}

func (s *mockStore) Ping(context.Context) error { return s.pingErr }

// fixedRandom always returns the same value; 0.5 yields zero noise.
type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

// genreCatalog builds a catalog where genre has one playlist with the given tracks.
func genreCatalog(genre string, tracks []domain.TrackStub, features map[string]*domain.AudioFeatures) *mockCatalog {
	return &mockCatalog{
		playlists: map[string][]domain.PlaylistStub{
			genre: {{ID: genre + "-pl", Name: genre, TotalTracks: 50}},
		},
		tracks:   map[string][]domain.TrackStub{genre + "-pl": tracks},
		features: features,
	}
}

func track(id string, popularity int, artist string) domain.TrackStub {
	return domain.TrackStub{ID: id, Name: "Song " + id, Popularity: popularity, Artists: []string{artist}, Album: "Album " + id}
}

func feat(energy, dance, tempo float64) *domain.AudioFeatures {
	return &domain.AudioFeatures{Energy: energy, Danceability: dance, Valence: 0.5, Tempo: tempo, Acousticness: 0.1, Instrumentalness: 0.2}
}
