package ports

import (
	"context"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

// CatalogProvider is the read-only music catalog.
type CatalogProvider interface {
	SearchArtist(ctx context.Context, name string) (domain.ArtistStub, error)
	TopTracks(ctx context.Context, artistID string) ([]domain.TrackStub, error)
	// AudioFeatures returns one entry per id, nil where the catalog has none.
	AudioFeatures(ctx context.Context, ids []string) ([]*domain.AudioFeatures, error)
	AlbumCount(ctx context.Context, artistID string, filter domain.AlbumFilter) (int, error)
	SearchPlaylists(ctx context.Context, genre string, limit int) ([]domain.PlaylistStub, error)
	PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]domain.TrackStub, error)
	Ping(ctx context.Context) error
}
