package ports

import (
	"context"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

// SnapshotStore persists analysis history.
type SnapshotStore interface {
	SaveGenreSnapshot(ctx context.Context, s domain.GenreSnapshot) error
	// SaveArtistSnapshot upserts the identity and appends the snapshot atomically.
	SaveArtistSnapshot(ctx context.Context, a domain.ArtistIdentity, s domain.ArtistSnapshot) error
	GetArtist(ctx context.Context, id string) (domain.ArtistIdentity, error)
	ListGenreSnapshots(ctx context.Context, genre string, limit int) ([]domain.GenreSnapshot, error)
	ListArtistSnapshots(ctx context.Context, artistID string, limit int) ([]domain.ArtistSnapshot, error)
	Ping(ctx context.Context) error
}

// SnapshotRecorder accepts fire-and-forget write requests.
type SnapshotRecorder interface {
	RecordGenre(s domain.GenreSnapshot)
	RecordArtist(a domain.ArtistIdentity, s domain.ArtistSnapshot)
}
