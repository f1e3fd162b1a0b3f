// Package sqlite provides a SQLite-backed implementation of the snapshot store port.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
	"github.com/ewilliams-labs/soundmetrics/internal/core/ports"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// compile-time interface assertion
var _ ports.SnapshotStore = (*Adapter)(nil)

// Adapter implements the snapshot store port for SQLite
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// One connection: writes are serialized anyway and ":memory:" is per-connection.
	db.SetMaxOpenConns(1)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}

	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Ping verifies the database is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	return nil
}

// SaveGenreSnapshot appends one genre analysis.
func (a *Adapter) SaveGenreSnapshot(ctx context.Context, s domain.GenreSnapshot) error {
	topArtists, err := marshalSlice(s.TopArtists)
	if err != nil {
		return fmt.Errorf("failed to encode top artists: %w", err)
	}

	query := `
		INSERT INTO genre_snapshots (
			id, genre, captured_at, tracks_analyzed, playlist_presence,
			avg_popularity, avg_energy, avg_danceability, avg_valence,
			avg_tempo, avg_acousticness, avg_instrumentalness, estimated, top_artists
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := a.db.ExecContext(
		ctx,
		query,
		s.ID,
		s.Genre,
		formatTime(s.CapturedAt),
		s.TracksAnalyzed,
		s.PlaylistPresence,
		s.AvgPopularity,
		s.AvgEnergy,
		s.AvgDanceability,
		s.AvgValence,
		s.AvgTempo,
		s.AvgAcousticness,
		s.AvgInstrumentalness,
		s.Estimated,
		topArtists,
	); err != nil {
		return fmt.Errorf("failed to save genre snapshot: %w", err)
	}

	return nil
}

// SaveArtistSnapshot upserts the artist row and appends the snapshot in one
// transaction. Identity fields are last-write-wins; created_at is kept.
func (a *Adapter) SaveArtistSnapshot(ctx context.Context, artist domain.ArtistIdentity, s domain.ArtistSnapshot) error {
	genres, err := marshalSlice(artist.Genres)
	if err != nil {
		return fmt.Errorf("failed to encode genres: %w", err)
	}
	topTracks, err := marshalSlice(s.TopTracks)
	if err != nil {
		return fmt.Errorf("failed to encode top tracks: %w", err)
	}
	var features sql.NullString
	if s.AudioFeatures != nil {
		raw, err := json.Marshal(s.AudioFeatures)
		if err != nil {
			return fmt.Errorf("failed to encode audio features: %w", err)
		}
		features = sql.NullString{String: string(raw), Valid: true}
	}

	updated := artist.UpdatedAt
	if updated.IsZero() {
		updated = s.CapturedAt
	}
	created := artist.CreatedAt
	if created.IsZero() {
		created = updated
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safety net: auto-rollback if we error/panic before commit

	queryArtist := `
		INSERT INTO artists (id, name, popularity, followers, genres, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			popularity=excluded.popularity,
			followers=excluded.followers,
			genres=excluded.genres,
			updated_at=excluded.updated_at;
	`
	if _, err := tx.ExecContext(
		ctx,
		queryArtist,
		artist.ID,
		artist.Name,
		artist.Popularity,
		artist.Followers,
		genres,
		formatTime(created),
		formatTime(updated),
	); err != nil {
		return fmt.Errorf("failed to save artist %s: %w", artist.ID, err)
	}

	querySnapshot := `
		INSERT INTO artist_snapshots (
			id, artist_id, captured_at, popularity, followers, total_albums,
			avg_track_popularity, audio_features, consistency_score, top_tracks
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(
		ctx,
		querySnapshot,
		s.ID,
		artist.ID,
		formatTime(s.CapturedAt),
		s.Popularity,
		s.Followers,
		nullInt(s.TotalAlbums),
		s.AvgTrackPopularity,
		features,
		nullFloat(s.ConsistencyScore),
		topTracks,
	); err != nil {
		return fmt.Errorf("failed to save artist snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	return nil
}

// GetArtist loads the stored identity for an artist.
func (a *Adapter) GetArtist(ctx context.Context, id string) (domain.ArtistIdentity, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, name, popularity, followers, genres, created_at, updated_at
		FROM artists WHERE id = ?
	`, id)

	var artist domain.ArtistIdentity
	var genres, created, updated string
	if err := row.Scan(&artist.ID, &artist.Name, &artist.Popularity, &artist.Followers, &genres, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ArtistIdentity{}, fmt.Errorf("artist %s: %w", id, domain.ErrNotFound)
		}
		return domain.ArtistIdentity{}, fmt.Errorf("failed to load artist: %w", err)
	}
	if err := json.Unmarshal([]byte(genres), &artist.Genres); err != nil {
		return domain.ArtistIdentity{}, fmt.Errorf("failed to decode genres: %w", err)
	}
	artist.CreatedAt = parseTime(created)
	artist.UpdatedAt = parseTime(updated)

	return artist, nil
}

// ListGenreSnapshots returns the newest snapshots for genre first.
func (a *Adapter) ListGenreSnapshots(ctx context.Context, genre string, limit int) ([]domain.GenreSnapshot, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, genre, captured_at, tracks_analyzed, playlist_presence,
			avg_popularity, avg_energy, avg_danceability, avg_valence,
			avg_tempo, avg_acousticness, avg_instrumentalness, estimated, top_artists
		FROM genre_snapshots
		WHERE genre = ?
		ORDER BY captured_at DESC, rowid DESC
		LIMIT ?
	`, genre, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load genre snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []domain.GenreSnapshot{}
	for rows.Next() {
		var s domain.GenreSnapshot
		var captured, topArtists string
		if err := rows.Scan(
			&s.ID,
			&s.Genre,
			&captured,
			&s.TracksAnalyzed,
			&s.PlaylistPresence,
			&s.AvgPopularity,
			&s.AvgEnergy,
			&s.AvgDanceability,
			&s.AvgValence,
			&s.AvgTempo,
			&s.AvgAcousticness,
			&s.AvgInstrumentalness,
			&s.Estimated,
			&topArtists,
		); err != nil {
			return nil, fmt.Errorf("failed to scan genre snapshot: %w", err)
		}
		s.CapturedAt = parseTime(captured)
		if err := json.Unmarshal([]byte(topArtists), &s.TopArtists); err != nil {
			return nil, fmt.Errorf("failed to decode top artists: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate genre snapshots: %w", err)
	}

	return snapshots, nil
}

// ListArtistSnapshots returns the newest snapshots for an artist first.
func (a *Adapter) ListArtistSnapshots(ctx context.Context, artistID string, limit int) ([]domain.ArtistSnapshot, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, artist_id, captured_at, popularity, followers, total_albums,
			avg_track_popularity, audio_features, consistency_score, top_tracks
		FROM artist_snapshots
		WHERE artist_id = ?
		ORDER BY captured_at DESC, rowid DESC
		LIMIT ?
	`, artistID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load artist snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []domain.ArtistSnapshot{}
	for rows.Next() {
		var s domain.ArtistSnapshot
		var captured, topTracks string
		var albums sql.NullInt64
		var features sql.NullString
		var consistency sql.NullFloat64
		if err := rows.Scan(
			&s.ID,
			&s.ArtistID,
			&captured,
			&s.Popularity,
			&s.Followers,
			&albums,
			&s.AvgTrackPopularity,
			&features,
			&consistency,
			&topTracks,
		); err != nil {
			return nil, fmt.Errorf("failed to scan artist snapshot: %w", err)
		}
		s.CapturedAt = parseTime(captured)
		if albums.Valid {
			n := int(albums.Int64)
			s.TotalAlbums = &n
		}
		if consistency.Valid {
			v := consistency.Float64
			s.ConsistencyScore = &v
		}
		if features.Valid {
			var f domain.FeatureMeans
			if err := json.Unmarshal([]byte(features.String), &f); err != nil {
				return nil, fmt.Errorf("failed to decode audio features: %w", err)
			}
			s.AudioFeatures = &f
		}
		if err := json.Unmarshal([]byte(topTracks), &s.TopTracks); err != nil {
			return nil, fmt.Errorf("failed to decode top tracks: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate artist snapshots: %w", err)
	}

	return snapshots, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS artists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		popularity INTEGER NOT NULL DEFAULT 0,
		followers INTEGER NOT NULL DEFAULT 0,
		genres TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS artist_snapshots (
		id TEXT PRIMARY KEY,
		artist_id TEXT NOT NULL,
		captured_at TEXT NOT NULL,
		popularity INTEGER NOT NULL,
		followers INTEGER NOT NULL,
		total_albums INTEGER,
		avg_track_popularity REAL NOT NULL,
		audio_features TEXT,
		consistency_score REAL,
		top_tracks TEXT NOT NULL DEFAULT '[]',
		FOREIGN KEY(artist_id) REFERENCES artists(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_artist_snapshots_artist
		ON artist_snapshots (artist_id, captured_at);

	CREATE TABLE IF NOT EXISTS genre_snapshots (
		id TEXT PRIMARY KEY,
		genre TEXT NOT NULL,
		captured_at TEXT NOT NULL,
		tracks_analyzed INTEGER NOT NULL,
		playlist_presence INTEGER NOT NULL,
		avg_popularity REAL NOT NULL,
		avg_energy REAL NOT NULL,
		avg_danceability REAL NOT NULL,
		avg_valence REAL NOT NULL,
		avg_tempo REAL NOT NULL,
		avg_acousticness REAL NOT NULL,
		avg_instrumentalness REAL NOT NULL,
		estimated INTEGER NOT NULL DEFAULT 0,
		top_artists TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_genre_snapshots_genre
		ON genre_snapshots (genre, captured_at);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// Databases created before estimation was tracked lack the flag.
	if _, err := a.db.Exec("ALTER TABLE genre_snapshots ADD COLUMN estimated INTEGER NOT NULL DEFAULT 0"); err != nil {
		if !isDuplicateColumnError(err) {
			return err
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
