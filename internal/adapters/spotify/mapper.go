package spotify

import "github.com/ewilliams-labs/soundmetrics/internal/core/domain"

func mapArtist(a spotifyArtist) domain.ArtistStub {
	stub := domain.ArtistStub{
		ID:         a.ID,
		Name:       a.Name,
		Popularity: a.Popularity,
		Followers:  a.Followers.Total,
		Genres:     a.Genres,
	}
	if stub.Genres == nil {
		stub.Genres = []string{}
	}
	if len(a.Images) > 0 {
		stub.ImageURL = a.Images[0].URL
	}
	return stub
}

func mapTrack(t spotifyTrack) domain.TrackStub {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	return domain.TrackStub{
		ID:         t.ID,
		Name:       t.Name,
		Popularity: t.Popularity,
		Artists:    artists,
		Album:      t.Album.Name,
	}
}

func mapPlaylist(p spotifyPlaylist) domain.PlaylistStub {
	return domain.PlaylistStub{
		ID:          p.ID,
		Name:        p.Name,
		TotalTracks: p.Tracks.Total,
	}
}

// mapFeatures returns nil for missing or all-zero entries; the API reports
// unanalyzed tracks either way. Values are clamped to the descriptor bounds.
func mapFeatures(f *spotifyAudioFeatures) *domain.AudioFeatures {
	if f == nil || allFeaturesZero(*f) {
		return nil
	}
	clamped := domain.AudioFeatures{
		Energy:           f.Energy,
		Danceability:     f.Danceability,
		Valence:          f.Valence,
		Tempo:            f.Tempo,
		Acousticness:     f.Acousticness,
		Instrumentalness: f.Instrumentalness,
	}.Clamp()
	return &clamped
}

func allFeaturesZero(f spotifyAudioFeatures) bool {
	return f.Danceability == 0 &&
		f.Energy == 0 &&
		f.Valence == 0 &&
		f.Tempo == 0 &&
		f.Acousticness == 0 &&
		f.Instrumentalness == 0
}
