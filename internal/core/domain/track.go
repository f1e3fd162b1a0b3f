package domain

import "math"

// TrackSample is a track that survived playlist sampling.
type TrackSample struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	Artist     string `json:"artist"`
}

// TrackStub is a track as the catalog returns it.
type TrackStub struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album,omitempty"`
}

// PrimaryArtist returns the first credited artist or "Unknown".
func (t TrackStub) PrimaryArtist() string {
	if len(t.Artists) == 0 || t.Artists[0] == "" {
		return "Unknown"
	}
	return t.Artists[0]
}

// PlaylistStub is a playlist search hit.
type PlaylistStub struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TotalTracks int    `json:"total_tracks"`
}

// ArtistStub is the catalog's view of an artist.
type ArtistStub struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	Followers  int      `json:"followers"`
	Genres     []string `json:"genres"`
	ImageURL   string   `json:"image,omitempty"`
}

// AlbumFilter narrows an album count request.
type AlbumFilter struct {
	Type  string
	Limit int
}

// Conventional tempo bounds in BPM.
const (
	MinTempo = 60.0
	MaxTempo = 200.0
)

// AudioFeatures holds the per-track descriptors. Estimated marks a synthetic
// record produced from a genre profile rather than measured by the catalog.
type AudioFeatures struct {
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Estimated        bool    `json:"estimated"`
}

// Clamp bounds ratio descriptors to [0,1] and tempo to [MinTempo, MaxTempo].
func (f AudioFeatures) Clamp() AudioFeatures {
	f.Energy = clamp01(f.Energy)
	f.Danceability = clamp01(f.Danceability)
	f.Valence = clamp01(f.Valence)
	f.Acousticness = clamp01(f.Acousticness)
	f.Instrumentalness = clamp01(f.Instrumentalness)
	f.Tempo = math.Max(MinTempo, math.Min(MaxTempo, f.Tempo))
	return f
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
