package spotify

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyArtist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	Followers  struct {
		Total int `json:"total"`
	} `json:"followers"`
	Genres []string       `json:"genres"`
	Images []spotifyImage `json:"images"`
}

type spotifyTrack struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Popularity int                `json:"popularity"`
	Artists    []spotifyArtistRef `json:"artists"`
	Album      struct {
		Name string `json:"name"`
	} `json:"album"`
}

type spotifyPlaylist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type spotifyAudioFeatures struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
}

type artistSearchResponse struct {
	Artists struct {
		Items []spotifyArtist `json:"items"`
	} `json:"artists"`
}

// Playlist search results may contain null entries.
type playlistSearchResponse struct {
	Playlists struct {
		Items []*spotifyPlaylist `json:"items"`
	} `json:"playlists"`
}

type topTracksResponse struct {
	Tracks []spotifyTrack `json:"tracks"`
}

type audioFeaturesResponse struct {
	AudioFeatures []*spotifyAudioFeatures `json:"audio_features"`
}

type playlistTracksResponse struct {
	Items []struct {
		Track *spotifyTrack `json:"track"`
	} `json:"items"`
}

type albumsResponse struct {
	Total int `json:"total"`
}
