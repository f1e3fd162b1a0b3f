package domain

import "time"

// Range holds the observed [min, max] of a descriptor.
type Range [2]float64

// TopTrack is a display entry in a genre's top list.
type TopTrack struct {
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Popularity int    `json:"popularity"`
}

// GenreMetrics summarizes a sampled genre. When Estimated is set the
// spread fields are left nil and omitted from JSON.
type GenreMetrics struct {
	Genre               string     `json:"genre"`
	TracksAnalyzed      int        `json:"tracks_analyzed"`
	PlaylistPresence    int        `json:"playlist_presence"`
	AvgPopularity       float64    `json:"avg_popularity"`
	PopularityStd       *float64   `json:"popularity_std,omitempty"`
	AvgEnergy           float64    `json:"avg_energy"`
	AvgDanceability     float64    `json:"avg_danceability"`
	AvgValence          float64    `json:"avg_valence"`
	AvgTempo            float64    `json:"avg_tempo"`
	AvgAcousticness     float64    `json:"avg_acousticness"`
	AvgInstrumentalness float64    `json:"avg_instrumentalness"`
	EnergyRange         *Range     `json:"energy_range,omitempty"`
	TempoRange          *Range     `json:"tempo_range,omitempty"`
	TopTracks           []TopTrack `json:"top_tracks"`
	Estimated           bool       `json:"estimated"`
	Note                string     `json:"note,omitempty"`
	AnalyzedAt          time.Time  `json:"analysis_date"`
}

// MetricValue implements Measurable.
func (g GenreMetrics) MetricValue(key MetricKey) (float64, bool) {
	switch key {
	case MetricAvgPopularity:
		return g.AvgPopularity, true
	case MetricAvgEnergy:
		return g.AvgEnergy, true
	case MetricAvgDanceability:
		return g.AvgDanceability, true
	}
	return 0, false
}

// FeaturesEstimated implements Measurable.
func (g GenreMetrics) FeaturesEstimated() bool { return g.Estimated }

// ArtistScore is an artist's summed popularity within a genre's top tracks.
type ArtistScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GenreSnapshot is the persisted, append-only record of one genre analysis.
type GenreSnapshot struct {
	ID                  string        `json:"id"`
	Genre               string        `json:"genre"`
	CapturedAt          time.Time     `json:"captured_at"`
	TracksAnalyzed      int           `json:"tracks_analyzed"`
	PlaylistPresence    int           `json:"playlist_presence"`
	AvgPopularity       float64       `json:"avg_popularity"`
	AvgEnergy           float64       `json:"avg_energy"`
	AvgDanceability     float64       `json:"avg_danceability"`
	AvgValence          float64       `json:"avg_valence"`
	AvgTempo            float64       `json:"avg_tempo"`
	AvgAcousticness     float64       `json:"avg_acousticness"`
	AvgInstrumentalness float64       `json:"avg_instrumentalness"`
	Estimated           bool          `json:"estimated"`
	TopArtists          []ArtistScore `json:"top_artists"`
}
