package domain

import "time"

// FeatureMeans are averaged audio descriptors.
type FeatureMeans struct {
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
}

// ArtistTrack is a display entry in an artist's top list.
type ArtistTrack struct {
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	Album      string `json:"album"`
}

// ArtistProfile is the analyzed view of one artist. AudioFeatures and
// ConsistencyScore are nil when the catalog withheld descriptors.
type ArtistProfile struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Popularity         int           `json:"popularity"`
	Followers          int           `json:"followers"`
	FollowersFormatted string        `json:"followers_formatted"`
	Genres             []string      `json:"genres"`
	ImageURL           string        `json:"image,omitempty"`
	TotalAlbums        *int          `json:"total_albums,omitempty"`
	TracksAnalyzed     int           `json:"tracks_analyzed"`
	AvgTrackPopularity float64       `json:"avg_track_popularity"`
	TopTrackPopularity int           `json:"top_track_popularity"`
	AudioFeatures      *FeatureMeans `json:"avg_audio_features,omitempty"`
	ConsistencyScore   *float64      `json:"consistency_score,omitempty"`
	TopTracks          []ArtistTrack `json:"top_tracks"`
	Note               string        `json:"note,omitempty"`
	AnalyzedAt         time.Time     `json:"analysis_date"`
}

// MetricValue implements Measurable.
func (a ArtistProfile) MetricValue(key MetricKey) (float64, bool) {
	switch key {
	case MetricPopularity:
		return float64(a.Popularity), true
	case MetricFollowers:
		return float64(a.Followers), true
	case MetricAvgTrackPopularity:
		return a.AvgTrackPopularity, a.TracksAnalyzed > 0
	case MetricAvgEnergy:
		if a.AudioFeatures == nil {
			return 0, false
		}
		return a.AudioFeatures.Energy, true
	case MetricAvgDanceability:
		if a.AudioFeatures == nil {
			return 0, false
		}
		return a.AudioFeatures.Danceability, true
	}
	return 0, false
}

// Consistency returns the consistency score when it is defined.
func (a ArtistProfile) Consistency() (float64, bool) {
	if a.ConsistencyScore == nil {
		return 0, false
	}
	return *a.ConsistencyScore, true
}

// FeaturesEstimated implements Measurable. Artist descriptors are never synthesized.
func (a ArtistProfile) FeaturesEstimated() bool { return false }

// ArtistIdentity is the upserted, last-write-wins artist row.
type ArtistIdentity struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Popularity int       `json:"popularity"`
	Followers  int       `json:"followers"`
	Genres     []string  `json:"genres"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ArtistSnapshot is the append-only record of one artist analysis.
type ArtistSnapshot struct {
	ID                 string        `json:"id"`
	ArtistID           string        `json:"artist_id"`
	CapturedAt         time.Time     `json:"captured_at"`
	Popularity         int           `json:"popularity"`
	Followers          int           `json:"followers"`
	TotalAlbums        *int          `json:"total_albums,omitempty"`
	AvgTrackPopularity float64       `json:"avg_track_popularity"`
	AudioFeatures      *FeatureMeans `json:"avg_audio_features,omitempty"`
	ConsistencyScore   *float64      `json:"consistency_score,omitempty"`
	TopTracks          []ArtistTrack `json:"top_tracks"`
}
