package domain

import "time"

// EntityKind distinguishes genre and artist comparisons.
type EntityKind string

const (
	KindGenre  EntityKind = "genre"
	KindArtist EntityKind = "artist"
)

// Entity is a named input to the comparator. Order of a slice of entities
// is the tie-break order for rankings.
type Entity struct {
	Name    string
	Metrics Measurable
}

// RankEntry is one position within a metric ranking.
type RankEntry struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Winner is the top entity of a metric.
type Winner struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// UndergroundGem is a high-energy or danceable genre with low mainstream popularity.
type UndergroundGem struct {
	Genre        string  `json:"genre"`
	Reason       string  `json:"reason"`
	Score        float64 `json:"score"`
	Popularity   float64 `json:"popularity"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Estimated    bool    `json:"estimated"`
}

// ComparisonResult is the comparator output.
type ComparisonResult struct {
	Kind            EntityKind                `json:"kind"`
	Entities        []string                  `json:"entities_compared"`
	Rankings        map[MetricKey][]RankEntry `json:"rankings"`
	Winners         map[MetricKey]Winner      `json:"winners"`
	UndergroundGems []UndergroundGem          `json:"underground_gems,omitempty"`
	Insights        []string                  `json:"insights"`
}

// GenreBatch is the result of analyzing several genres.
type GenreBatch struct {
	GenresAnalyzed      []string                `json:"genres_analyzed"`
	TotalGenresAnalyzed int                     `json:"total_genres_analyzed"`
	Genres              map[string]GenreMetrics `json:"genres"`
	Errors              []EntityError           `json:"errors,omitempty"`
	Comparison          *ComparisonResult       `json:"comparison,omitempty"`
	Message             string                  `json:"message,omitempty"`
	AnalyzedAt          time.Time               `json:"analysis_date"`
}

// Succeeded returns the analyzed metrics in request order.
func (b GenreBatch) Succeeded() []GenreMetrics {
	out := make([]GenreMetrics, 0, len(b.Genres))
	for _, name := range b.GenresAnalyzed {
		if m, ok := b.Genres[name]; ok {
			out = append(out, m)
		}
	}
	return out
}

// ArtistBatch is the result of analyzing several artists.
type ArtistBatch struct {
	ArtistsCompared []string                 `json:"artists_compared"`
	TotalArtists    int                      `json:"total_artists"`
	DetailedData    map[string]ArtistProfile `json:"detailed_data"`
	Errors          []EntityError            `json:"errors,omitempty"`
	Comparison      *ComparisonResult        `json:"comparison,omitempty"`
	Message         string                   `json:"message,omitempty"`
	AnalyzedAt      time.Time                `json:"analysis_date"`
}
