package domain

// MetricKey names a comparable numeric property.
type MetricKey string

const (
	MetricAvgPopularity      MetricKey = "avg_popularity"
	MetricPopularity         MetricKey = "popularity"
	MetricFollowers          MetricKey = "followers"
	MetricAvgTrackPopularity MetricKey = "avg_track_popularity"
	MetricAvgEnergy          MetricKey = "avg_energy"
	MetricAvgDanceability    MetricKey = "avg_danceability"
)

// Metric describes one ranked property. Integer metrics keep their exact
// value when a winner is declared.
type Metric struct {
	Key     MetricKey
	Integer bool
}

// Measurable is anything the comparator can rank.
type Measurable interface {
	// MetricValue reports the value of key, or false when it is not present.
	MetricValue(key MetricKey) (float64, bool)
	// FeaturesEstimated reports whether audio descriptors are synthetic.
	FeaturesEstimated() bool
}

// GenreMetricSet is the ordered list of metrics ranked for genres.
var GenreMetricSet = []Metric{
	{Key: MetricAvgPopularity},
	{Key: MetricAvgEnergy},
	{Key: MetricAvgDanceability},
}

// ArtistMetricSet is the ordered list of metrics ranked for artists.
var ArtistMetricSet = []Metric{
	{Key: MetricPopularity, Integer: true},
	{Key: MetricFollowers, Integer: true},
	{Key: MetricAvgTrackPopularity},
	{Key: MetricAvgEnergy},
	{Key: MetricAvgDanceability},
}
