package domain

import "time"

// UndergroundReport lists gems found among the candidate genres.
type UndergroundReport struct {
	UndergroundGems []UndergroundGem `json:"underground_gems"`
	TotalAnalyzed   int              `json:"total_analyzed"`
	Errors          []EntityError    `json:"errors,omitempty"`
	Summary         string           `json:"summary"`
	AnalyzedAt      time.Time        `json:"analysis_date"`
}

// GroupSummary averages one group of genres.
type GroupSummary struct {
	Genres        []string `json:"genres"`
	Analyzed      int      `json:"analyzed"`
	AvgPopularity float64  `json:"avg_popularity"`
	AvgEnergy     float64  `json:"avg_energy"`
}

// EnergyComparison contrasts two groups' mean energy.
type EnergyComparison struct {
	MainstreamAvgEnergy  float64 `json:"mainstream_avg_energy"`
	UndergroundAvgEnergy float64 `json:"underground_avg_energy"`
	Winner               string  `json:"energy_winner"`
	Difference           float64 `json:"energy_difference"`
}

// TrendingReport compares mainstream and underground genre groups.
type TrendingReport struct {
	Mainstream  GroupSummary            `json:"mainstream"`
	Underground GroupSummary            `json:"underground"`
	Energy      *EnergyComparison       `json:"energy_comparison,omitempty"`
	Genres      map[string]GenreMetrics `json:"genres"`
	Errors      []EntityError           `json:"errors,omitempty"`
	AnalyzedAt  time.Time               `json:"analysis_date"`
}

// VersusEntry is one side of a head-to-head.
type VersusEntry struct {
	Name               string   `json:"name"`
	Popularity         int      `json:"popularity"`
	Followers          int      `json:"followers"`
	FollowersFormatted string   `json:"followers_formatted"`
	TopTrack           string   `json:"top_track,omitempty"`
	Genres             []string `json:"genres"`
}

// VersusReport is a two-artist head-to-head.
type VersusReport struct {
	Matchup    string               `json:"matchup"`
	Contenders []VersusEntry        `json:"contenders"`
	Winners    map[MetricKey]Winner `json:"winners"`
	Insights   []string             `json:"insights"`
	AnalyzedAt time.Time            `json:"analysis_date"`
}

// ScenePairReport holds two artist comparisons side by side.
type ScenePairReport struct {
	Underground ArtistBatch `json:"underground"`
	Mainstream  ArtistBatch `json:"mainstream"`
	AnalyzedAt  time.Time   `json:"analysis_date"`
}

// HealthReport is the readiness view.
type HealthReport struct {
	Status                string `json:"status"`
	Database              string `json:"database"`
	Catalog               string `json:"catalog"`
	CredentialsConfigured bool   `json:"credentials_configured"`
}
