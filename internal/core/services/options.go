package services

import "time"

// Limits bounds how much is requested from the catalog per analysis.
type Limits struct {
	MaxPlaylists          int
	MaxTracksPerPlaylist  int
	MaxTotalTracks        int
	MaxFeaturesPerRequest int
	// MinPlaylistTracks is exclusive: a playlist qualifies with more tracks than this.
	MinPlaylistTracks int
	MaxTopTracks      int
	GenreTopTracks    int
	ArtistTopTracks   int
	AlbumType         string
	AlbumLimit        int
	MinCompare        int
	MaxCompare        int
}

// Pacing holds the fixed delays between catalog calls.
type Pacing struct {
	AfterSearch           time.Duration
	BetweenPlaylists      time.Duration
	BetweenFeatureBatches time.Duration
	BetweenArtistCalls    time.Duration
	BetweenEntities       time.Duration
}

// Thresholds parameterize the underground classifier and insight rules.
// Comparisons against them are strict.
type Thresholds struct {
	HighEnergyMaxPopularity  float64
	HighEnergyMinEnergy      float64
	DanceableMaxPopularity   float64
	DanceableMinDanceability float64
	BalancedMaxPopularity    float64
	BalancedMinEnergy        float64
	BalancedMinDanceability  float64

	EnergyWeight       float64
	DanceabilityWeight float64
	PopularityWeight   float64
	MaxGems            int

	EnergyHeadline          float64
	ConsistencyHeadline     float64
	DarkHorseMaxPopularity  float64
	DarkHorseMinEnergy      float64
	DarkHorseMinConsistency float64
}

// Lineups are the named entity lists used by preset operations.
type Lineups struct {
	TargetGenres          []string
	DefaultGenreCount     int
	UndergroundCandidates []string
	MainstreamGenres      []string
	UndergroundGenres     []string
	BreakbeatArtists      []string
	UndergroundArtists    []string
	MainstreamArtists     []string
}

// Settings configures the orchestrator and its engines.
type Settings struct {
	Limits     Limits
	Pacing     Pacing
	Thresholds Thresholds
	Lineups    Lineups
}

// DefaultLimits returns the limits sized for a restricted API tier.
func DefaultLimits() Limits {
	return Limits{
		MaxPlaylists:          8,
		MaxTracksPerPlaylist:  8,
		MaxTotalTracks:        20,
		MaxFeaturesPerRequest: 20,
		MinPlaylistTracks:     5,
		MaxTopTracks:          5,
		GenreTopTracks:        5,
		ArtistTopTracks:       3,
		AlbumType:             "album",
		AlbumLimit:            10,
		MinCompare:            2,
		MaxCompare:            5,
	}
}

// DefaultPacing returns the standard inter-call delays.
func DefaultPacing() Pacing {
	return Pacing{
		AfterSearch:           500 * time.Millisecond,
		BetweenPlaylists:      300 * time.Millisecond,
		BetweenFeatureBatches: 500 * time.Millisecond,
		BetweenArtistCalls:    300 * time.Millisecond,
		BetweenEntities:       time.Second,
	}
}

// DefaultThresholds returns the stock classifier constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighEnergyMaxPopularity:  50,
		HighEnergyMinEnergy:      0.65,
		DanceableMaxPopularity:   35,
		DanceableMinDanceability: 0.60,
		BalancedMaxPopularity:    40,
		BalancedMinEnergy:        0.6,
		BalancedMinDanceability:  0.65,
		EnergyWeight:             0.5,
		DanceabilityWeight:       0.3,
		PopularityWeight:         0.2,
		MaxGems:                  5,
		EnergyHeadline:           0.7,
		ConsistencyHeadline:      0.7,
		DarkHorseMaxPopularity:   50,
		DarkHorseMinEnergy:       0.6,
		DarkHorseMinConsistency:  0.7,
	}
}

// DefaultLineups returns the stock genre and artist lists.
func DefaultLineups() Lineups {
	return Lineups{
		TargetGenres: []string{
			"breakbeat", "drum-and-bass", "dubstep", "techno", "house",
			"electronic", "pop", "rock", "hip-hop", "indie",
		},
		DefaultGenreCount:     4,
		UndergroundCandidates: []string{"breakbeat", "drum-and-bass", "dubstep", "hardstyle", "psytrance"},
		MainstreamGenres:      []string{"pop", "rock", "hip-hop", "country"},
		UndergroundGenres:     []string{"breakbeat", "drum-and-bass", "psytrance", "darkwave"},
		BreakbeatArtists:      []string{"The Prodigy", "Pendulum", "The Chemical Brothers"},
		UndergroundArtists:    []string{"Pendulum", "Chase & Status"},
		MainstreamArtists:     []string{"Taylor Swift", "Ed Sheeran"},
	}
}

// DefaultSettings bundles every default.
func DefaultSettings() Settings {
	return Settings{
		Limits:     DefaultLimits(),
		Pacing:     DefaultPacing(),
		Thresholds: DefaultThresholds(),
		Lineups:    DefaultLineups(),
	}
}
