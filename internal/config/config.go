// Package config loads runtime settings from defaults, an optional config
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ewilliams-labs/soundmetrics/internal/core/services"
)

// EnvPrefix namespaces environment overrides, e.g. SOUNDMETRICS_HTTP_ADDR.
const EnvPrefix = "SOUNDMETRICS"

// Config is the full application configuration.
type Config struct {
	Spotify       SpotifyConfig    `mapstructure:"spotify"`
	Database      string           `mapstructure:"database"`
	HTTP          HTTPConfig       `mapstructure:"http"`
	SnapshotQueue int              `mapstructure:"snapshot_queue"`
	Log           LogConfig        `mapstructure:"log"`
	Limits        LimitsConfig     `mapstructure:"limits"`
	Pacing        PacingConfig     `mapstructure:"pacing"`
	Thresholds    ThresholdsConfig `mapstructure:"thresholds"`
	Genres        GenresConfig     `mapstructure:"genres"`
	Artists       ArtistsConfig    `mapstructure:"artists"`
}

type SpotifyConfig struct {
	ClientID          string        `mapstructure:"client_id"`
	ClientSecret      string        `mapstructure:"client_secret"`
	APIURL            string        `mapstructure:"api_url"`
	TokenURL          string        `mapstructure:"token_url"`
	Market            string        `mapstructure:"market"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// HasCredentials reports whether both client credentials are set.
func (s SpotifyConfig) HasCredentials() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type LimitsConfig struct {
	MaxPlaylists          int    `mapstructure:"max_playlists"`
	MaxTracksPerPlaylist  int    `mapstructure:"max_tracks_per_playlist"`
	MaxTotalTracks        int    `mapstructure:"max_total_tracks"`
	MaxFeaturesPerRequest int    `mapstructure:"max_audio_features_per_request"`
	MinPlaylistTracks     int    `mapstructure:"min_playlist_tracks"`
	MaxTopTracks          int    `mapstructure:"max_top_tracks"`
	GenreTopTracks        int    `mapstructure:"genre_top_tracks"`
	ArtistTopTracks       int    `mapstructure:"artist_top_tracks"`
	AlbumType             string `mapstructure:"album_type"`
	AlbumLimit            int    `mapstructure:"album_limit"`
	MinCompare            int    `mapstructure:"min_compare"`
	MaxCompare            int    `mapstructure:"max_compare"`
}

type PacingConfig struct {
	AfterSearch           time.Duration `mapstructure:"after_search"`
	BetweenPlaylists      time.Duration `mapstructure:"between_playlists"`
	BetweenFeatureBatches time.Duration `mapstructure:"between_feature_batches"`
	BetweenArtistCalls    time.Duration `mapstructure:"between_artist_calls"`
	BetweenEntities       time.Duration `mapstructure:"between_entities"`
}

type ThresholdsConfig struct {
	HighEnergyMaxPopularity  float64 `mapstructure:"high_energy_max_popularity"`
	HighEnergyMinEnergy      float64 `mapstructure:"high_energy_min_energy"`
	DanceableMaxPopularity   float64 `mapstructure:"danceable_max_popularity"`
	DanceableMinDanceability float64 `mapstructure:"danceable_min_danceability"`
	BalancedMaxPopularity    float64 `mapstructure:"balanced_max_popularity"`
	BalancedMinEnergy        float64 `mapstructure:"balanced_min_energy"`
	BalancedMinDanceability  float64 `mapstructure:"balanced_min_danceability"`
	EnergyWeight             float64 `mapstructure:"energy_weight"`
	DanceabilityWeight       float64 `mapstructure:"danceability_weight"`
	PopularityWeight         float64 `mapstructure:"popularity_weight"`
	MaxGems                  int     `mapstructure:"max_gems"`
	EnergyHeadline           float64 `mapstructure:"energy_headline"`
	ConsistencyHeadline      float64 `mapstructure:"consistency_headline"`
	DarkHorseMaxPopularity   float64 `mapstructure:"dark_horse_max_popularity"`
	DarkHorseMinEnergy       float64 `mapstructure:"dark_horse_min_energy"`
	DarkHorseMinConsistency  float64 `mapstructure:"dark_horse_min_consistency"`
}

type GenresConfig struct {
	Targets               []string `mapstructure:"targets"`
	DefaultCount          int      `mapstructure:"default_count"`
	UndergroundCandidates []string `mapstructure:"underground_candidates"`
	Mainstream            []string `mapstructure:"mainstream"`
	Underground           []string `mapstructure:"underground"`
}

type ArtistsConfig struct {
	Breakbeat   []string `mapstructure:"breakbeat"`
	Underground []string `mapstructure:"underground"`
	Mainstream  []string `mapstructure:"mainstream"`
}

// legacyEnv maps keys to the unprefixed variable names older deployments use.
var legacyEnv = map[string]string{
	"spotify.client_id":     "SPOTIFY_CLIENT_ID",
	"spotify.client_secret": "SPOTIFY_CLIENT_SECRET",
	"spotify.max_retries":   "SPOTIFY_MAX_RETRIES",
	"database":              "DATABASE_PATH",
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	d := services.DefaultSettings()

	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("spotify.api_url", "https://api.spotify.com/v1")
	v.SetDefault("spotify.token_url", "https://accounts.spotify.com/api/token")
	v.SetDefault("spotify.market", "US")
	v.SetDefault("spotify.timeout", 10*time.Second)
	v.SetDefault("spotify.max_retries", 3)
	v.SetDefault("spotify.retry_backoff", 500*time.Millisecond)
	v.SetDefault("spotify.requests_per_second", 5.0)

	v.SetDefault("database", "./soundmetrics.db")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("snapshot_queue", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

	v.SetDefault("limits.max_playlists", d.Limits.MaxPlaylists)
	v.SetDefault("limits.max_tracks_per_playlist", d.Limits.MaxTracksPerPlaylist)
	v.SetDefault("limits.max_total_tracks", d.Limits.MaxTotalTracks)
	v.SetDefault("limits.max_audio_features_per_request", d.Limits.MaxFeaturesPerRequest)
	v.SetDefault("limits.min_playlist_tracks", d.Limits.MinPlaylistTracks)
	v.SetDefault("limits.max_top_tracks", d.Limits.MaxTopTracks)
	v.SetDefault("limits.genre_top_tracks", d.Limits.GenreTopTracks)
	v.SetDefault("limits.artist_top_tracks", d.Limits.ArtistTopTracks)
	v.SetDefault("limits.album_type", d.Limits.AlbumType)
	v.SetDefault("limits.album_limit", d.Limits.AlbumLimit)
	v.SetDefault("limits.min_compare", d.Limits.MinCompare)
	v.SetDefault("limits.max_compare", d.Limits.MaxCompare)

	v.SetDefault("pacing.after_search", d.Pacing.AfterSearch)
	v.SetDefault("pacing.between_playlists", d.Pacing.BetweenPlaylists)
	v.SetDefault("pacing.between_feature_batches", d.Pacing.BetweenFeatureBatches)
	v.SetDefault("pacing.between_artist_calls", d.Pacing.BetweenArtistCalls)
	v.SetDefault("pacing.between_entities", d.Pacing.BetweenEntities)

	th := d.Thresholds
	v.SetDefault("thresholds.high_energy_max_popularity", th.HighEnergyMaxPopularity)
	v.SetDefault("thresholds.high_energy_min_energy", th.HighEnergyMinEnergy)
	v.SetDefault("thresholds.danceable_max_popularity", th.DanceableMaxPopularity)
	v.SetDefault("thresholds.danceable_min_danceability", th.DanceableMinDanceability)
	v.SetDefault("thresholds.balanced_max_popularity", th.BalancedMaxPopularity)
	v.SetDefault("thresholds.balanced_min_energy", th.BalancedMinEnergy)
	v.SetDefault("thresholds.balanced_min_danceability", th.BalancedMinDanceability)
	v.SetDefault("thresholds.energy_weight", th.EnergyWeight)
	v.SetDefault("thresholds.danceability_weight", th.DanceabilityWeight)
	v.SetDefault("thresholds.popularity_weight", th.PopularityWeight)
	v.SetDefault("thresholds.max_gems", th.MaxGems)
	v.SetDefault("thresholds.energy_headline", th.EnergyHeadline)
	v.SetDefault("thresholds.consistency_headline", th.ConsistencyHeadline)
	v.SetDefault("thresholds.dark_horse_max_popularity", th.DarkHorseMaxPopularity)
	v.SetDefault("thresholds.dark_horse_min_energy", th.DarkHorseMinEnergy)
	v.SetDefault("thresholds.dark_horse_min_consistency", th.DarkHorseMinConsistency)

	v.SetDefault("genres.targets", d.Lineups.TargetGenres)
	v.SetDefault("genres.default_count", d.Lineups.DefaultGenreCount)
	v.SetDefault("genres.underground_candidates", d.Lineups.UndergroundCandidates)
	v.SetDefault("genres.mainstream", d.Lineups.MainstreamGenres)
	v.SetDefault("genres.underground", d.Lineups.UndergroundGenres)
	v.SetDefault("artists.breakbeat", d.Lineups.BreakbeatArtists)
	v.SetDefault("artists.underground", d.Lineups.UndergroundArtists)
	v.SetDefault("artists.mainstream", d.Lineups.MainstreamArtists)
}

// BindEnv enables SOUNDMETRICS_* overrides and the legacy variable names.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	// The legacy backoff variable is in milliseconds, not a duration string.
	if raw := os.Getenv("SPOTIFY_RETRY_BACKOFF_MS"); raw != "" && os.Getenv(EnvPrefix+"_SPOTIFY_RETRY_BACKOFF") == "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: SPOTIFY_RETRY_BACKOFF_MS: %w", err)
		}
		v.SetDefault("spotify.retry_backoff", time.Duration(ms)*time.Millisecond)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ErrInvalid marks a configuration that fails validation.
var ErrInvalid = errors.New("config: invalid")

// Validate rejects non-positive limits and negative pacing.
func (c Config) Validate() error {
	var errs []error
	positive := map[string]int{
		"limits.max_playlists":                  c.Limits.MaxPlaylists,
		"limits.max_tracks_per_playlist":        c.Limits.MaxTracksPerPlaylist,
		"limits.max_total_tracks":               c.Limits.MaxTotalTracks,
		"limits.max_audio_features_per_request": c.Limits.MaxFeaturesPerRequest,
		"limits.max_top_tracks":                 c.Limits.MaxTopTracks,
		"limits.genre_top_tracks":               c.Limits.GenreTopTracks,
		"limits.artist_top_tracks":              c.Limits.ArtistTopTracks,
		"limits.album_limit":                    c.Limits.AlbumLimit,
		"limits.min_compare":                    c.Limits.MinCompare,
		"limits.max_compare":                    c.Limits.MaxCompare,
		"genres.default_count":                  c.Genres.DefaultCount,
		"snapshot_queue":                        c.SnapshotQueue,
	}
	for _, key := range sortedKeys(positive) {
		if positive[key] <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", key, positive[key]))
		}
	}
	if c.Limits.MinPlaylistTracks < 0 {
		errs = append(errs, fmt.Errorf("limits.min_playlist_tracks must not be negative, got %d", c.Limits.MinPlaylistTracks))
	}
	if c.Limits.MaxCompare < c.Limits.MinCompare {
		errs = append(errs, fmt.Errorf("limits.max_compare (%d) must be >= limits.min_compare (%d)", c.Limits.MaxCompare, c.Limits.MinCompare))
	}

	pacing := map[string]time.Duration{
		"pacing.after_search":            c.Pacing.AfterSearch,
		"pacing.between_playlists":       c.Pacing.BetweenPlaylists,
		"pacing.between_feature_batches": c.Pacing.BetweenFeatureBatches,
		"pacing.between_artist_calls":    c.Pacing.BetweenArtistCalls,
		"pacing.between_entities":        c.Pacing.BetweenEntities,
	}
	for _, key := range sortedKeys(pacing) {
		if pacing[key] < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", key, pacing[key]))
		}
	}
	if c.Spotify.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("spotify.requests_per_second must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Settings converts the analysis sections into orchestrator settings.
func (c Config) Settings() services.Settings {
	return services.Settings{
		Limits: services.Limits{
			MaxPlaylists:          c.Limits.MaxPlaylists,
			MaxTracksPerPlaylist:  c.Limits.MaxTracksPerPlaylist,
			MaxTotalTracks:        c.Limits.MaxTotalTracks,
			MaxFeaturesPerRequest: c.Limits.MaxFeaturesPerRequest,
			MinPlaylistTracks:     c.Limits.MinPlaylistTracks,
			MaxTopTracks:          c.Limits.MaxTopTracks,
			GenreTopTracks:        c.Limits.GenreTopTracks,
			ArtistTopTracks:       c.Limits.ArtistTopTracks,
			AlbumType:             c.Limits.AlbumType,
			AlbumLimit:            c.Limits.AlbumLimit,
			MinCompare:            c.Limits.MinCompare,
			MaxCompare:            c.Limits.MaxCompare,
		},
		Pacing: services.Pacing{
			AfterSearch:           c.Pacing.AfterSearch,
			BetweenPlaylists:      c.Pacing.BetweenPlaylists,
			BetweenFeatureBatches: c.Pacing.BetweenFeatureBatches,
			BetweenArtistCalls:    c.Pacing.BetweenArtistCalls,
			BetweenEntities:       c.Pacing.BetweenEntities,
		},
		Thresholds: services.Thresholds(c.Thresholds),
		Lineups: services.Lineups{
			TargetGenres:          c.Genres.Targets,
			DefaultGenreCount:     c.Genres.DefaultCount,
			UndergroundCandidates: c.Genres.UndergroundCandidates,
			MainstreamGenres:      c.Genres.Mainstream,
			UndergroundGenres:     c.Genres.Underground,
			BreakbeatArtists:      c.Artists.Breakbeat,
			UndergroundArtists:    c.Artists.Underground,
			MainstreamArtists:     c.Artists.Mainstream,
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
