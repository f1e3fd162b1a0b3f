package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func clearEnv(t *testing.T) {
	t.Helper()
	// Clear any env vars that might interfere
	for _, k := range []string{
		"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "SPOTIFY_MAX_RETRIES",
		"SPOTIFY_RETRY_BACKOFF_MS", "DATABASE_PATH",
		"SOUNDMETRICS_DATABASE", "SOUNDMETRICS_HTTP_ADDR", "SOUNDMETRICS_SPOTIFY_CLIENT_ID",
		"SOUNDMETRICS_SPOTIFY_RETRY_BACKOFF", "SOUNDMETRICS_LIMITS_MAX_COMPARE",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	clearEnv(t)
	v := viper.New()
	SetDefaults(v)
	if err := BindEnv(v); err != nil {
		t.Fatalf("bind env: %v", err)
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Database != "./soundmetrics.db" {
		t.Errorf("Database = %q, want default", cfg.Database)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Spotify.Timeout != 10*time.Second {
		t.Errorf("Spotify.Timeout = %v, want 10s", cfg.Spotify.Timeout)
	}
	if cfg.Spotify.RetryBackoff != 500*time.Millisecond {
		t.Errorf("Spotify.RetryBackoff = %v, want 500ms", cfg.Spotify.RetryBackoff)
	}
	if cfg.Spotify.HasCredentials() {
		t.Error("HasCredentials = true, want false")
	}
	if cfg.Limits.MaxTotalTracks != 20 {
		t.Errorf("Limits.MaxTotalTracks = %d, want 20", cfg.Limits.MaxTotalTracks)
	}
	if cfg.Pacing.BetweenEntities != time.Second {
		t.Errorf("Pacing.BetweenEntities = %v, want 1s", cfg.Pacing.BetweenEntities)
	}
	if cfg.Thresholds.HighEnergyMinEnergy != 0.65 {
		t.Errorf("Thresholds.HighEnergyMinEnergy = %v, want 0.65", cfg.Thresholds.HighEnergyMinEnergy)
	}
	if len(cfg.Genres.Targets) != 10 || cfg.Genres.Targets[0] != "breakbeat" {
		t.Errorf("Genres.Targets = %v", cfg.Genres.Targets)
	}

	s := cfg.Settings()
	if s.Limits.MaxPlaylists != 8 || s.Thresholds.MaxGems != 5 || s.Lineups.DefaultGenreCount != 4 {
		t.Errorf("Settings = %+v", s)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "prefixed variables",
			env: map[string]string{
				"SOUNDMETRICS_HTTP_ADDR":          ":9090",
				"SOUNDMETRICS_LIMITS_MAX_COMPARE": "4",
			},
			check: func(t *testing.T, cfg Config) {
				if cfg.HTTP.Addr != ":9090" {
					t.Errorf("HTTP.Addr = %q, want :9090", cfg.HTTP.Addr)
				}
				if cfg.Limits.MaxCompare != 4 {
					t.Errorf("Limits.MaxCompare = %d, want 4", cfg.Limits.MaxCompare)
				}
			},
		},
		{
			name: "legacy variables",
			env: map[string]string{
				"SPOTIFY_CLIENT_ID":        "id",
				"SPOTIFY_CLIENT_SECRET":    "secret",
				"SPOTIFY_RETRY_BACKOFF_MS": "250",
				"DATABASE_PATH":            "/tmp/legacy.db",
			},
			check: func(t *testing.T, cfg Config) {
				if !cfg.Spotify.HasCredentials() {
					t.Error("HasCredentials = false, want true")
				}
				if cfg.Spotify.RetryBackoff != 250*time.Millisecond {
					t.Errorf("RetryBackoff = %v, want 250ms", cfg.Spotify.RetryBackoff)
				}
				if cfg.Database != "/tmp/legacy.db" {
					t.Errorf("Database = %q", cfg.Database)
				}
			},
		},
		{
			name: "prefixed wins over legacy",
			env: map[string]string{
				"SOUNDMETRICS_SPOTIFY_CLIENT_ID": "new",
				"SPOTIFY_CLIENT_ID":              "old",
			},
			check: func(t *testing.T, cfg Config) {
				if cfg.Spotify.ClientID != "new" {
					t.Errorf("ClientID = %q, want new", cfg.Spotify.ClientID)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, val := range tt.env {
				t.Setenv(k, val)
			}
			v := viper.New()
			SetDefaults(v)
			if err := BindEnv(v); err != nil {
				t.Fatalf("bind env: %v", err)
			}
			cfg, err := Load(v)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundmetrics.yaml")
	body := `
database: /data/history.db
pacing:
  between_entities: 2s
thresholds:
  max_gems: 3
genres:
  underground_candidates: [breakbeat, jungle]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v := newViper(t)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Database != "/data/history.db" {
		t.Errorf("Database = %q", cfg.Database)
	}
	if cfg.Pacing.BetweenEntities != 2*time.Second {
		t.Errorf("BetweenEntities = %v, want 2s", cfg.Pacing.BetweenEntities)
	}
	if cfg.Thresholds.MaxGems != 3 {
		t.Errorf("MaxGems = %d, want 3", cfg.Thresholds.MaxGems)
	}
	if len(cfg.Genres.UndergroundCandidates) != 2 || cfg.Genres.UndergroundCandidates[1] != "jungle" {
		t.Errorf("UndergroundCandidates = %v", cfg.Genres.UndergroundCandidates)
	}
	if cfg.Pacing.AfterSearch != 500*time.Millisecond {
		t.Errorf("AfterSearch = %v, want default 500ms", cfg.Pacing.AfterSearch)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "zero playlists", mutate: func(c *Config) { c.Limits.MaxPlaylists = 0 }, wantErr: true},
		{name: "max below min compare", mutate: func(c *Config) { c.Limits.MinCompare = 3; c.Limits.MaxCompare = 2 }, wantErr: true},
		{name: "negative pacing", mutate: func(c *Config) { c.Pacing.AfterSearch = -time.Second }, wantErr: true},
		{name: "zero pacing is allowed", mutate: func(c *Config) { c.Pacing = PacingConfig{} }},
	}

	base, err := Load(newViper(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}
