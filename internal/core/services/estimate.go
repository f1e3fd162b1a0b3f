package services

import (
	"math"
	"strings"
	"sync"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

// RandomSource yields uniform values in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// genreProfiles are the base descriptors used when measured features are withheld.
var genreProfiles = map[string]domain.AudioFeatures{
	"breakbeat":     {Energy: 0.82, Danceability: 0.68, Valence: 0.45, Tempo: 135, Acousticness: 0.05, Instrumentalness: 0.55},
	"drum-and-bass": {Energy: 0.88, Danceability: 0.58, Valence: 0.38, Tempo: 174, Acousticness: 0.03, Instrumentalness: 0.45},
	"dubstep":       {Energy: 0.86, Danceability: 0.55, Valence: 0.30, Tempo: 140, Acousticness: 0.04, Instrumentalness: 0.40},
	"techno":        {Energy: 0.80, Danceability: 0.72, Valence: 0.28, Tempo: 130, Acousticness: 0.04, Instrumentalness: 0.78},
	"house":         {Energy: 0.74, Danceability: 0.80, Valence: 0.55, Tempo: 124, Acousticness: 0.06, Instrumentalness: 0.50},
	"electronic":    {Energy: 0.72, Danceability: 0.66, Valence: 0.42, Tempo: 126, Acousticness: 0.10, Instrumentalness: 0.48},
	"hardstyle":     {Energy: 0.93, Danceability: 0.52, Valence: 0.35, Tempo: 150, Acousticness: 0.02, Instrumentalness: 0.35},
	"psytrance":     {Energy: 0.90, Danceability: 0.65, Valence: 0.33, Tempo: 142, Acousticness: 0.02, Instrumentalness: 0.80},
	"darkwave":      {Energy: 0.62, Danceability: 0.58, Valence: 0.22, Tempo: 118, Acousticness: 0.12, Instrumentalness: 0.30},
	"industrial":    {Energy: 0.85, Danceability: 0.50, Valence: 0.25, Tempo: 125, Acousticness: 0.05, Instrumentalness: 0.35},
	"witch-house":   {Energy: 0.55, Danceability: 0.50, Valence: 0.18, Tempo: 100, Acousticness: 0.15, Instrumentalness: 0.45},
	"pop":           {Energy: 0.68, Danceability: 0.70, Valence: 0.58, Tempo: 118, Acousticness: 0.18, Instrumentalness: 0.02},
	"rock":          {Energy: 0.76, Danceability: 0.48, Valence: 0.50, Tempo: 124, Acousticness: 0.12, Instrumentalness: 0.06},
	"hip-hop":       {Energy: 0.66, Danceability: 0.78, Valence: 0.50, Tempo: 96, Acousticness: 0.15, Instrumentalness: 0.02},
	"indie":         {Energy: 0.60, Danceability: 0.56, Valence: 0.45, Tempo: 118, Acousticness: 0.30, Instrumentalness: 0.10},
	"country":       {Energy: 0.62, Danceability: 0.58, Valence: 0.60, Tempo: 120, Acousticness: 0.35, Instrumentalness: 0.01},
}

// defaultProfile applies to genres without a base profile.
var defaultProfile = domain.AudioFeatures{
	Energy: 0.6, Danceability: 0.6, Valence: 0.5, Tempo: 120, Acousticness: 0.2, Instrumentalness: 0.2,
}

// Noise half-widths.
const (
	ratioNoise    = 0.05
	acousticNoise = 0.03
	tempoNoise    = 5.0
)

// Estimator synthesizes a single genre-average feature set.
type Estimator struct {
	mu  sync.Mutex
	rnd RandomSource
}

// NewEstimator constructs an Estimator drawing noise from rnd.
func NewEstimator(rnd RandomSource) *Estimator {
	return &Estimator{rnd: rnd}
}

// Profile returns the base profile for genre and whether it was known.
func Profile(genre string) (domain.AudioFeatures, bool) {
	p, ok := genreProfiles[strings.ToLower(strings.TrimSpace(genre))]
	if !ok {
		return defaultProfile, false
	}
	return p, true
}

// Estimate perturbs the genre profile by popularity and playlist presence.
func (e *Estimator) Estimate(genre string, avgPopularity float64, playlistCount int) domain.AudioFeatures {
	base, _ := Profile(genre)
	popularityFactor := avgPopularity / 100
	playlistFactor := math.Min(float64(playlistCount)/10, 1)

	e.mu.Lock()
	f := domain.AudioFeatures{
		Energy:           base.Energy + popularityFactor*0.05 + e.noise(ratioNoise),
		Danceability:     base.Danceability + popularityFactor*0.08 + e.noise(ratioNoise),
		Valence:          base.Valence + popularityFactor*0.10 + e.noise(ratioNoise),
		Tempo:            base.Tempo + playlistFactor*5 + e.noise(tempoNoise),
		Acousticness:     base.Acousticness - (popularityFactor*0.05 + e.noise(acousticNoise)),
		Instrumentalness: base.Instrumentalness + e.noise(ratioNoise),
	}
	e.mu.Unlock()

	f = f.Clamp()
	f.Energy = domain.Round(f.Energy, 3)
	f.Danceability = domain.Round(f.Danceability, 3)
	f.Valence = domain.Round(f.Valence, 3)
	f.Tempo = domain.Round(f.Tempo, 1)
	f.Acousticness = domain.Round(f.Acousticness, 3)
	f.Instrumentalness = domain.Round(f.Instrumentalness, 3)
	f.Estimated = true
	return f
}

// noise returns a uniform value in [-x, x].
func (e *Estimator) noise(x float64) float64 {
	return (2*e.rnd.Float64() - 1) * x
}
