package services

import (
	"math"
	"sort"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

// AggregateGenre computes GenreMetrics from a sample and its resolved
// features. It is a pure function. An empty sample or feature set yields
// zeroed means.
func AggregateGenre(genre string, sample Sample, res Resolution, topN int) domain.GenreMetrics {
	m := domain.GenreMetrics{
		Genre:            genre,
		TracksAnalyzed:   len(sample.Tracks),
		PlaylistPresence: sample.PlaylistCount,
		Estimated:        res.Estimated,
		TopTracks:        []domain.TopTrack{},
	}
	if len(sample.Tracks) == 0 || len(res.Features) == 0 {
		m.TracksAnalyzed = 0
		return m
	}

	pops := pluck(sample.Tracks, func(t domain.TrackSample) float64 { return float64(t.Popularity) })
	m.AvgPopularity = domain.Round(mean(pops), 2)

	fs := clamped(res.Features)
	m.AvgEnergy = domain.Round(mean(pluck(fs, func(f domain.AudioFeatures) float64 { return f.Energy })), 3)
	m.AvgDanceability = domain.Round(mean(pluck(fs, func(f domain.AudioFeatures) float64 { return f.Danceability })), 3)
	m.AvgValence = domain.Round(mean(pluck(fs, func(f domain.AudioFeatures) float64 { return f.Valence })), 3)
	m.AvgTempo = domain.Round(mean(pluck(fs, func(f domain.AudioFeatures) float64 { return f.Tempo })), 1)
	m.AvgAcousticness = domain.Round(mean(pluck(fs, func(f domain.AudioFeatures) float64 { return f.Acousticness })), 3)
	m.AvgInstrumentalness = domain.Round(mean(pluck(fs, func(f domain.AudioFeatures) float64 { return f.Instrumentalness })), 3)

	if res.Estimated {
		m.Note = "Audio features estimated from the genre profile; the catalog withheld measured features."
	} else {
		std := domain.Round(stddev(pops), 2)
		m.PopularityStd = &std
		lo, hi := minMax(pluck(fs, func(f domain.AudioFeatures) float64 { return f.Energy }))
		m.EnergyRange = &domain.Range{domain.Round(lo, 3), domain.Round(hi, 3)}
		lo, hi = minMax(pluck(fs, func(f domain.AudioFeatures) float64 { return f.Tempo }))
		m.TempoRange = &domain.Range{domain.Round(lo, 1), domain.Round(hi, 1)}
	}

	for _, t := range topTracks(sample.Tracks, topN) {
		m.TopTracks = append(m.TopTracks, domain.TopTrack{Name: t.Name, Artist: t.Artist, Popularity: t.Popularity})
	}
	return m
}

// topTracks returns up to n tracks by popularity descending, stable on ties.
func topTracks(tracks []domain.TrackSample, n int) []domain.TrackSample {
	sorted := make([]domain.TrackSample, len(tracks))
	copy(sorted, tracks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Popularity > sorted[j].Popularity })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TopArtistScores sums popularity per artist over tracks and keeps the top n.
func TopArtistScores(tracks []domain.TrackSample, n int) []domain.ArtistScore {
	totals := make(map[string]int)
	var order []string
	for _, t := range tracks {
		if _, ok := totals[t.Artist]; !ok {
			order = append(order, t.Artist)
		}
		totals[t.Artist] += t.Popularity
	}
	scores := make([]domain.ArtistScore, 0, len(order))
	for _, name := range order {
		scores = append(scores, domain.ArtistScore{Name: name, Score: totals[name]})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if len(scores) > n {
		scores = scores[:n]
	}
	return scores
}

// ArtistAggregate holds the track-derived fields of an ArtistProfile.
type ArtistAggregate struct {
	TracksAnalyzed     int
	AvgTrackPopularity float64
	TopTrackPopularity int
	Features           *domain.FeatureMeans
	Consistency        *float64
}

// AggregateArtist computes the track-derived fields of an artist profile.
// Consistency is only reported when at least one feature set is present.
func AggregateArtist(tracks []domain.TrackStub, features []domain.AudioFeatures) ArtistAggregate {
	agg := ArtistAggregate{TracksAnalyzed: len(tracks)}
	if len(tracks) == 0 {
		return agg
	}
	pops := pluck(tracks, func(t domain.TrackStub) float64 { return float64(t.Popularity) })
	agg.AvgTrackPopularity = domain.Round(mean(pops), 2)
	_, hi := minMax(pops)
	agg.TopTrackPopularity = int(hi)

	if len(features) == 0 {
		return agg
	}
	features = clamped(features)
	agg.Features = &domain.FeatureMeans{
		Energy:           domain.Round(mean(pluck(features, func(f domain.AudioFeatures) float64 { return f.Energy })), 3),
		Danceability:     domain.Round(mean(pluck(features, func(f domain.AudioFeatures) float64 { return f.Danceability })), 3),
		Valence:          domain.Round(mean(pluck(features, func(f domain.AudioFeatures) float64 { return f.Valence })), 3),
		Tempo:            domain.Round(mean(pluck(features, func(f domain.AudioFeatures) float64 { return f.Tempo })), 1),
		Acousticness:     domain.Round(mean(pluck(features, func(f domain.AudioFeatures) float64 { return f.Acousticness })), 3),
		Instrumentalness: domain.Round(mean(pluck(features, func(f domain.AudioFeatures) float64 { return f.Instrumentalness })), 3),
	}
	c := consistency(pops)
	agg.Consistency = &c
	return agg
}

// clamped returns a copy of fs bounded to the descriptor ranges.
func clamped(fs []domain.AudioFeatures) []domain.AudioFeatures {
	out := make([]domain.AudioFeatures, len(fs))
	for i, f := range fs {
		out[i] = f.Clamp()
	}
	return out
}

// consistency is 1 minus the coefficient of variation, clamped to [0,1].
func consistency(pops []float64) float64 {
	m := mean(pops)
	if m == 0 {
		return 0
	}
	c := 1 - stddev(pops)/m
	return domain.Round(math.Max(0, math.Min(1, c)), 3)
}
