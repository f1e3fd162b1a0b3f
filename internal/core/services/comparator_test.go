package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

func genreEntity(name string, pop, energy, dance float64) domain.Entity {
	return domain.Entity{Name: name, Metrics: domain.GenreMetrics{Genre: name, AvgPopularity: pop, AvgEnergy: energy, AvgDanceability: dance}}
}

func artistEntity(name string, pop, followers int, energy float64, consistency *float64) domain.Entity {
	p := domain.ArtistProfile{Name: name, Popularity: pop, Followers: followers, TracksAnalyzed: 5, AvgTrackPopularity: float64(pop), ConsistencyScore: consistency}
	if consistency != nil {
		p.AudioFeatures = &domain.FeatureMeans{Energy: energy, Danceability: 0.5}
	}
	return domain.Entity{Name: name, Metrics: p}
}

func ptr(v float64) *float64 { return &v }

func TestComparator_GenreScenario(t *testing.T) {
	c := NewComparator(DefaultThresholds(), DefaultLimits())
	got, err := c.Compare(domain.KindGenre, []domain.Entity{
		genreEntity("breakbeat", 40, 0.8, 0.7),
		genreEntity("pop", 70, 0.6, 0.65),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w := got.Winners[domain.MetricAvgPopularity]; w.Name != "pop" || w.Value != 70 {
		t.Errorf("popularity winner: got %+v", w)
	}
	if w := got.Winners[domain.MetricAvgEnergy]; w.Name != "breakbeat" || w.Value != 0.8 {
		t.Errorf("energy winner: got %+v", w)
	}
	if len(got.UndergroundGems) != 1 || got.UndergroundGems[0].Genre != "breakbeat" {
		t.Fatalf("expected breakbeat as the only gem, got %+v", got.UndergroundGems)
	}
	gem := got.UndergroundGems[0]
	if !strings.Contains(gem.Reason, "energy") || !strings.Contains(gem.Reason, "popularity") {
		t.Errorf("reason should cite energy and popularity: %q", gem.Reason)
	}
	if !floatEquals(gem.Score, 0.53, 1e-9) {
		t.Errorf("expected score 0.53, got %v", gem.Score)
	}
	if len(got.Insights) != 2 {
		t.Fatalf("expected popularity and energy insights, got %v", got.Insights)
	}
	if !strings.Contains(got.Insights[0], "pop leads in popularity with 70") {
		t.Errorf("unexpected headline %q", got.Insights[0])
	}
	if !strings.Contains(got.Insights[1], "breakbeat") {
		t.Errorf("unexpected energy insight %q", got.Insights[1])
	}
}

func TestComparator_UndergroundBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		pop   float64
		en    float64
		dance float64
		want  bool
	}{
		{"popularity 49 energy 0.66 qualifies", 49, 0.66, 0.1, true},
		{"popularity 50 energy 0.66 does not", 50, 0.66, 0.1, false},
		{"energy exactly at threshold does not", 30, 0.65, 0.1, false},
		{"danceable and obscure qualifies", 34, 0.2, 0.61, true},
		{"danceable at popularity 35 does not", 35, 0.2, 0.61, false},
		{"balanced combination qualifies", 39, 0.61, 0.66, true},
		{"balanced at popularity 40 does not", 40, 0.61, 0.66, false},
	}
	c := NewComparator(DefaultThresholds(), DefaultLimits())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gems := c.UndergroundGems([]domain.Entity{genreEntity("g", tc.pop, tc.en, tc.dance)})
			if got := len(gems) == 1; got != tc.want {
				t.Fatalf("expected underground=%v, got %+v", tc.want, gems)
			}
		})
	}
}

func TestComparator_GemsSortedAndCapped(t *testing.T) {
	th := DefaultThresholds()
	th.MaxGems = 2
	c := NewComparator(th, DefaultLimits())
	gems := c.UndergroundGems([]domain.Entity{
		genreEntity("low", 45, 0.66, 0.1),
		genreEntity("high", 20, 0.95, 0.9),
		genreEntity("mid", 30, 0.8, 0.5),
	})
	if len(gems) != 2 || gems[0].Genre != "high" || gems[1].Genre != "mid" {
		t.Fatalf("unexpected gems %+v", gems)
	}
}

func TestComparator_ThresholdsOverridable(t *testing.T) {
	th := DefaultThresholds()
	th.HighEnergyMaxPopularity = 80
	c := NewComparator(th, DefaultLimits())
	if gems := c.UndergroundGems([]domain.Entity{genreEntity("pop", 70, 0.7, 0.1)}); len(gems) != 1 {
		t.Fatalf("expected override to classify pop, got %+v", gems)
	}
}

func TestComparator_StableTies(t *testing.T) {
	c := NewComparator(DefaultThresholds(), DefaultLimits())
	got, err := c.Compare(domain.KindGenre, []domain.Entity{
		genreEntity("c", 50, 0.5, 0.5),
		genreEntity("a", 50, 0.5, 0.5),
		genreEntity("b", 60, 0.5, 0.5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ranking := got.Rankings[domain.MetricAvgPopularity]
	order := []string{ranking[0].Name, ranking[1].Name, ranking[2].Name}
	if strings.Join(order, ",") != "b,c,a" {
		t.Fatalf("expected b,c,a got %v", order)
	}
	for i, r := range ranking {
		if r.Rank != i+1 {
			t.Errorf("rank %d mislabeled as %d", i+1, r.Rank)
		}
	}
	energy := got.Rankings[domain.MetricAvgEnergy]
	if energy[0].Name != "c" || energy[1].Name != "a" || energy[2].Name != "b" {
		t.Fatalf("full tie should keep input order, got %+v", energy)
	}
}

func TestComparator_EntityCount(t *testing.T) {
	c := NewComparator(DefaultThresholds(), DefaultLimits())
	tests := []struct {
		name    string
		count   int
		wantErr any
	}{
		{"one entity", 1, domain.InsufficientInputError{}},
		{"six entities", 6, domain.TooManyInputsError{}},
		{"five entities", 5, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entities := make([]domain.Entity, tc.count)
			for i := range entities {
				entities[i] = genreEntity(string(rune('a'+i)), 10, 0.1, 0.1)
			}
			_, err := c.Compare(domain.KindGenre, entities)
			switch tc.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			case domain.InsufficientInputError:
				var target domain.InsufficientInputError
				if !errors.As(err, &target) || target.Got != 1 {
					t.Fatalf("expected InsufficientInputError, got %v", err)
				}
			case domain.TooManyInputsError:
				var target domain.TooManyInputsError
				if !errors.As(err, &target) || target.Got != 6 {
					t.Fatalf("expected TooManyInputsError, got %v", err)
				}
			}
			if err != nil && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestComparator_ArtistInsights(t *testing.T) {
	c := NewComparator(DefaultThresholds(), DefaultLimits())
	got, err := c.Compare(domain.KindArtist, []domain.Entity{
		artistEntity("Star", 90, 2_500_000, 0.65, ptr(0.75)),
		artistEntity("Horse", 40, 12_300, 0.9, ptr(0.92)),
		artistEntity("Quiet", 30, 800, 0, nil),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"Star leads in popularity with 90",
		"Star has the largest audience with 2.5M followers",
		"Horse is the most energetic (0.90)",
		"Horse is a dark horse",
		"Horse is the most consistent (0.92)",
	}
	if len(got.Insights) != len(want) {
		t.Fatalf("expected %d insights, got %v", len(want), got.Insights)
	}
	for i, w := range want {
		if !strings.Contains(got.Insights[i], w) {
			t.Errorf("insight %d: expected %q in %q", i, w, got.Insights[i])
		}
	}

	if n := len(got.Rankings[domain.MetricAvgEnergy]); n != 2 {
		t.Errorf("artist without features should be excluded from energy ranking, got %d entries", n)
	}
	if n := len(got.Rankings[domain.MetricFollowers]); n != 3 {
		t.Errorf("followers ranking should include every artist, got %d", n)
	}
	if w := got.Winners[domain.MetricFollowers]; w.Value != 2_500_000 {
		t.Errorf("integer winner value should be exact, got %v", w.Value)
	}
	if len(got.UndergroundGems) != 0 {
		t.Errorf("artist comparisons never classify gems, got %+v", got.UndergroundGems)
	}
}

func TestComparator_EstimatedEnergyWording(t *testing.T) {
	c := NewComparator(DefaultThresholds(), DefaultLimits())
	est := domain.GenreMetrics{Genre: "dnb", AvgPopularity: 30, AvgEnergy: 0.9, AvgDanceability: 0.5, Estimated: true}
	got, err := c.Compare(domain.KindGenre, []domain.Entity{
		{Name: "dnb", Metrics: est},
		genreEntity("pop", 70, 0.6, 0.6),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got.Insights[1], "estimated") {
		t.Fatalf("expected estimated wording, got %q", got.Insights[1])
	}
	if !got.UndergroundGems[0].Estimated {
		t.Fatal("gem should carry provenance")
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{999, "999"},
		{1000, "1.0K"},
		{12_345, "12.3K"},
		{1_000_000, "1.0M"},
		{2_540_000, "2.5M"},
	}
	for _, tc := range tests {
		if got := FormatCount(tc.in); got != tc.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
