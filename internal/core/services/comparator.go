package services

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

// consistent is implemented by entities that carry a consistency score.
type consistent interface {
	Consistency() (float64, bool)
}

// Comparator ranks entities, classifies underground genres and writes insights.
type Comparator struct {
	th     Thresholds
	limits Limits
}

// NewComparator constructs a Comparator.
func NewComparator(th Thresholds, limits Limits) *Comparator {
	return &Comparator{th: th, limits: limits}
}

// ValidateCount enforces the [MinCompare, MaxCompare] entity window.
func (c *Comparator) ValidateCount(n int) error {
	if n < c.limits.MinCompare {
		return domain.InsufficientInputError{Got: n, Min: c.limits.MinCompare}
	}
	if n > c.limits.MaxCompare {
		return domain.TooManyInputsError{Got: n, Max: c.limits.MaxCompare}
	}
	return nil
}

// Compare ranks entities on every metric of kind. Ties keep input order.
func (c *Comparator) Compare(kind domain.EntityKind, entities []domain.Entity) (domain.ComparisonResult, error) {
	if err := c.ValidateCount(len(entities)); err != nil {
		return domain.ComparisonResult{}, err
	}

	metrics := domain.ArtistMetricSet
	if kind == domain.KindGenre {
		metrics = domain.GenreMetricSet
	}

	res := domain.ComparisonResult{
		Kind:     kind,
		Entities: make([]string, 0, len(entities)),
		Rankings: make(map[domain.MetricKey][]domain.RankEntry, len(metrics)),
		Winners:  make(map[domain.MetricKey]domain.Winner, len(metrics)),
	}
	for _, e := range entities {
		res.Entities = append(res.Entities, e.Name)
	}

	for _, m := range metrics {
		ranking := rank(entities, m.Key)
		if len(ranking) == 0 {
			continue
		}
		res.Rankings[m.Key] = ranking
		v := ranking[0].Value
		if !m.Integer {
			v = domain.Round(v, 2)
		}
		res.Winners[m.Key] = domain.Winner{Name: ranking[0].Name, Value: v}
	}

	if kind == domain.KindGenre {
		res.UndergroundGems = c.UndergroundGems(entities)
	}
	res.Insights = c.insights(kind, entities, res.Winners)
	return res, nil
}

func rank(entities []domain.Entity, key domain.MetricKey) []domain.RankEntry {
	entries := make([]domain.RankEntry, 0, len(entities))
	for _, e := range entities {
		if v, ok := e.Metrics.MetricValue(key); ok {
			entries = append(entries, domain.RankEntry{Name: e.Name, Value: v})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// UndergroundGems classifies genre entities and returns the top scorers.
func (c *Comparator) UndergroundGems(entities []domain.Entity) []domain.UndergroundGem {
	var gems []domain.UndergroundGem
	for _, e := range entities {
		pop, ok1 := e.Metrics.MetricValue(domain.MetricAvgPopularity)
		energy, ok2 := e.Metrics.MetricValue(domain.MetricAvgEnergy)
		dance, ok3 := e.Metrics.MetricValue(domain.MetricAvgDanceability)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		reason, ok := c.undergroundReason(pop, energy, dance)
		if !ok {
			continue
		}
		gems = append(gems, domain.UndergroundGem{
			Genre:        e.Name,
			Reason:       reason,
			Score:        domain.Round(c.th.EnergyWeight*energy+c.th.DanceabilityWeight*dance-c.th.PopularityWeight*(pop/100), 3),
			Popularity:   pop,
			Energy:       energy,
			Danceability: dance,
			Estimated:    e.Metrics.FeaturesEstimated(),
		})
	}
	sort.SliceStable(gems, func(i, j int) bool { return gems[i].Score > gems[j].Score })
	if len(gems) > c.th.MaxGems {
		gems = gems[:c.th.MaxGems]
	}
	return gems
}

func (c *Comparator) undergroundReason(pop, energy, dance float64) (string, bool) {
	switch {
	case pop < c.th.HighEnergyMaxPopularity && energy > c.th.HighEnergyMinEnergy:
		return fmt.Sprintf("High energy (%.2f) with low mainstream popularity (%.1f)", energy, pop), true
	case pop < c.th.DanceableMaxPopularity && dance > c.th.DanceableMinDanceability:
		return fmt.Sprintf("Very danceable (%.2f) yet barely mainstream (%.1f popularity)", dance, pop), true
	case pop < c.th.BalancedMaxPopularity && energy > c.th.BalancedMinEnergy && dance > c.th.BalancedMinDanceability:
		return fmt.Sprintf("Balanced energy (%.2f) and danceability (%.2f) under the radar", energy, dance), true
	}
	return "", false
}

func (c *Comparator) insights(kind domain.EntityKind, entities []domain.Entity, winners map[domain.MetricKey]domain.Winner) []string {
	insights := []string{}

	popKey := domain.MetricAvgPopularity
	if kind == domain.KindArtist {
		popKey = domain.MetricPopularity
	}
	if w, ok := winners[popKey]; ok {
		insights = append(insights, fmt.Sprintf("🏆 %s leads in popularity with %s points", w.Name, formatValue(w.Value)))
	}

	if kind == domain.KindArtist {
		if w, ok := winners[domain.MetricFollowers]; ok {
			insights = append(insights, fmt.Sprintf("👥 %s has the largest audience with %s followers", w.Name, FormatCount(int(w.Value))))
		}
	}

	if w, ok := winners[domain.MetricAvgEnergy]; ok && w.Value > c.th.EnergyHeadline {
		line := fmt.Sprintf("⚡ %s is the most energetic (%.2f)", w.Name, w.Value)
		if estimated(entities, w.Name) {
			line = fmt.Sprintf("⚡ %s is the most energetic (%.2f, estimated)", w.Name, w.Value)
		}
		insights = append(insights, line)
	}

	if kind != domain.KindArtist {
		return insights
	}

	for _, e := range entities {
		pop, _ := e.Metrics.MetricValue(domain.MetricPopularity)
		energy, ok := e.Metrics.MetricValue(domain.MetricAvgEnergy)
		score, hasScore := consistencyOf(e)
		if ok && hasScore && pop < c.th.DarkHorseMaxPopularity && energy > c.th.DarkHorseMinEnergy && score > c.th.DarkHorseMinConsistency {
			insights = append(insights, fmt.Sprintf("🐎 %s is a dark horse: high energy and consistent despite lower popularity", e.Name))
		}
	}

	var best *domain.Entity
	bestScore := -1.0
	for i := range entities {
		if score, ok := consistencyOf(entities[i]); ok && score > bestScore {
			best, bestScore = &entities[i], score
		}
	}
	if best != nil && bestScore > c.th.ConsistencyHeadline {
		insights = append(insights, fmt.Sprintf("🎯 %s is the most consistent (%.2f)", best.Name, bestScore))
	}
	return insights
}

func consistencyOf(e domain.Entity) (float64, bool) {
	if cs, ok := e.Metrics.(consistent); ok {
		return cs.Consistency()
	}
	return 0, false
}

func estimated(entities []domain.Entity, name string) bool {
	for _, e := range entities {
		if e.Name == name {
			return e.Metrics.FeaturesEstimated()
		}
	}
	return false
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatCount renders n with a K or M suffix and one decimal.
func FormatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return strconv.Itoa(n)
}
