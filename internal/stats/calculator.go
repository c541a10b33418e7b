// Package stats turns a team's match history into threshold probabilities
// with exponential recency weighting.
package stats

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yourusername/puckline/internal/models"
)

// DefaultDecay is the exponential decay applied per match of age
const DefaultDecay = 0.1

// Threshold sets per metric
var (
	IndividualThresholds = []int{2, 3, 4, 5, 6}
	ConcededThresholds   = []int{2, 3, 4, 5, 6}
	MatchTotalThresholds = []int{5, 6, 7, 8}
)

// Metric selects which score a threshold is compared against
type Metric int

const (
	ScoredGoals Metric = iota
	ConcededGoals
	TotalGoals
)

// Value extracts the metric from a match
func (m Metric) Value(g models.GameResult) int {
	switch m {
	case ConcededGoals:
		return g.OpponentScore
	case TotalGoals:
		return g.TotalGoals()
	default:
		return g.TeamScore
	}
}

// ThresholdBucket holds how often a metric reached Threshold
type ThresholdBucket struct {
	Threshold          int                 `json:"threshold"`
	Count              int                 `json:"count"`
	Percentage         float64             `json:"percentage"`
	WeightedPercentage float64             `json:"weighted_percentage"`
	Matches            []models.GameResult `json:"matches"`
}

// SplitStats is every bucket for one home/away split
type SplitStats struct {
	TotalMatches       int                     `json:"total_matches"`
	IndividualTotals   map[int]ThresholdBucket `json:"individual_totals"`
	IndividualConceded map[int]ThresholdBucket `json:"individual_conceded"`
	MatchTotals        map[int]ThresholdBucket `json:"match_totals"`
}

// TeamStats is a team's stats for both splits
type TeamStats struct {
	Home SplitStats `json:"home"`
	Away SplitStats `json:"away"`
}

// Split returns the stats of the requested split
func (ts *TeamStats) Split(s models.Split) SplitStats {
	if s == models.SplitAway {
		return ts.Away
	}
	return ts.Home
}

// Weight returns exp(-decay * (total - i - 1)); the last match weighs 1.
func Weight(i, total int, decay float64) float64 {
	return math.Exp(-decay * float64(total-i-1))
}

// Percentages returns the simple and recency-weighted share of matches meeting cond,
// both on a 0-100 scale rounded to one decimal.
func Percentages(matches []models.GameResult, cond func(models.GameResult) bool, decay float64) (simple, weighted float64) {
	if len(matches) == 0 {
		return 0, 0
	}

	sorted := sortByDate(matches)
	total := len(sorted)
	hits := 0
	var weightedHits, totalWeight float64

	for i, m := range sorted {
		w := Weight(i, total, decay)
		totalWeight += w
		if cond(m) {
			hits++
			weightedHits += w
		}
	}

	simple = round1(100 * float64(hits) / float64(total))
	if totalWeight > 0 {
		weighted = round1(100 * weightedHits / totalWeight)
	}
	return simple, weighted
}

// Buckets computes one bucket per threshold for metric
func Buckets(matches []models.GameResult, metric Metric, thresholds []int, decay float64) []ThresholdBucket {
	buckets := make([]ThresholdBucket, 0, len(thresholds))
	sorted := sortByDate(matches)

	for _, t := range thresholds {
		threshold := t
		cond := func(g models.GameResult) bool { return metric.Value(g) >= threshold }

		var hit []models.GameResult
		for _, m := range sorted {
			if cond(m) {
				hit = append(hit, m)
			}
		}

		simple, weighted := Percentages(sorted, cond, decay)
		buckets = append(buckets, ThresholdBucket{
			Threshold:          threshold,
			Count:              len(hit),
			Percentage:         simple,
			WeightedPercentage: weighted,
			Matches:            hit,
		})
	}
	return buckets
}

// Calculator builds TeamStats with a fixed decay
type Calculator struct {
	Decay float64
}

// NewCalculator returns a calculator; a non-positive decay falls back to DefaultDecay
func NewCalculator(decay float64) *Calculator {
	if decay <= 0 {
		decay = DefaultDecay
	}
	return &Calculator{Decay: decay}
}

// SplitStats computes every bucket for one list of matches
func (c *Calculator) SplitStats(matches []models.GameResult) SplitStats {
	return SplitStats{
		TotalMatches:       len(matches),
		IndividualTotals:   toMap(Buckets(matches, ScoredGoals, IndividualThresholds, c.Decay)),
		IndividualConceded: toMap(Buckets(matches, ConcededGoals, ConcededThresholds, c.Decay)),
		MatchTotals:        toMap(Buckets(matches, TotalGoals, MatchTotalThresholds, c.Decay)),
	}
}

// TeamStats computes both splits independently
func (c *Calculator) TeamStats(home, away []models.GameResult) TeamStats {
	return TeamStats{
		Home: c.SplitStats(home),
		Away: c.SplitStats(away),
	}
}

func toMap(buckets []ThresholdBucket) map[int]ThresholdBucket {
	m := make(map[int]ThresholdBucket, len(buckets))
	for _, b := range buckets {
		m[b.Threshold] = b
	}
	return m
}

// sortByDate returns an ascending copy; the input is never reordered
func sortByDate(matches []models.GameResult) []models.GameResult {
	sorted := make([]models.GameResult, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
