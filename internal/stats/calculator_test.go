package stats

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/puckline/internal/models"
)

var baseDate = time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)

func match(day, team, opp int) models.GameResult {
	return models.GameResult{
		GameID:         fmt.Sprintf("g%d", day),
		Date:           baseDate.AddDate(0, 0, day),
		Opponent:       "Opponent",
		OpponentAbbrev: "OPP",
		IsHome:         true,
		TeamScore:      team,
		OpponentScore:  opp,
	}
}

func TestWeightMostRecentIsOne(t *testing.T) {
	assert.Equal(t, 1.0, Weight(9, 10, DefaultDecay))
	for i := 0; i < 9; i++ {
		assert.Less(t, Weight(i, 10, DefaultDecay), Weight(i+1, 10, DefaultDecay))
	}
}

func TestPercentagesEmpty(t *testing.T) {
	simple, weighted := Percentages(nil, func(models.GameResult) bool { return true }, DefaultDecay)
	assert.Equal(t, 0.0, simple)
	assert.Equal(t, 0.0, weighted)
}

func TestPercentagesWeightsRecentMatches(t *testing.T) {
	// input deliberately out of order; only the latest match meets the condition
	matches := []models.GameResult{match(3, 5, 1), match(1, 0, 1), match(2, 1, 1)}
	simple, weighted := Percentages(matches, func(g models.GameResult) bool { return g.TeamScore >= 3 }, DefaultDecay)

	assert.Equal(t, 33.3, simple)
	assert.Equal(t, 36.7, weighted)
}

func TestBucketsScenarioTenHomeMatches(t *testing.T) {
	scores := []int{3, 1, 4, 2, 3, 5, 0, 3, 2, 6}
	var matches []models.GameResult
	for i, s := range scores {
		matches = append(matches, match(i, s, 2))
	}

	buckets := Buckets(matches, ScoredGoals, IndividualThresholds, DefaultDecay)
	require.Len(t, buckets, len(IndividualThresholds))

	three := buckets[1]
	assert.Equal(t, 3, three.Threshold)
	assert.Equal(t, 6, three.Count)
	assert.Equal(t, 60.0, three.Percentage)
	assert.Len(t, three.Matches, 6)
}

func TestBucketsEmptySample(t *testing.T) {
	for _, b := range Buckets(nil, TotalGoals, MatchTotalThresholds, DefaultDecay) {
		assert.Equal(t, 0, b.Count)
		assert.Equal(t, 0.0, b.Percentage)
		assert.Equal(t, 0.0, b.WeightedPercentage)
		assert.Empty(t, b.Matches)
	}
}

func TestBucketsMetrics(t *testing.T) {
	matches := []models.GameResult{match(0, 1, 4), match(1, 2, 5)}

	conceded := Buckets(matches, ConcededGoals, []int{5}, DefaultDecay)
	assert.Equal(t, 1, conceded[0].Count)

	totals := Buckets(matches, TotalGoals, []int{5, 7}, DefaultDecay)
	assert.Equal(t, 2, totals[0].Count)
	assert.Equal(t, 1, totals[1].Count)
}

func TestBucketPropertiesOnRandomSamples(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(30)
		var matches []models.GameResult
		for i := 0; i < n; i++ {
			matches = append(matches, match(rng.Intn(200), rng.Intn(8), rng.Intn(8)))
		}

		for _, metric := range []Metric{ScoredGoals, ConcededGoals, TotalGoals} {
			buckets := Buckets(matches, metric, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, DefaultDecay)
			for i, b := range buckets {
				assert.GreaterOrEqual(t, b.Percentage, 0.0)
				assert.LessOrEqual(t, b.Percentage, 100.0)
				assert.GreaterOrEqual(t, b.WeightedPercentage, 0.0)
				assert.LessOrEqual(t, b.WeightedPercentage, 100.0)
				if i > 0 {
					assert.LessOrEqual(t, b.Count, buckets[i-1].Count, "count must not grow with threshold")
				}
			}
			assert.Equal(t, 100.0, buckets[0].Percentage)
		}
	}
}

func TestCalculatorTeamStatsSplitsIndependently(t *testing.T) {
	home := []models.GameResult{match(0, 4, 1), match(1, 3, 3), match(2, 2, 4)}
	away := []models.GameResult{match(0, 0, 2)}

	ts := NewCalculator(0).TeamStats(home, away)

	assert.Equal(t, 3, ts.Home.TotalMatches)
	assert.Equal(t, 1, ts.Away.TotalMatches)
	assert.Equal(t, 2, ts.Home.IndividualTotals[3].Count)
	assert.Equal(t, 0, ts.Away.IndividualTotals[2].Count)
	assert.Equal(t, 1, ts.Home.IndividualConceded[4].Count)
	assert.Equal(t, 3, ts.Home.MatchTotals[5].Count)
	assert.Len(t, ts.Home.MatchTotals, len(MatchTotalThresholds))
	assert.Equal(t, ts.Away, ts.Split(models.SplitAway))
}

func TestPercentagesDoesNotReorderInput(t *testing.T) {
	matches := []models.GameResult{match(5, 1, 1), match(1, 1, 1)}
	Percentages(matches, func(models.GameResult) bool { return true }, DefaultDecay)
	assert.Equal(t, "g5", matches[0].GameID)
}
