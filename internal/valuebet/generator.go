// Package valuebet compares threshold probabilities with an odds catalog and
// picks the single best positive-value bet for a fixture.
package valuebet

import (
	"fmt"
	"math"
	"time"

	"github.com/yourusername/puckline/internal/models"
	"github.com/yourusername/puckline/internal/stats"
)

// Defaults for the value filters
const (
	DefaultMinValue   = 50.0
	DefaultMinOdds    = 1.80
	DefaultMinMatches = 5
)

// Fixture carries the metadata copied onto an emitted prediction
type Fixture struct {
	EventID    string
	League     string
	Scheduled  time.Time
	HomeTeam   string
	HomeAbbrev string
	AwayTeam   string
	AwayAbbrev string
}

// FixtureFromGame converts a scheduled league game
func FixtureFromGame(g models.Game) Fixture {
	return Fixture{
		EventID:    g.GameID,
		League:     g.League,
		Scheduled:  g.Scheduled,
		HomeTeam:   g.HomeTeam,
		HomeAbbrev: g.HomeAbbrev,
		AwayTeam:   g.AwayTeam,
		AwayAbbrev: g.AwayAbbrev,
	}
}

// Pick is the selected candidate enriched with fixture metadata
type Pick struct {
	models.ValueBetCandidate
	Fixture
	Label string
}

// Prediction builds the pending row to persist
func (p *Pick) Prediction() *models.Prediction {
	return &models.Prediction{
		EventID:         p.EventID,
		League:          p.League,
		Scheduled:       p.Scheduled,
		HomeTeam:        p.HomeTeam,
		HomeAbbrev:      p.HomeAbbrev,
		AwayTeam:        p.AwayTeam,
		AwayAbbrev:      p.AwayAbbrev,
		BetType:         p.BetType,
		BetLabel:        p.Label,
		Line:            p.Line,
		Odds:            p.Odds,
		Probability:     p.Probability,
		FairOdds:        p.FairOdds,
		ValuePercentage: p.ValuePercentage,
	}
}

// Generator selects at most one value bet per fixture
type Generator struct {
	MinValue float64
	MinOdds  float64
}

// NewGenerator returns a generator; zero values fall back to the defaults
func NewGenerator(minValue, minOdds float64) *Generator {
	if minValue <= 0 {
		minValue = DefaultMinValue
	}
	if minOdds <= 0 {
		minOdds = DefaultMinOdds
	}
	return &Generator{MinValue: minValue, MinOdds: minOdds}
}

// ThresholdForLine maps a line to the bucket it reads: ceil(line + 0.5), so 2.5 reads 3+.
func ThresholdForLine(line float64) int {
	return int(math.Ceil(line + 0.5))
}

// FairOdds returns 1/p
func FairOdds(probability float64) float64 {
	return 1.0 / probability
}

// Value returns the edge of odds over fair odds as a percentage
func Value(odds, fairOdds float64) float64 {
	return (odds - fairOdds) / fairOdds * 100
}

// Candidates evaluates every catalog quote in fixed order and returns those that
// clear MinOdds and MinValue. Probability reads the bucket's simple percentage.
func (g *Generator) Candidates(home, away *stats.TeamStats, catalog *Catalog) []models.ValueBetCandidate {
	var out []models.ValueBetCandidate
	for _, q := range catalog.Quotes() {
		bucket, ok := bucketFor(q, home, away)
		if !ok {
			continue
		}

		probability := bucket.Percentage / 100
		if probability <= 0 || q.OverOdds < g.MinOdds {
			continue
		}

		fair := FairOdds(probability)
		value := Value(q.OverOdds, fair)
		if value < g.MinValue {
			continue
		}

		out = append(out, models.ValueBetCandidate{
			BetType:         q.Category.OverBetType(),
			Line:            q.Line,
			Odds:            q.OverOdds,
			Probability:     probability,
			FairOdds:        fair,
			ValuePercentage: value,
		})
	}
	return out
}

// Best returns the highest-value candidate; ties keep the earliest
func Best(candidates []models.ValueBetCandidate) (models.ValueBetCandidate, bool) {
	if len(candidates) == 0 {
		return models.ValueBetCandidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.ValuePercentage > best.ValuePercentage {
			best = c
		}
	}
	return best, true
}

// Generate returns the single best value bet for fixture, or false if none survives.
// The caller must ensure both teams have enough matches in the relevant split.
func (g *Generator) Generate(home, away *stats.TeamStats, fixture Fixture, catalog *Catalog) (*Pick, bool) {
	best, ok := Best(g.Candidates(home, away, catalog))
	if !ok {
		return nil, false
	}
	return &Pick{
		ValueBetCandidate: best,
		Fixture:           fixture,
		Label:             Label(best.BetType, best.Line, fixture),
	}, true
}

// HasEnoughMatches reports whether the home team's home split and the away team's
// away split both reach minMatches.
func HasEnoughMatches(home, away *stats.TeamStats, minMatches int) bool {
	return home.Home.TotalMatches >= minMatches && away.Away.TotalMatches >= minMatches
}

// Label renders a human-readable bet name
func Label(bt models.BetType, line float64, f Fixture) string {
	switch bt {
	case models.BetTypeHomeITOver:
		return fmt.Sprintf("%s team total over %.1f", teamName(f.HomeTeam, f.HomeAbbrev), line)
	case models.BetTypeHomeITUnder:
		return fmt.Sprintf("%s team total under %.1f", teamName(f.HomeTeam, f.HomeAbbrev), line)
	case models.BetTypeAwayITOver:
		return fmt.Sprintf("%s team total over %.1f", teamName(f.AwayTeam, f.AwayAbbrev), line)
	case models.BetTypeAwayITUnder:
		return fmt.Sprintf("%s team total under %.1f", teamName(f.AwayTeam, f.AwayAbbrev), line)
	case models.BetTypeMatchTotalOver:
		return fmt.Sprintf("Match total over %.1f", line)
	case models.BetTypeMatchTotalUnder:
		return fmt.Sprintf("Match total under %.1f", line)
	default:
		return string(bt)
	}
}

// bucketFor picks the split the quote is priced against: home IT from the home
// team at home, away IT from the away team on the road, match totals from the
// home team at home.
func bucketFor(q models.OddsQuote, home, away *stats.TeamStats) (stats.ThresholdBucket, bool) {
	threshold := ThresholdForLine(q.Line)
	var b stats.ThresholdBucket
	var ok bool
	switch q.Category {
	case models.CategoryHomeIT:
		b, ok = home.Home.IndividualTotals[threshold]
	case models.CategoryAwayIT:
		b, ok = away.Away.IndividualTotals[threshold]
	case models.CategoryMatchTotal:
		b, ok = home.Home.MatchTotals[threshold]
	}
	return b, ok
}

func teamName(name, abbrev string) string {
	if name != "" {
		return name
	}
	return abbrev
}
