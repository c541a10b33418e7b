package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewGameResultRejectsNegativeScores(t *testing.T) {
	_, err := NewGameResult("g1", time.Now(), "Boston Bruins", "BOS", true, -1, 2)
	require.ErrorIs(t, err, ErrInvalidScore)

	_, err = NewGameResult("g1", time.Now(), "Boston Bruins", "BOS", true, 1, -2)
	require.ErrorIs(t, err, ErrInvalidScore)

	gr, err := NewGameResult("g1", time.Now(), "Boston Bruins", "BOS", true, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, gr.TotalGoals())
	assert.Equal(t, 4, gr.TeamScore)
}

func TestNewOddsQuoteValidation(t *testing.T) {
	tests := []struct {
		name    string
		line    float64
		over    float64
		under   float64
		wantErr error
	}{
		{"valid", 2.5, 1.95, 1.85, nil},
		{"over at one", 2.5, 1.0, 1.85, ErrInvalidOdds},
		{"nan odds", 2.5, math.NaN(), 1.85, ErrInvalidOdds},
		{"infinite odds", 2.5, 1.9, math.Inf(1), ErrInvalidOdds},
		{"negative line", -1, 1.9, 1.9, ErrInvalidLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOddsQuote(CategoryHomeIT, tt.line, tt.over, tt.under)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseBetType(t *testing.T) {
	for _, bt := range KnownBetTypes {
		assert.Equal(t, bt, ParseBetType(string(bt)))
		assert.True(t, bt.IsKnown())
	}
	assert.Equal(t, BetTypeUnknown, ParseBetType("home-win"))
	assert.False(t, BetType("home-win").IsKnown())
}

func TestCategoryBetTypes(t *testing.T) {
	assert.Equal(t, BetTypeHomeITOver, CategoryHomeIT.OverBetType())
	assert.Equal(t, BetTypeAwayITUnder, CategoryAwayIT.UnderBetType())
	assert.Equal(t, BetTypeMatchTotalOver, CategoryMatchTotal.OverBetType())
	assert.Equal(t, BetTypeUnknown, BetCategory("corners").OverBetType())
}

func TestGameResultFor(t *testing.T) {
	g := &Game{
		League: "NHL", GameID: "2024020001", Scheduled: time.Now(),
		HomeTeam: "Boston Bruins", HomeAbbrev: "BOS",
		AwayTeam: "Toronto Maple Leafs", AwayAbbrev: "TOR",
		HomeScore: intPtr(4), AwayScore: intPtr(2), IsFinished: true,
	}

	home, ok := g.ResultFor("BOS")
	require.True(t, ok)
	assert.True(t, home.IsHome)
	assert.Equal(t, 4, home.TeamScore)
	assert.Equal(t, "TOR", home.OpponentAbbrev)

	away, ok := g.ResultFor("TOR")
	require.True(t, ok)
	assert.False(t, away.IsHome)
	assert.Equal(t, 2, away.TeamScore)
	assert.Equal(t, 4, away.OpponentScore)

	_, ok = g.ResultFor("MTL")
	assert.False(t, ok)
	assert.Equal(t, "4-2", g.FinalScore())

	g.IsFinished = false
	_, ok = g.ResultFor("BOS")
	assert.False(t, ok)
	assert.Empty(t, g.FinalScore())
}

func TestGameValidateRejectsNegativeScore(t *testing.T) {
	g := &Game{League: "NHL", GameID: "1", Scheduled: time.Now(), HomeAbbrev: "BOS", AwayAbbrev: "TOR", HomeScore: intPtr(-1)}
	assert.ErrorIs(t, g.Validate(), ErrInvalidScore)
}

func TestPredictionGradeIsOneShot(t *testing.T) {
	p := &Prediction{EventID: "e1", BetType: BetTypeHomeITOver, Line: 2.5}
	assert.Equal(t, StatePending, p.State())

	first := time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC)
	require.True(t, p.Grade(true, "4-2", first))
	assert.Equal(t, StateGradedWon, p.State())

	assert.False(t, p.Grade(false, "0-0", first.Add(time.Hour)))
	assert.Equal(t, StateGradedWon, p.State())
	assert.Equal(t, "4-2", *p.ActualResult)
	assert.Equal(t, first, *p.CheckedAt)
}

func TestPredictionValidate(t *testing.T) {
	p := &Prediction{
		EventID: "e1", League: "NHL", Scheduled: time.Now(),
		HomeAbbrev: "BOS", AwayAbbrev: "TOR", BetType: BetTypeHomeITOver,
		Line: 2.5, Odds: 1.95, Probability: 0.6,
	}
	assert.NoError(t, p.Validate())
	assert.Equal(t, "e1:home-it-over:2.5", p.Key())

	p.BetType = "home-win"
	err := p.Validate()
	assert.ErrorIs(t, err, ErrInvalidPrediction)
	assert.Contains(t, err.Error(), "unknown bet type")

	p.BetType = BetTypeHomeITOver
	p.Probability = 1.4
	assert.ErrorIs(t, p.Validate(), ErrInvalidPrediction)
}

func TestSummarize(t *testing.T) {
	at := time.Date(2024, 11, 21, 0, 0, 0, 0, time.UTC)
	won, lost, pending := &Prediction{}, &Prediction{}, &Prediction{}
	won.Grade(true, "3-2", at)
	lost.Grade(false, "1-0", at)
	lost2 := &Prediction{}
	lost2.Grade(false, "0-4", at)

	s := Summarize([]*Prediction{won, lost, lost2, pending})
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Won)
	assert.Equal(t, 2, s.Lost)
	assert.Equal(t, 1, s.Pending)
	assert.InDelta(t, 33.333, s.WinRate, 0.001)

	assert.Equal(t, HistorySummary{}, Summarize(nil))
}
