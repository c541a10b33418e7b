package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PredictionState is the reconciliation state of a prediction
type PredictionState string

const (
	StatePending    PredictionState = "PENDING"
	StateGradedWon  PredictionState = "GRADED_WON"
	StateGradedLost PredictionState = "GRADED_LOST"
)

// ValueBetCandidate is a line whose offered odds beat the fair odds
type ValueBetCandidate struct {
	BetType         BetType `json:"bet_type"`
	Line            float64 `json:"line"`
	Odds            float64 `json:"odds"`
	Probability     float64 `json:"probability"`
	FairOdds        float64 `json:"fair_odds"`
	ValuePercentage float64 `json:"value_percentage"`
}

// Prediction is a persisted value bet. Identity is (EventID, BetType, Line).
type Prediction struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	EventID         string     `db:"event_id" json:"event_id" validate:"required"`
	League          string     `db:"league" json:"league" validate:"required"`
	Scheduled       time.Time  `db:"scheduled" json:"scheduled" validate:"required"`
	HomeTeam        string     `db:"home_team" json:"home_team"`
	HomeAbbrev      string     `db:"home_abbrev" json:"home_abbrev" validate:"required"`
	AwayTeam        string     `db:"away_team" json:"away_team"`
	AwayAbbrev      string     `db:"away_abbrev" json:"away_abbrev" validate:"required"`
	BetType         BetType    `db:"bet_type" json:"bet_type" validate:"required"`
	BetLabel        string     `db:"bet_label" json:"bet_label"`
	Line            float64    `db:"line" json:"line" validate:"gt=0"`
	Odds            float64    `db:"odds" json:"odds" validate:"gt=1"`
	Probability     float64    `db:"probability" json:"probability" validate:"gte=0,lte=1"`
	FairOdds        float64    `db:"fair_odds" json:"fair_odds"`
	ValuePercentage float64    `db:"value_percentage" json:"value_percentage"`
	IsChecked       bool       `db:"is_checked" json:"is_checked"`
	IsWon           *bool      `db:"is_won" json:"is_won"`
	ActualResult    *string    `db:"actual_result" json:"actual_result"`
	CheckedAt       *time.Time `db:"checked_at" json:"checked_at"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// Validate checks the fields required before insertion, including a gradable bet type
func (p *Prediction) Validate() error {
	if err := validateStruct(p, ErrInvalidPrediction); err != nil {
		return err
	}
	if !p.BetType.IsKnown() {
		return fmt.Errorf("%w: unknown bet type %q", ErrInvalidPrediction, p.BetType)
	}
	return nil
}

// State derives the reconciliation state from the persisted flags
func (p *Prediction) State() PredictionState {
	if !p.IsChecked || p.IsWon == nil {
		return StatePending
	}
	if *p.IsWon {
		return StateGradedWon
	}
	return StateGradedLost
}

// IsPending reports whether the prediction still awaits grading
func (p *Prediction) IsPending() bool {
	return p.State() == StatePending
}

// Key returns the natural identity of the prediction
func (p *Prediction) Key() string {
	return fmt.Sprintf("%s:%s:%.1f", p.EventID, p.BetType, p.Line)
}

// Grade moves a pending prediction to a graded state. Graded predictions are left untouched.
func (p *Prediction) Grade(won bool, actualResult string, at time.Time) bool {
	if !p.IsPending() {
		return false
	}
	p.IsChecked = true
	p.IsWon = &won
	p.ActualResult = &actualResult
	p.CheckedAt = &at
	return true
}

// HistorySummary tallies a set of predictions by state
type HistorySummary struct {
	Total   int     `json:"total"`
	Won     int     `json:"won"`
	Lost    int     `json:"lost"`
	Pending int     `json:"pending"`
	WinRate float64 `json:"win_rate"`
}

// Summarize counts predictions per state. WinRate is a percentage of graded rows.
func Summarize(predictions []*Prediction) HistorySummary {
	s := HistorySummary{Total: len(predictions)}
	for _, p := range predictions {
		switch p.State() {
		case StateGradedWon:
			s.Won++
		case StateGradedLost:
			s.Lost++
		default:
			s.Pending++
		}
	}
	if graded := s.Won + s.Lost; graded > 0 {
		s.WinRate = float64(s.Won) / float64(graded) * 100
	}
	return s
}
