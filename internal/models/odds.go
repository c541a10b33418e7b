package models

import (
	"fmt"
	"math"
)

// OddsQuote is one bookmaker line with decimal over/under odds
type OddsQuote struct {
	Category  BetCategory `json:"bet_category" validate:"required,oneof=home-it away-it match-total"`
	Line      float64     `json:"line" validate:"gt=0"`
	OverOdds  float64     `json:"over_odds" validate:"gt=1"`
	UnderOdds float64     `json:"under_odds" validate:"gt=1"`
}

// NewOddsQuote builds a quote, rejecting non-finite values and odds not above 1.0
func NewOddsQuote(category BetCategory, line, over, under float64) (OddsQuote, error) {
	if !isFinite(line) || line <= 0 {
		return OddsQuote{}, fmt.Errorf("%w: %v", ErrInvalidLine, line)
	}
	if !isFinite(over) || !isFinite(under) || over <= 1 || under <= 1 {
		return OddsQuote{}, fmt.Errorf("%w: over=%v under=%v for %s %.1f", ErrInvalidOdds, over, under, category, line)
	}
	q := OddsQuote{Category: category, Line: line, OverOdds: over, UnderOdds: under}
	if err := validateStruct(q, ErrInvalidOdds); err != nil {
		return OddsQuote{}, err
	}
	return q, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
