package models

// BetType is the closed set of markets a prediction can be placed on
type BetType string

const (
	BetTypeHomeITOver      BetType = "home-it-over"
	BetTypeHomeITUnder     BetType = "home-it-under"
	BetTypeAwayITOver      BetType = "away-it-over"
	BetTypeAwayITUnder     BetType = "away-it-under"
	BetTypeMatchTotalOver  BetType = "match-total-over"
	BetTypeMatchTotalUnder BetType = "match-total-under"
	BetTypeUnknown         BetType = ""
)

// KnownBetTypes lists every gradable bet type
var KnownBetTypes = []BetType{
	BetTypeHomeITOver,
	BetTypeHomeITUnder,
	BetTypeAwayITOver,
	BetTypeAwayITUnder,
	BetTypeMatchTotalOver,
	BetTypeMatchTotalUnder,
}

// ParseBetType maps a stored string to a BetType, BetTypeUnknown if unrecognised
func ParseBetType(s string) BetType {
	for _, bt := range KnownBetTypes {
		if string(bt) == s {
			return bt
		}
	}
	return BetTypeUnknown
}

// IsKnown reports whether bt is one of KnownBetTypes
func (bt BetType) IsKnown() bool {
	return ParseBetType(string(bt)) != BetTypeUnknown
}

// BetCategory groups the over/under pair of one market
type BetCategory string

const (
	CategoryHomeIT     BetCategory = "home-it"
	CategoryAwayIT     BetCategory = "away-it"
	CategoryMatchTotal BetCategory = "match-total"
)

// Categories is the fixed iteration order used when scanning an odds catalog
var Categories = []BetCategory{CategoryHomeIT, CategoryAwayIT, CategoryMatchTotal}

// OverBetType returns the "over" bet type of the category
func (c BetCategory) OverBetType() BetType {
	switch c {
	case CategoryHomeIT:
		return BetTypeHomeITOver
	case CategoryAwayIT:
		return BetTypeAwayITOver
	case CategoryMatchTotal:
		return BetTypeMatchTotalOver
	default:
		return BetTypeUnknown
	}
}

// UnderBetType returns the "under" bet type of the category
func (c BetCategory) UnderBetType() BetType {
	switch c {
	case CategoryHomeIT:
		return BetTypeHomeITUnder
	case CategoryAwayIT:
		return BetTypeAwayITUnder
	case CategoryMatchTotal:
		return BetTypeMatchTotalUnder
	default:
		return BetTypeUnknown
	}
}
