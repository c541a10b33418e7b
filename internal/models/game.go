package models

import (
	"fmt"
	"time"
)

// Split selects home or away games relative to a subject team
type Split string

const (
	SplitHome Split = "home"
	SplitAway Split = "away"
)

// GameResult is one finished match seen from a subject team
type GameResult struct {
	GameID         string    `json:"game_id" validate:"required"`
	Date           time.Time `json:"date" validate:"required"`
	Opponent       string    `json:"opponent"`
	OpponentAbbrev string    `json:"opponent_abbrev"`
	IsHome         bool      `json:"is_home"`
	TeamScore      int       `json:"team_score" validate:"gte=0"`
	OpponentScore  int       `json:"opponent_score" validate:"gte=0"`
}

// NewGameResult builds a GameResult, rejecting negative scores
func NewGameResult(gameID string, date time.Time, opponent, opponentAbbrev string, isHome bool, teamScore, opponentScore int) (GameResult, error) {
	gr := GameResult{
		GameID:         gameID,
		Date:           date,
		Opponent:       opponent,
		OpponentAbbrev: opponentAbbrev,
		IsHome:         isHome,
		TeamScore:      teamScore,
		OpponentScore:  opponentScore,
	}
	if teamScore < 0 || opponentScore < 0 {
		return GameResult{}, fmt.Errorf("%w: %d:%d in game %s", ErrInvalidScore, teamScore, opponentScore, gameID)
	}
	if err := validateStruct(gr, ErrInvalidScore); err != nil {
		return GameResult{}, err
	}
	return gr, nil
}

// TotalGoals returns goals scored by both teams
func (g GameResult) TotalGoals() int {
	return g.TeamScore + g.OpponentScore
}

// Game is a league fixture, scheduled or finished
type Game struct {
	League     string    `db:"league" json:"league" validate:"required"`
	GameID     string    `db:"game_id" json:"game_id" validate:"required"`
	Scheduled  time.Time `db:"scheduled" json:"scheduled" validate:"required"`
	HomeTeam   string    `db:"home_team" json:"home_team"`
	HomeAbbrev string    `db:"home_abbrev" json:"home_abbrev" validate:"required"`
	AwayTeam   string    `db:"away_team" json:"away_team"`
	AwayAbbrev string    `db:"away_abbrev" json:"away_abbrev" validate:"required"`
	HomeScore  *int      `db:"home_score" json:"home_score" validate:"omitempty,gte=0"`
	AwayScore  *int      `db:"away_score" json:"away_score" validate:"omitempty,gte=0"`
	IsFinished bool      `db:"is_finished" json:"is_finished"`
}

// Validate checks identity fields and score sign
func (g *Game) Validate() error {
	if g.HomeScore != nil && *g.HomeScore < 0 || g.AwayScore != nil && *g.AwayScore < 0 {
		return fmt.Errorf("%w: negative score in game %s", ErrInvalidScore, g.GameID)
	}
	return validateStruct(g, ErrInvalidScore)
}

// HasFinalScore reports whether the game is finished with both scores known
func (g *Game) HasFinalScore() bool {
	return g.IsFinished && g.HomeScore != nil && g.AwayScore != nil
}

// Involves reports whether abbrev plays in the game
func (g *Game) Involves(abbrev string) bool {
	return g.HomeAbbrev == abbrev || g.AwayAbbrev == abbrev
}

// ResultFor projects a finished game onto one of its teams.
// ok is false when the game has no final score or the team did not play.
func (g *Game) ResultFor(abbrev string) (GameResult, bool) {
	if !g.HasFinalScore() || !g.Involves(abbrev) {
		return GameResult{}, false
	}
	if g.HomeAbbrev == abbrev {
		return GameResult{
			GameID:         g.GameID,
			Date:           g.Scheduled,
			Opponent:       g.AwayTeam,
			OpponentAbbrev: g.AwayAbbrev,
			IsHome:         true,
			TeamScore:      *g.HomeScore,
			OpponentScore:  *g.AwayScore,
		}, true
	}
	return GameResult{
		GameID:         g.GameID,
		Date:           g.Scheduled,
		Opponent:       g.HomeTeam,
		OpponentAbbrev: g.HomeAbbrev,
		IsHome:         false,
		TeamScore:      *g.AwayScore,
		OpponentScore:  *g.HomeScore,
	}, true
}

// FinalScore formats a finished game as "home-away"
func (g *Game) FinalScore() string {
	if !g.HasFinalScore() {
		return ""
	}
	return fmt.Sprintf("%d-%d", *g.HomeScore, *g.AwayScore)
}
