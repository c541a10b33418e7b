// Package reconcile grades pending predictions against final scores.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/yourusername/puckline/internal/models"
)

// ErrUngradable is returned for bet types the grader has no rule for.
var ErrUngradable = errors.New("bet type cannot be graded")

// Grade decides whether a bet won given the final score.
// Overs win when the score is strictly above the line, unders when strictly below.
func Grade(bt models.BetType, line float64, homeScore, awayScore int) (bool, error) {
	home := float64(homeScore)
	away := float64(awayScore)
	total := home + away

	switch bt {
	case models.BetTypeHomeITOver:
		return home > line, nil
	case models.BetTypeHomeITUnder:
		return home < line, nil
	case models.BetTypeAwayITOver:
		return away > line, nil
	case models.BetTypeAwayITUnder:
		return away < line, nil
	case models.BetTypeMatchTotalOver:
		return total > line, nil
	case models.BetTypeMatchTotalUnder:
		return total < line, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUngradable, string(bt))
	}
}
