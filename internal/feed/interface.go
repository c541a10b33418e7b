// Package feed adapts league data providers to a single results feed.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/puckline/internal/models"
)

// Feed is a league adapter. One core, many adapters.
type Feed interface {
	// League returns the league code the adapter serves, e.g. "NHL"
	League() string

	// TeamMatches returns finished games of a team in one split, newest first
	TeamMatches(ctx context.Context, abbrev string, split models.Split) ([]models.GameResult, error)

	// Fixtures returns scheduled and finished games starting within [from, to]
	Fixtures(ctx context.Context, from, to time.Time) ([]models.Game, error)
}

// FeedError represents errors from feed operations
type FeedError struct {
	Source  string // Feed name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e FeedError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e FeedError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
)

var (
	ErrUnknownLeague   = errors.New("unknown league")
	ErrUnknownProvider = errors.New("unknown feed provider")
)

// NewFeedError creates a new feed error
func NewFeedError(source, code, message string, err error) FeedError {
	return FeedError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
