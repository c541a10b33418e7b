package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/puckline/internal/feed"
	"github.com/yourusername/puckline/internal/models"
)

// PredictionRepository defines the interface for prediction data access
type PredictionRepository interface {
	// Insert stores a prediction unless its (event_id, bet_type, line) key exists.
	// inserted is false for duplicates.
	Insert(ctx context.Context, prediction *models.Prediction) (inserted bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error)
	ListPending(ctx context.Context, from, to time.Time) ([]*models.Prediction, error)
	// MarkGraded grades a prediction only while it is still pending
	MarkGraded(ctx context.Context, id uuid.UUID, won bool, actualResult string, checkedAt time.Time) (bool, error)
	ListByDay(ctx context.Context, day time.Time) ([]*models.Prediction, error)
}

// GameRepository defines the interface for game data access
type GameRepository interface {
	Upsert(ctx context.Context, games []models.Game) (int, error)
	GetByID(ctx context.Context, league, gameID string) (*models.Game, error)
	Fixtures(ctx context.Context, league string, from, to time.Time) ([]models.Game, error)
	TeamMatches(ctx context.Context, league, abbrev string, split models.Split) ([]models.GameResult, error)
	// ForLeague exposes the stored games of one league as a feed
	ForLeague(league string) feed.Feed
}
