package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/puckline/internal/database"
	"github.com/yourusername/puckline/internal/models"
)

const predictionColumns = `
	id, event_id, league, scheduled, home_team, home_abbrev, away_team, away_abbrev,
	bet_type, bet_label, line, odds, probability, fair_odds, value_percentage,
	is_checked, is_won, actual_result, checked_at, created_at`

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Insert stores a new prediction, skipping existing keys
func (r *PostgresPredictionRepository) Insert(ctx context.Context, p *models.Prediction) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO predictions (id, event_id, league, scheduled, home_team, home_abbrev, away_team, away_abbrev,
		                         bet_type, bet_label, line, odds, probability, fair_odds, value_percentage,
		                         is_checked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, FALSE, $16)
		ON CONFLICT (event_id, bet_type, line) DO NOTHING
	`

	tag, err := r.db.Querier(ctx).Exec(ctx, query,
		p.ID, p.EventID, p.League, p.Scheduled, p.HomeTeam, p.HomeAbbrev, p.AwayTeam, p.AwayAbbrev,
		string(p.BetType), p.BetLabel, p.Line, p.Odds, p.Probability, p.FairOdds, p.ValuePercentage,
		p.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert prediction: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// GetByID retrieves a prediction by ID
func (r *PostgresPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`

	p, err := scanPrediction(r.db.Querier(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// ListPending returns unchecked predictions scheduled within [from, to]
func (r *PostgresPredictionRepository) ListPending(ctx context.Context, from, to time.Time) ([]*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + `
		FROM predictions
		WHERE is_checked = FALSE AND scheduled >= $1 AND scheduled <= $2
		ORDER BY scheduled ASC`

	return r.queryPredictions(ctx, query, from, to)
}

// MarkGraded records the outcome if the prediction is still pending
func (r *PostgresPredictionRepository) MarkGraded(ctx context.Context, id uuid.UUID, won bool, actualResult string, checkedAt time.Time) (bool, error) {
	query := `
		UPDATE predictions SET
			is_checked = TRUE, is_won = $2, actual_result = $3, checked_at = $4
		WHERE id = $1 AND is_checked = FALSE
	`

	tag, err := r.db.Querier(ctx).Exec(ctx, query, id, won, actualResult, checkedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark prediction graded: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListByDay returns predictions scheduled on the calendar day of day, in its location
func (r *PostgresPredictionRepository) ListByDay(ctx context.Context, day time.Time) ([]*models.Prediction, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	query := `SELECT ` + predictionColumns + `
		FROM predictions
		WHERE scheduled >= $1 AND scheduled < $2
		ORDER BY scheduled ASC, value_percentage DESC`

	return r.queryPredictions(ctx, query, start, end)
}

func (r *PostgresPredictionRepository) queryPredictions(ctx context.Context, query string, args ...any) ([]*models.Prediction, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

func scanPrediction(row pgx.Row) (*models.Prediction, error) {
	p := &models.Prediction{}
	var betType string
	err := row.Scan(
		&p.ID, &p.EventID, &p.League, &p.Scheduled, &p.HomeTeam, &p.HomeAbbrev, &p.AwayTeam, &p.AwayAbbrev,
		&betType, &p.BetLabel, &p.Line, &p.Odds, &p.Probability, &p.FairOdds, &p.ValuePercentage,
		&p.IsChecked, &p.IsWon, &p.ActualResult, &p.CheckedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	// Unknown strings are kept verbatim so the grader can flag them
	p.BetType = models.BetType(betType)
	return p, nil
}
