package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/puckline/internal/database"
	"github.com/yourusername/puckline/internal/feed"
	"github.com/yourusername/puckline/internal/models"
)

const gameColumns = `
	league, game_id, scheduled, home_team, home_abbrev, away_team, away_abbrev,
	home_score, away_score, is_finished`

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// Upsert inserts or refreshes games in one batch and returns how many were written
func (r *PostgresGameRepository) Upsert(ctx context.Context, games []models.Game) (int, error) {
	if len(games) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO games (league, game_id, scheduled, home_team, home_abbrev, away_team, away_abbrev,
		                   home_score, away_score, is_finished, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (league, game_id) DO UPDATE SET
			scheduled = EXCLUDED.scheduled,
			home_team = EXCLUDED.home_team,
			home_abbrev = EXCLUDED.home_abbrev,
			away_team = EXCLUDED.away_team,
			away_abbrev = EXCLUDED.away_abbrev,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			is_finished = EXCLUDED.is_finished,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for i := range games {
		g := &games[i]
		if err := g.Validate(); err != nil {
			return 0, err
		}
		batch.Queue(query,
			g.League, g.GameID, g.Scheduled, g.HomeTeam, g.HomeAbbrev, g.AwayTeam, g.AwayAbbrev,
			g.HomeScore, g.AwayScore, g.IsFinished,
		)
	}

	written := 0
	err := r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		results := r.db.Querier(txCtx).SendBatch(txCtx, batch)
		defer results.Close()

		for range games {
			tag, err := results.Exec()
			if err != nil {
				return fmt.Errorf("failed to upsert game: %w", err)
			}
			written += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return written, nil
}

// GetByID retrieves one game
func (r *PostgresGameRepository) GetByID(ctx context.Context, league, gameID string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE league = $1 AND game_id = $2`

	g, err := scanGame(r.db.Querier(ctx).QueryRow(ctx, query, league, gameID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

// Fixtures returns games of a league scheduled within [from, to]
func (r *PostgresGameRepository) Fixtures(ctx context.Context, league string, from, to time.Time) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE league = $1 AND scheduled >= $2 AND scheduled <= $3
		ORDER BY scheduled ASC`

	rows, err := r.db.Querier(ctx).Query(ctx, query, league, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *g)
	}

	return games, rows.Err()
}

// TeamMatches returns finished games of a team in one split, newest first
func (r *PostgresGameRepository) TeamMatches(ctx context.Context, league, abbrev string, split models.Split) ([]models.GameResult, error) {
	column := "home_abbrev"
	if split == models.SplitAway {
		column = "away_abbrev"
	}

	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE league = $1 AND ` + column + ` = $2
		  AND is_finished = TRUE AND home_score IS NOT NULL AND away_score IS NOT NULL
		ORDER BY scheduled DESC`

	rows, err := r.db.Querier(ctx).Query(ctx, query, league, abbrev)
	if err != nil {
		return nil, fmt.Errorf("failed to query team matches: %w", err)
	}
	defer rows.Close()

	var results []models.GameResult
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		if result, ok := g.ResultFor(abbrev); ok {
			results = append(results, result)
		}
	}

	return results, rows.Err()
}

// ForLeague exposes the stored games of one league as a feed
func (r *PostgresGameRepository) ForLeague(league string) feed.Feed {
	return &leagueFeed{repo: r, league: league}
}

func scanGame(row pgx.Row) (*models.Game, error) {
	g := &models.Game{}
	err := row.Scan(
		&g.League, &g.GameID, &g.Scheduled, &g.HomeTeam, &g.HomeAbbrev, &g.AwayTeam, &g.AwayAbbrev,
		&g.HomeScore, &g.AwayScore, &g.IsFinished,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// leagueFeed serves one league from the games table
type leagueFeed struct {
	repo   *PostgresGameRepository
	league string
}

func (f *leagueFeed) League() string {
	return f.league
}

func (f *leagueFeed) TeamMatches(ctx context.Context, abbrev string, split models.Split) ([]models.GameResult, error) {
	return f.repo.TeamMatches(ctx, f.league, abbrev, split)
}

func (f *leagueFeed) Fixtures(ctx context.Context, from, to time.Time) ([]models.Game, error) {
	return f.repo.Fixtures(ctx, f.league, from, to)
}
