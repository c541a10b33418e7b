// Package repository implements PostgreSQL persistence for games and predictions.
package repository

import (
	"fmt"

	"github.com/yourusername/puckline/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Prediction PredictionRepository
	Game       GameRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Prediction: NewPostgresPredictionRepository(db),
		Game:       NewPostgresGameRepository(db),
	}, nil
}
