package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/puckline/internal/models"
)

// PredictionHistoryReader lists predictions of a day
type PredictionHistoryReader interface {
	ListByDay(ctx context.Context, day time.Time) ([]*models.Prediction, error)
}

// History is one day of predictions with their tally
type History struct {
	Date        string                `json:"date"`
	Predictions []*models.Prediction  `json:"predictions"`
	Summary     models.HistorySummary `json:"summary"`
}

// HistoryService reads stored predictions
type HistoryService struct {
	store PredictionHistoryReader
	now   func() time.Time
}

// NewHistoryService creates a history service
func NewHistoryService(store PredictionHistoryReader) *HistoryService {
	return &HistoryService{store: store, now: time.Now}
}

// Day returns predictions scheduled on day. A zero day means yesterday.
func (h *HistoryService) Day(ctx context.Context, day time.Time) (*History, error) {
	if day.IsZero() {
		day = h.now().AddDate(0, 0, -1)
	}

	predictions, err := h.store.ListByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return &History{
		Date:        day.Format("2006-01-02"),
		Predictions: predictions,
		Summary:     models.Summarize(predictions),
	}, nil
}
