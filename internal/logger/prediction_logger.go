package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/puckline/internal/models"
)

// PredictionLogger provides dedicated logging for the prediction lifecycle.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "predictions"),
	}
}

// LogPredictionStored logs a newly persisted value bet.
func (pl *PredictionLogger) LogPredictionStored(p *models.Prediction) {
	pl.WithFields(logrus.Fields{
		"prediction_id":    p.ID.String(),
		"event_id":         p.EventID,
		"league":           p.League,
		"bet_type":         string(p.BetType),
		"line":             p.Line,
		"odds":             p.Odds,
		"probability":      p.Probability,
		"value_percentage": p.ValuePercentage,
		"scheduled":        p.Scheduled.Unix(),
		"event_type":       "stored",
	}).Info("Value bet stored")
}

// LogPredictionDuplicate logs a candidate that already exists for its key.
func (pl *PredictionLogger) LogPredictionDuplicate(p *models.Prediction) {
	pl.WithFields(logrus.Fields{
		"key":        p.Key(),
		"event_id":   p.EventID,
		"bet_type":   string(p.BetType),
		"line":       p.Line,
		"event_type": "duplicate",
	}).Debug("Value bet already stored, skipping")
}

// LogPredictionGraded logs a PENDING to GRADED transition.
func (pl *PredictionLogger) LogPredictionGraded(p *models.Prediction, won bool, actual string, checkedAt time.Time) {
	state := models.StateGradedLost
	if won {
		state = models.StateGradedWon
	}
	pl.WithFields(logrus.Fields{
		"prediction_id": p.ID.String(),
		"event_id":      p.EventID,
		"bet_type":      string(p.BetType),
		"line":          p.Line,
		"actual_result": actual,
		"old_state":     string(models.StatePending),
		"new_state":     string(state),
		"checked_at":    checkedAt.Unix(),
		"event_type":    "graded",
	}).Info("Prediction graded")
}

// LogUngradable logs a pending row whose bet type cannot be graded.
func (pl *PredictionLogger) LogUngradable(p *models.Prediction, reason string) {
	pl.WithFields(logrus.Fields{
		"prediction_id": p.ID.String(),
		"event_id":      p.EventID,
		"bet_type":      string(p.BetType),
		"reason":        reason,
		"event_type":    "ungradable",
	}).Warn("Prediction cannot be graded, left pending")
}

// LogSweepCompleted logs the tally of one reconciliation sweep.
func (pl *PredictionLogger) LogSweepCompleted(runID string, eligible, checked, won, lost, unmatched, failed int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"run_id":      runID,
		"eligible":    eligible,
		"checked":     checked,
		"won":         won,
		"lost":        lost,
		"unmatched":   unmatched,
		"failed":      failed,
		"duration_ms": float64(duration.Microseconds()) / 1000.0,
		"event_type":  "sweep",
	}).Info("Reconciliation sweep completed")
}
