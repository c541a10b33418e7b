package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/puckline/internal/logger"
	"github.com/yourusername/puckline/internal/metrics"
	"github.com/yourusername/puckline/internal/models"
)

// Default sweep windows
const (
	DefaultMinAge      = 5 * time.Hour
	DefaultMaxAge      = 7 * 24 * time.Hour
	DefaultMatchWindow = 2 * time.Hour
	DefaultWorkers     = 4
)

// PredictionStore is the persistence the reconciler needs.
type PredictionStore interface {
	ListPending(ctx context.Context, from, to time.Time) ([]*models.Prediction, error)
	// MarkGraded grades a row only if it is still pending and reports whether it did.
	MarkGraded(ctx context.Context, id uuid.UUID, won bool, actualResult string, checkedAt time.Time) (bool, error)
}

// GameSource supplies games of one league within a time window.
type GameSource interface {
	League() string
	Fixtures(ctx context.Context, from, to time.Time) ([]models.Game, error)
}

// Config holds the sweep windows and pool size.
type Config struct {
	MinAge      time.Duration
	MaxAge      time.Duration
	MatchWindow time.Duration
	Workers     int
}

// DefaultConfig returns the production sweep settings.
func DefaultConfig() Config {
	return Config{
		MinAge:      DefaultMinAge,
		MaxAge:      DefaultMaxAge,
		MatchWindow: DefaultMatchWindow,
		Workers:     DefaultWorkers,
	}
}

type outcome string

const (
	outcomeWon           outcome = "won"
	outcomeLost          outcome = "lost"
	outcomeUnmatched     outcome = "unmatched"
	outcomeNoFinalScore  outcome = "no_final_score"
	outcomeUngradable    outcome = "ungradable"
	outcomeAlreadyGraded outcome = "already_graded"
	outcomeFailed        outcome = "failed"
)

// SweepResult tallies one sweep.
type SweepResult struct {
	RunID      string
	Eligible   int
	Checked    int
	Won        int
	Lost       int
	Unmatched  int
	Ungradable int
	Skipped    int
	Failed     int
	Duration   time.Duration

	mu sync.Mutex
}

func (r *SweepResult) add(o outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch o {
	case outcomeWon:
		r.Checked++
		r.Won++
	case outcomeLost:
		r.Checked++
		r.Lost++
	case outcomeUnmatched, outcomeNoFinalScore:
		r.Unmatched++
	case outcomeUngradable:
		r.Ungradable++
	case outcomeAlreadyGraded:
		r.Skipped++
	case outcomeFailed:
		r.Failed++
	}
}

// Reconciler moves PENDING predictions to GRADED once their game is final.
type Reconciler struct {
	store   PredictionStore
	sources map[string]GameSource
	cfg     Config
	logger  *logrus.Logger
	predLog *logger.PredictionLogger
	now     func() time.Time
}

// NewReconciler creates a reconciler. Zero config fields fall back to defaults.
func NewReconciler(store PredictionStore, sources []GameSource, cfg Config, log *logrus.Logger) *Reconciler {
	def := DefaultConfig()
	if cfg.MinAge <= 0 {
		cfg.MinAge = def.MinAge
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}
	if cfg.MatchWindow <= 0 {
		cfg.MatchWindow = def.MatchWindow
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}

	bySource := make(map[string]GameSource, len(sources))
	for _, src := range sources {
		bySource[src.League()] = src
	}

	return &Reconciler{
		store:   store,
		sources: bySource,
		cfg:     cfg,
		logger:  log,
		predLog: logger.NewPredictionLogger(log),
		now:     time.Now,
	}
}

// WithClock replaces the wall clock, used by tests.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Sweep grades every eligible pending prediction once.
// Per-prediction failures are counted and logged; only a failed pending query aborts.
func (r *Reconciler) Sweep(ctx context.Context) (*SweepResult, error) {
	start := time.Now()
	now := r.now().UTC()
	result := &SweepResult{RunID: uuid.NewString()}

	from := now.Add(-r.cfg.MaxAge)
	to := now.Add(-r.cfg.MinAge)

	pending, err := r.store.ListPending(ctx, from, to)
	if err != nil {
		metrics.RecordSweep("failure", time.Since(start).Seconds(), 0)
		return nil, fmt.Errorf("failed to list pending predictions: %w", err)
	}

	eligible := make([]*models.Prediction, 0, len(pending))
	for _, p := range pending {
		if p.IsPending() && !p.Scheduled.Before(from) && !p.Scheduled.After(to) {
			eligible = append(eligible, p)
		}
	}
	result.Eligible = len(eligible)

	r.logger.WithFields(logrus.Fields{
		"run_id":   result.RunID,
		"eligible": result.Eligible,
		"from":     from.Format(time.RFC3339),
		"to":       to.Format(time.RFC3339),
	}).Info("Starting reconciliation sweep")

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.Workers)
	for _, p := range eligible {
		p := p
		g.Go(func() error {
			o := r.reconcileOne(ctx, p, now)
			metrics.RecordSweepOutcome(string(o))
			result.add(o)
			return nil
		})
	}
	_ = g.Wait()

	result.Duration = time.Since(start)
	metrics.RecordSweep("success", result.Duration.Seconds(), result.Eligible)
	r.predLog.LogSweepCompleted(result.RunID, result.Eligible, result.Checked, result.Won, result.Lost,
		result.Unmatched, result.Failed, result.Duration)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, p *models.Prediction, now time.Time) outcome {
	entry := r.logger.WithFields(logrus.Fields{
		"prediction_id": p.ID.String(),
		"event_id":      p.EventID,
		"league":        p.League,
	})

	if err := ctx.Err(); err != nil {
		return outcomeFailed
	}

	game, err := r.findGame(ctx, p)
	if err != nil {
		entry.WithError(err).Error("Failed to look up game")
		return outcomeFailed
	}
	if game == nil {
		entry.Debug("No matching game yet")
		return outcomeUnmatched
	}
	if !game.HasFinalScore() {
		entry.WithField("game_id", game.GameID).Debug("Game has no final score yet")
		return outcomeNoFinalScore
	}

	won, err := Grade(p.BetType, p.Line, *game.HomeScore, *game.AwayScore)
	if errors.Is(err, ErrUngradable) {
		r.predLog.LogUngradable(p, err.Error())
		return outcomeUngradable
	}

	actual := game.FinalScore()
	updated, err := r.store.MarkGraded(ctx, p.ID, won, actual, now)
	if err != nil {
		entry.WithError(err).Error("Failed to mark prediction graded")
		return outcomeFailed
	}
	if !updated {
		entry.Debug("Prediction already graded")
		return outcomeAlreadyGraded
	}

	r.predLog.LogPredictionGraded(p, won, actual, now)
	if won {
		return outcomeWon
	}
	return outcomeLost
}

// findGame returns the first game within the match window with the same home and away teams.
func (r *Reconciler) findGame(ctx context.Context, p *models.Prediction) (*models.Game, error) {
	src, ok := r.sources[p.League]
	if !ok {
		return nil, fmt.Errorf("no game source for league %q", p.League)
	}

	games, err := src.Fixtures(ctx, p.Scheduled.Add(-r.cfg.MatchWindow), p.Scheduled.Add(r.cfg.MatchWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch games for %s: %w", p.EventID, err)
	}

	for i := range games {
		if games[i].HomeAbbrev == p.HomeAbbrev && games[i].AwayAbbrev == p.AwayAbbrev {
			return &games[i], nil
		}
	}
	return nil, nil
}
