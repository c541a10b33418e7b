// Package service wires feeds, statistics and persistence into the generate, sync and history flows.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/puckline/internal/cache"
	"github.com/yourusername/puckline/internal/feed"
	"github.com/yourusername/puckline/internal/logger"
	"github.com/yourusername/puckline/internal/metrics"
	"github.com/yourusername/puckline/internal/models"
	"github.com/yourusername/puckline/internal/stats"
	"github.com/yourusername/puckline/internal/valuebet"
)

// FeedSource resolves league feeds
type FeedSource interface {
	Get(league string) (feed.Feed, error)
	Feeds() []feed.Feed
}

// PredictionWriter persists value bets, skipping existing keys
type PredictionWriter interface {
	Insert(ctx context.Context, prediction *models.Prediction) (bool, error)
}

// PredictorConfig holds the generation settings
type PredictorConfig struct {
	MinMatches int
	Horizon    time.Duration
}

// GenerateResult tallies one generation run
type GenerateResult struct {
	Fixtures            int
	Saved               int
	Duplicates          int
	SkippedInsufficient int
	SkippedNoValue      int
	Failed              int
	Duration            time.Duration
	Predictions         []*models.Prediction
}

func (r *GenerateResult) merge(o *GenerateResult) {
	r.Fixtures += o.Fixtures
	r.Saved += o.Saved
	r.Duplicates += o.Duplicates
	r.SkippedInsufficient += o.SkippedInsufficient
	r.SkippedNoValue += o.SkippedNoValue
	r.Failed += o.Failed
	r.Predictions = append(r.Predictions, o.Predictions...)
}

// Predictor screens upcoming fixtures and stores at most one value bet per fixture
type Predictor struct {
	feeds      FeedSource
	store      PredictionWriter
	cache      *cache.StatsCache
	calculator *stats.Calculator
	generator  *valuebet.Generator
	catalog    *valuebet.Catalog
	cfg        PredictorConfig
	logger     *logrus.Logger
	predLog    *logger.PredictionLogger
	now        func() time.Time
}

// NewPredictor creates a predictor
func NewPredictor(
	feeds FeedSource,
	store PredictionWriter,
	statsCache *cache.StatsCache,
	calculator *stats.Calculator,
	generator *valuebet.Generator,
	catalog *valuebet.Catalog,
	cfg PredictorConfig,
	log *logrus.Logger,
) *Predictor {
	if cfg.MinMatches <= 0 {
		cfg.MinMatches = valuebet.DefaultMinMatches
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 48 * time.Hour
	}
	if catalog == nil {
		catalog = valuebet.DefaultCatalog()
	}

	return &Predictor{
		feeds:      feeds,
		store:      store,
		cache:      statsCache,
		calculator: calculator,
		generator:  generator,
		catalog:    catalog,
		cfg:        cfg,
		logger:     log,
		predLog:    logger.NewPredictionLogger(log),
		now:        time.Now,
	}
}

// WithClock replaces the wall clock, used by tests
func (p *Predictor) WithClock(now func() time.Time) *Predictor {
	p.now = now
	return p
}

// Run generates value bets for every league
func (p *Predictor) Run(ctx context.Context) (*GenerateResult, error) {
	start := time.Now()
	total := &GenerateResult{}

	for _, fd := range p.feeds.Feeds() {
		res, err := p.generate(ctx, fd)
		if err != nil {
			p.logger.WithError(err).WithField("league", fd.League()).Error("Generation failed for league")
			total.Failed++
			continue
		}
		total.merge(res)
	}

	total.Duration = time.Since(start)
	metrics.RecordGenerateDuration(total.Duration.Seconds())
	return total, ctx.Err()
}

// GenerateForLeague generates value bets for one league
func (p *Predictor) GenerateForLeague(ctx context.Context, league string) (*GenerateResult, error) {
	fd, err := p.feeds.Get(league)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := p.generate(ctx, fd)
	if err != nil {
		return nil, err
	}
	res.Duration = time.Since(start)
	metrics.RecordGenerateDuration(res.Duration.Seconds())
	return res, nil
}

func (p *Predictor) generate(ctx context.Context, fd feed.Feed) (*GenerateResult, error) {
	now := p.now().UTC()
	league := fd.League()

	fixtures, err := fd.Fixtures(ctx, now, now.Add(p.cfg.Horizon))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixtures for %s: %w", league, err)
	}

	res := &GenerateResult{}
	for _, game := range fixtures {
		if ctx.Err() != nil {
			break
		}
		if game.IsFinished {
			continue
		}
		res.Fixtures++

		pred, reason, err := p.evaluate(ctx, fd, game)
		if err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"league":  league,
				"game_id": game.GameID,
			}).Warn("Failed to evaluate fixture")
			metrics.RecordFixtureSkipped(reason)
			res.Failed++
			continue
		}

		switch reason {
		case skipInsufficient:
			metrics.RecordFixtureSkipped(reason)
			res.SkippedInsufficient++
			continue
		case skipNoValue:
			metrics.RecordFixtureSkipped(reason)
			res.SkippedNoValue++
			continue
		}

		pred.ID = uuid.New()
		pred.CreatedAt = now
		inserted, err := p.store.Insert(ctx, pred)
		if err != nil {
			p.logger.WithError(err).WithField("event_id", pred.EventID).Error("Failed to store prediction")
			metrics.RecordFixtureSkipped(skipStoreError)
			res.Failed++
			continue
		}
		if !inserted {
			p.predLog.LogPredictionDuplicate(pred)
			metrics.RecordPredictionDuplicate()
			res.Duplicates++
			continue
		}

		p.predLog.LogPredictionStored(pred)
		metrics.RecordPredictionStored(league, string(pred.BetType))
		res.Saved++
		res.Predictions = append(res.Predictions, pred)
	}

	p.logger.WithFields(logrus.Fields{
		"league":               league,
		"fixtures":             res.Fixtures,
		"saved":                res.Saved,
		"duplicates":           res.Duplicates,
		"skipped_insufficient": res.SkippedInsufficient,
		"skipped_no_value":     res.SkippedNoValue,
		"failed":               res.Failed,
	}).Info("Value bet generation completed")

	return res, nil
}

const (
	skipNone         = ""
	skipInsufficient = "insufficient_history"
	skipNoValue      = "no_value"
	skipStatsError   = "stats_error"
	skipStoreError   = "store_error"
)

// evaluate returns the prediction for a fixture, or the reason there is none
func (p *Predictor) evaluate(ctx context.Context, fd feed.Feed, game models.Game) (*models.Prediction, string, error) {
	home, err := p.TeamStats(ctx, fd, game.HomeAbbrev)
	if err != nil {
		return nil, skipStatsError, err
	}
	away, err := p.TeamStats(ctx, fd, game.AwayAbbrev)
	if err != nil {
		return nil, skipStatsError, err
	}

	if !valuebet.HasEnoughMatches(home, away, p.cfg.MinMatches) {
		return nil, skipInsufficient, nil
	}

	pick, ok := p.generator.Generate(home, away, valuebet.FixtureFromGame(game), p.catalog)
	if !ok {
		return nil, skipNoValue, nil
	}
	return pick.Prediction(), skipNone, nil
}

// TeamStats returns a team's home and away statistics, through the cache
func (p *Predictor) TeamStats(ctx context.Context, fd feed.Feed, abbrev string) (*stats.TeamStats, error) {
	return p.cache.GetOrCompute(ctx, fd.League(), abbrev, func(ctx context.Context) (*stats.TeamStats, error) {
		home, err := fd.TeamMatches(ctx, abbrev, models.SplitHome)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch home matches for %s: %w", abbrev, err)
		}
		away, err := fd.TeamMatches(ctx, abbrev, models.SplitAway)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch away matches for %s: %w", abbrev, err)
		}
		ts := p.calculator.TeamStats(home, away)
		return &ts, nil
	})
}
