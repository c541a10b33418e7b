package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/puckline/internal/cache"
	"github.com/yourusername/puckline/internal/metrics"
	"github.com/yourusername/puckline/internal/models"
)

// GameWriter persists fetched games
type GameWriter interface {
	Upsert(ctx context.Context, games []models.Game) (int, error)
}

// SyncResult tallies one league sync
type SyncResult struct {
	League   string
	Fetched  int
	Finished int
	Written  int
	Duration time.Duration
}

// SyncService copies league fixtures and results from remote feeds into the games table
type SyncService struct {
	feeds  FeedSource
	store  GameWriter
	cache  *cache.StatsCache
	logger *logrus.Logger
}

// NewSyncService creates a sync service. statsCache may be nil.
func NewSyncService(feeds FeedSource, store GameWriter, statsCache *cache.StatsCache, logger *logrus.Logger) *SyncService {
	return &SyncService{
		feeds:  feeds,
		store:  store,
		cache:  statsCache,
		logger: logger,
	}
}

// SyncLeague fetches games within [from, to] for one league and upserts them
func (s *SyncService) SyncLeague(ctx context.Context, league string, from, to time.Time) (*SyncResult, error) {
	start := time.Now()

	fd, err := s.feeds.Get(league)
	if err != nil {
		return nil, err
	}

	games, err := fd.Fixtures(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch games for %s: %w", league, err)
	}

	res := &SyncResult{League: league, Fetched: len(games)}
	for _, g := range games {
		if g.HasFinalScore() {
			res.Finished++
		}
	}

	written, err := s.store.Upsert(ctx, games)
	if err != nil {
		return nil, fmt.Errorf("failed to store games for %s: %w", league, err)
	}
	res.Written = written

	// new results change every team's statistics
	if s.cache != nil && res.Finished > 0 {
		s.cache.InvalidateLeague(league)
	}

	res.Duration = time.Since(start)
	metrics.RecordSync(league, time.Now().Unix())

	s.logger.WithFields(logrus.Fields{
		"league":   league,
		"fetched":  res.Fetched,
		"finished": res.Finished,
		"written":  res.Written,
		"from":     from.Format(time.RFC3339),
		"to":       to.Format(time.RFC3339),
	}).Info("League sync completed")

	return res, nil
}

// SyncAll syncs every league; one league failing does not stop the others
func (s *SyncService) SyncAll(ctx context.Context, from, to time.Time) ([]*SyncResult, error) {
	var results []*SyncResult
	var failed []string

	for _, fd := range s.feeds.Feeds() {
		res, err := s.SyncLeague(ctx, fd.League(), from, to)
		if err != nil {
			s.logger.WithError(err).WithField("league", fd.League()).Error("League sync failed")
			failed = append(failed, fd.League())
			continue
		}
		results = append(results, res)
	}

	if len(failed) > 0 {
		return results, fmt.Errorf("sync failed for leagues: %v", failed)
	}
	return results, nil
}
