// Package cache provides a TTL cache for computed team statistics.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/puckline/internal/metrics"
	"github.com/yourusername/puckline/internal/stats"
)

const keySep = "|"

// ComputeFunc produces statistics on a cache miss
type ComputeFunc func(ctx context.Context) (*stats.TeamStats, error)

// StatsCache caches TeamStats per league and team.
// A zero TTL disables caching; every lookup recomputes.
type StatsCache struct {
	cache     *gocache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewStatsCache creates a new stats cache
func NewStatsCache(ttl time.Duration) *StatsCache {
	cleanup := ttl * 2
	if ttl <= 0 {
		cleanup = 0
	}
	return &StatsCache{
		cache: gocache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

func cacheKey(league, abbrev string) string {
	return league + keySep + abbrev
}

// Get retrieves cached statistics
func (sc *StatsCache) Get(league, abbrev string) (*stats.TeamStats, bool) {
	if sc.ttl <= 0 {
		sc.recordLookup(false)
		return nil, false
	}

	sc.mu.RLock()
	result, found := sc.cache.Get(cacheKey(league, abbrev))
	sc.mu.RUnlock()

	if found {
		if ts, ok := result.(*stats.TeamStats); ok {
			sc.recordLookup(true)
			return ts, true
		}
	}

	sc.recordLookup(false)
	return nil, false
}

// Set stores statistics for a team
func (sc *StatsCache) Set(league, abbrev string, ts *stats.TeamStats) {
	if sc.ttl <= 0 || ts == nil {
		return
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.cache.Set(cacheKey(league, abbrev), ts, sc.ttl)
	metrics.UpdateCacheEntries(sc.cache.ItemCount())
}

// GetOrCompute returns cached statistics or computes and stores them.
// Errors from compute are returned and nothing is cached.
func (sc *StatsCache) GetOrCompute(ctx context.Context, league, abbrev string, compute ComputeFunc) (*stats.TeamStats, error) {
	if ts, ok := sc.Get(league, abbrev); ok {
		return ts, nil
	}

	ts, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	sc.Set(league, abbrev, ts)
	return ts, nil
}

// InvalidateTeam removes the entry for one team
func (sc *StatsCache) InvalidateTeam(league, abbrev string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.cache.Delete(cacheKey(league, abbrev))
	metrics.UpdateCacheEntries(sc.cache.ItemCount())
}

// InvalidateLeague removes all entries for a league
func (sc *StatsCache) InvalidateLeague(league string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	prefix := league + keySep
	for k := range sc.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			sc.cache.Delete(k)
		}
	}
	metrics.UpdateCacheEntries(sc.cache.ItemCount())
}

// Clear flushes the entire cache
func (sc *StatsCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.cache.Flush()
	sc.hitCount = 0
	sc.missCount = 0
	metrics.UpdateCacheEntries(0)
}

// Stats returns cache statistics
func (sc *StatsCache) Stats() (hits, misses uint64, ratio float64) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	hits = sc.hitCount
	misses = sc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (sc *StatsCache) ItemCount() int {
	return sc.cache.ItemCount()
}

func (sc *StatsCache) recordLookup(hit bool) {
	sc.mu.Lock()
	if hit {
		sc.hitCount++
	} else {
		sc.missCount++
	}
	sc.mu.Unlock()
	metrics.RecordCacheLookup(hit)
}
