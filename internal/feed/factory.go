package feed

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/puckline/internal/config"
)

// Source types
const (
	NHLWebSource   = "nhl_web"
	PostgresSource = "postgres"
)

// LocalFeedFunc builds a feed backed by the local games table
type LocalFeedFunc func(league string) Feed

// Factory creates Feed implementations based on configuration
type Factory struct {
	logger  *logrus.Logger
	httpCfg HTTPClientConfig
	local   LocalFeedFunc
	// remote feeds are shared so serving and sync see one rate limiter and breaker per league
	remote map[string]Feed
}

// NewFactory creates a new feed factory
func NewFactory(httpCfg HTTPClientConfig, logger *logrus.Logger) *Factory {
	return &Factory{
		logger:  logger,
		httpCfg: httpCfg,
		remote:  make(map[string]Feed),
	}
}

// WithLocal enables the postgres source
func (f *Factory) WithLocal(fn LocalFeedFunc) *Factory {
	f.local = fn
	return f
}

// NewFeed creates the Feed that serves one league. Leagues with use_local read the games table.
func (f *Factory) NewFeed(cfg config.LeagueConfig) (Feed, error) {
	if cfg.ServedLocally() {
		if cfg.Remote() {
			if _, err := f.remoteFeed(cfg); err != nil {
				return nil, err
			}
		}
		if f.local == nil {
			return nil, fmt.Errorf("%w: %s requires a database", ErrUnknownProvider, PostgresSource)
		}
		return f.local(cfg.Name), nil
	}
	return f.remoteFeed(cfg)
}

// remoteFeed creates, once per league, the feed reading the upstream source
func (f *Factory) remoteFeed(cfg config.LeagueConfig) (Feed, error) {
	if fd, ok := f.remote[cfg.Name]; ok {
		return fd, nil
	}

	switch cfg.Source {
	case NHLWebSource:
		httpCfg := f.httpCfg
		if cfg.RateLimit > 0 {
			httpCfg.RateLimit = cfg.RateLimit
		}
		client := NewRateLimitedHTTPClient(httpCfg, f.logger)
		fd := NewNHLClient(client, cfg.Name, cfg.BaseURL, cfg.Season, f.logger)
		f.remote[cfg.Name] = fd
		return fd, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Source)
	}
}

// NewSyncRegistry creates the upstream feeds of all enabled remote leagues.
// Sync copies from these into the games table that local feeds read.
func (f *Factory) NewSyncRegistry(leagues []config.LeagueConfig) (*Registry, error) {
	reg := NewRegistry()
	for _, leagueCfg := range leagues {
		if !leagueCfg.Enabled || !leagueCfg.Remote() {
			continue
		}
		fd, err := f.remoteFeed(leagueCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create sync feed for %s: %w", leagueCfg.Name, err)
		}
		reg.Register(fd)
	}
	return reg, nil
}

// NewRegistry creates feeds for all enabled leagues
func (f *Factory) NewRegistry(leagues []config.LeagueConfig) (*Registry, error) {
	reg := NewRegistry()

	for _, leagueCfg := range leagues {
		if !leagueCfg.Enabled {
			f.logger.WithField("league", leagueCfg.Name).Debug("Skipping disabled league")
			continue
		}

		fd, err := f.NewFeed(leagueCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create feed for %s: %w", leagueCfg.Name, err)
		}
		reg.Register(fd)

		f.logger.WithFields(logrus.Fields{
			"league":    leagueCfg.Name,
			"source":    leagueCfg.Source,
			"use_local": leagueCfg.UseLocal,
		}).Info("Created feed")
	}

	if reg.Len() == 0 {
		return nil, fmt.Errorf("no enabled leagues configured")
	}

	return reg, nil
}

// Registry maps league codes to their feeds
type Registry struct {
	feeds map[string]Feed
}

// NewRegistry creates an empty registry
func NewRegistry(feeds ...Feed) *Registry {
	r := &Registry{feeds: make(map[string]Feed)}
	for _, fd := range feeds {
		r.Register(fd)
	}
	return r
}

// Register adds or replaces the feed for its league
func (r *Registry) Register(fd Feed) {
	r.feeds[fd.League()] = fd
}

// Get returns the feed for a league
func (r *Registry) Get(league string) (Feed, error) {
	fd, ok := r.feeds[league]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLeague, league)
	}
	return fd, nil
}

// Feeds returns all feeds ordered by league
func (r *Registry) Feeds() []Feed {
	out := make([]Feed, 0, len(r.feeds))
	for _, fd := range r.feeds {
		out = append(out, fd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].League() < out[j].League() })
	return out
}

// Len returns the number of registered feeds
func (r *Registry) Len() int {
	return len(r.feeds)
}
