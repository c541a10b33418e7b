// Package main provides the puckline command line: value bet generation,
// result reconciliation, league sync, history and the long-running server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/puckline/internal/cache"
	"github.com/yourusername/puckline/internal/config"
	"github.com/yourusername/puckline/internal/database"
	"github.com/yourusername/puckline/internal/feed"
	"github.com/yourusername/puckline/internal/logger"
	"github.com/yourusername/puckline/internal/metrics"
	"github.com/yourusername/puckline/internal/reconcile"
	"github.com/yourusername/puckline/internal/repository"
	"github.com/yourusername/puckline/internal/service"
	"github.com/yourusername/puckline/internal/stats"
	"github.com/yourusername/puckline/internal/valuebet"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var configFile string

// app holds the wired dependencies shared by every subcommand
type app struct {
	cfg        *config.Config
	logger     *logrus.Logger
	db         *database.DB
	repos      *repository.Repositories
	factory    *feed.Factory
	feeds      *feed.Registry
	statsCache *cache.StatsCache
}

var deps *app

var rootCmd = &cobra.Command{
	Use:   "puckline",
	Short: "Hockey value bet screener",
	Long: `Screens upcoming hockey fixtures for value bets on team and match totals,
stores them and grades them once results are final.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		deps = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if deps != nil && deps.db != nil {
			deps.db.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	rootCmd.AddCommand(generateCmd, reconcileCmd, syncCmd, historyCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*app, error) {
	// a missing .env is fine outside local development
	_ = godotenv.Load()

	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return nil, err
	}

	log := logger.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	log.WithFields(logrus.Fields{
		"version":     Version,
		"commit":      GitCommit,
		"environment": cfg.App.Environment,
	}).Debug("Configuration loaded")

	metrics.InitRegistry()

	db, err := database.Initialize(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	factory := feed.NewFactory(feed.DefaultHTTPClientConfig(), log).WithLocal(repos.Game.ForLeague)
	feeds, err := factory.NewRegistry(cfg.Leagues)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &app{
		cfg:        cfg,
		logger:     log,
		db:         db,
		repos:      repos,
		factory:    factory,
		feeds:      feeds,
		statsCache: cache.NewStatsCache(cfg.Cache.TTL()),
	}, nil
}

func (a *app) predictor() (*service.Predictor, error) {
	catalog := valuebet.DefaultCatalog()
	if len(a.cfg.OddsCatalog) > 0 {
		entries := make([]valuebet.Entry, 0, len(a.cfg.OddsCatalog))
		for _, e := range a.cfg.OddsCatalog {
			entries = append(entries, valuebet.Entry{
				Category: e.Category,
				Line:     e.Line,
				Over:     e.OverOdds,
				Under:    e.UnderOdds,
			})
		}
		var err error
		if catalog, err = valuebet.CatalogFromEntries(entries); err != nil {
			return nil, fmt.Errorf("invalid odds catalog: %w", err)
		}
	}

	return service.NewPredictor(
		a.feeds,
		a.repos.Prediction,
		a.statsCache,
		stats.NewCalculator(a.cfg.ValueBet.Decay),
		valuebet.NewGenerator(a.cfg.ValueBet.MinValue, a.cfg.ValueBet.MinOdds),
		catalog,
		service.PredictorConfig{
			MinMatches: a.cfg.ValueBet.MinMatches,
			Horizon:    a.cfg.Generate.Horizon(),
		},
		a.logger,
	), nil
}

func (a *app) reconciler() *reconcile.Reconciler {
	var sources []reconcile.GameSource
	for _, fd := range a.feeds.Feeds() {
		sources = append(sources, fd)
	}

	return reconcile.NewReconciler(a.repos.Prediction, sources, reconcile.Config{
		MinAge:      a.cfg.Reconcile.MinAge(),
		MaxAge:      a.cfg.Reconcile.MaxAge(),
		MatchWindow: a.cfg.Reconcile.MatchWindow(),
		Workers:     a.cfg.Reconcile.Workers,
	}, a.logger)
}

// syncService reads the upstream source of every remote league and writes the games table,
// which postgres and use_local leagues are served from.
func (a *app) syncService() (*service.SyncService, error) {
	remote, err := a.factory.NewSyncRegistry(a.cfg.Leagues)
	if err != nil {
		return nil, err
	}
	return service.NewSyncService(remote, a.repos.Game, a.statsCache, a.logger), nil
}
