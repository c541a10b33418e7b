package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/puckline/internal/health"
	"github.com/yourusername/puckline/internal/metrics"
	"github.com/yourusername/puckline/internal/scheduler"
	"github.com/yourusername/puckline/internal/service"
)

var (
	generateLeague string
	syncDays       int
	historyDate    string
	historyJSON    bool
)

func init() {
	generateCmd.Flags().StringVar(&generateLeague, "league", "", "Generate for one league only")
	syncCmd.Flags().IntVar(&syncDays, "days", 7, "Days back and ahead of today to sync")
	historyCmd.Flags().StringVar(&historyDate, "date", "", "Day to show as YYYY-MM-DD (default yesterday)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print JSON")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Screen upcoming fixtures and store value bets",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := deps.predictor()
		if err != nil {
			return err
		}

		var res *service.GenerateResult
		if generateLeague != "" {
			res, err = p.GenerateForLeague(cmd.Context(), generateLeague)
		} else {
			res, err = p.Run(cmd.Context())
		}
		if err != nil {
			return err
		}

		fmt.Printf("Fixtures: %d  Saved: %d  Duplicates: %d  Insufficient history: %d  No value: %d  Failed: %d\n",
			res.Fixtures, res.Saved, res.Duplicates, res.SkippedInsufficient, res.SkippedNoValue, res.Failed)
		for _, pred := range res.Predictions {
			fmt.Printf("  %s  %-40s @ %.2f  value %.1f%%\n",
				pred.Scheduled.Format("2006-01-02 15:04"), pred.BetLabel, pred.Odds, pred.ValuePercentage)
		}
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Grade pending predictions whose games have finished",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := deps.reconciler().Sweep(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Eligible: %d  Checked: %d  Won: %d  Lost: %d  Unmatched: %d  Failed: %d\n",
			res.Eligible, res.Checked, res.Won, res.Lost, res.Unmatched, res.Failed)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy league fixtures and results into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now().UTC()
		from := now.AddDate(0, 0, -syncDays)
		to := now.AddDate(0, 0, syncDays)

		syncSvc, err := deps.syncService()
		if err != nil {
			return err
		}
		results, err := syncSvc.SyncAll(cmd.Context(), from, to)
		for _, r := range results {
			fmt.Printf("%-6s fetched %d, finished %d, written %d\n", r.League, r.Fetched, r.Finished, r.Written)
		}
		return err
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show predictions of a day with their outcome",
	RunE: func(cmd *cobra.Command, args []string) error {
		var day time.Time
		if historyDate != "" {
			parsed, err := time.Parse("2006-01-02", historyDate)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", historyDate, err)
			}
			day = parsed
		}

		h, err := service.NewHistoryService(deps.repos.Prediction).Day(cmd.Context(), day)
		if err != nil {
			return err
		}

		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(h)
		}

		fmt.Printf("%s: %d predictions, %d won, %d lost, %d pending (win rate %.1f%%)\n",
			h.Date, h.Summary.Total, h.Summary.Won, h.Summary.Lost, h.Summary.Pending, h.Summary.WinRate)
		for _, p := range h.Predictions {
			result := "pending"
			if p.ActualResult != nil {
				result = *p.ActualResult
			}
			fmt.Printf("  %-6s %-40s @ %.2f  %-8s %s\n", p.League, p.BetLabel, p.Odds, p.State(), result)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled generation, sync and reconciliation with health and metrics endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := deps.cfg

		p, err := deps.predictor()
		if err != nil {
			return err
		}
		rec := deps.reconciler()
		syncSvc, err := deps.syncService()
		if err != nil {
			return err
		}

		sched := scheduler.NewScheduler(deps.logger)
		if err := sched.Schedule("generate", cfg.Generate.Schedule, 30*time.Minute, func(ctx context.Context) error {
			_, err := p.Run(ctx)
			return err
		}); err != nil {
			return err
		}
		if err := sched.Schedule("reconcile", cfg.Reconcile.Schedule, 30*time.Minute, func(ctx context.Context) error {
			_, err := rec.Sweep(ctx)
			return err
		}); err != nil {
			return err
		}
		// sync before each reconcile window so Postgres-backed leagues see fresh results
		if err := sched.Schedule("sync", "@every 1h", 15*time.Minute, func(ctx context.Context) error {
			now := time.Now().UTC()
			_, err := syncSvc.SyncAll(ctx, now.AddDate(0, 0, -2), now.Add(cfg.Generate.Horizon()))
			return err
		}); err != nil {
			return err
		}

		port := cfg.Metrics.Port
		if port == 0 {
			port = 8080
		}
		serverCfg := health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Addr:        ":" + strconv.Itoa(port),
			Logger:      deps.logger,
			DB:          deps.db,
			History:     service.NewHistoryService(deps.repos.Prediction),
		}
		if cfg.Metrics.Enabled {
			serverCfg.MetricsPath = cfg.Metrics.Path
			serverCfg.MetricsHandler = metrics.Handler()
		}
		server := health.NewServer(serverCfg)
		if err := server.Start(ctx); err != nil {
			return err
		}

		if err := sched.Start(); err != nil {
			return err
		}
		server.SetReady(true)

		<-ctx.Done()
		server.SetReady(false)
		deps.logger.Info("Shutting down")
		return sched.Stop()
	},
}
