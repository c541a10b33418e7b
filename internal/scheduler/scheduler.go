// Package scheduler runs the generate, sync and reconcile jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// JobFunc is one scheduled unit of work
type JobFunc func(ctx context.Context) error

// Scheduler manages cron jobs. A job still running when its next tick fires is skipped.
type Scheduler struct {
	cron            *cron.Cron
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          map[string]cron.EntryID
	gracefulTimeout time.Duration
	baseCtx         context.Context
	cancel          context.CancelFunc
}

// NewScheduler creates a new scheduler in UTC
func NewScheduler(logger *logrus.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
		),
		logger:          logger,
		jobIDs:          make(map[string]cron.EntryID),
		gracefulTimeout: 30 * time.Second,
		baseCtx:         ctx,
		cancel:          cancel,
	}
}

// Schedule registers job under name. Each run gets its own timeout.
func (s *Scheduler) Schedule(name, cronExpression string, timeout time.Duration, job JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if _, exists := s.jobIDs[name]; exists {
		return fmt.Errorf("job %q already scheduled", name)
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.wrap(name, timeout, job))
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}

	s.jobIDs[name] = entryID
	s.logger.WithFields(logrus.Fields{
		"job":      name,
		"schedule": cronExpression,
	}).Info("Scheduled job")

	return nil
}

func (s *Scheduler) wrap(name string, timeout time.Duration, job JobFunc) func() {
	return func() {
		ctx := s.baseCtx
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		entry := s.logger.WithField("job", name)
		entry.Debug("Job started")

		if err := job(ctx); err != nil {
			entry.WithError(err).WithField("duration", time.Since(start)).Error("Job failed")
			return
		}
		entry.WithField("duration", time.Since(start)).Info("Job completed")
	}
}

// RunNow executes a scheduled job synchronously, outside its schedule
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	id, ok := s.jobIDs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not scheduled", name)
	}

	entry := s.cron.Entry(id)
	if !entry.Valid() {
		return fmt.Errorf("job %q has no valid entry", name)
	}
	entry.WrappedJob.Run()
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return errors.New("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return errors.New("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop cancels running jobs and waits for them, up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	done := s.cron.Stop().Done()
	s.cancel()
	s.isRunning = false

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return errors.New("timed out waiting for running jobs")
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the next activation of the named job, zero if unknown or stopped
func (s *Scheduler) NextRun(name string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.jobIDs[name]
	if !ok || !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Jobs lists scheduled job names
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobIDs))
	for name := range s.jobIDs {
		names = append(names, name)
	}
	return names
}
