// Package scheduler refreshes the dividend forecast on a cron schedule and
// keeps the most recent result for cheap reads.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
)

// ForecastFunc produces a fresh dividend summary.
type ForecastFunc func(ctx context.Context) (model.PortfolioSummary, error)

// Scheduler runs a ForecastFunc periodically and stores its last successful result.
type Scheduler struct {
	cron    *cron.Cron
	job     ForecastFunc
	timeout time.Duration
	log     zerolog.Logger

	mu      sync.RWMutex
	last    *model.PortfolioSummary
	lastErr error
	lastRun time.Time
}

// New creates a Scheduler. timeout bounds a single refresh.
func New(job ForecastFunc, timeout time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		job:     job,
		timeout: timeout,
		log:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the refresh job under schedule (standard five-field cron
// syntax or descriptors such as "@hourly") and starts the cron loop.
// An empty schedule leaves the scheduler idle.
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		s.log.Info().Msg("No refresh schedule configured, scheduled refresh disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.RunNow(context.Background()) }); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("schedule", schedule).Msg("Scheduled dividend refresh started")
	return nil
}

// Stop stops the cron loop and waits for a running refresh to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("Scheduler stopped before running refresh completed")
	}
}

// RunNow performs one refresh. A failed refresh keeps the previous summary.
func (s *Scheduler) RunNow(ctx context.Context) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	summary, err := s.job(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = start
	s.lastErr = err
	if err != nil {
		s.log.Error().Err(err).Msg("Scheduled dividend refresh failed")
		return
	}
	s.last = &summary
	s.log.Info().
		Dur("duration", time.Since(start)).
		Str("total_expected", summary.Display).
		Msg("Scheduled dividend refresh complete")
}

// Last returns the most recent successful summary, if any.
func (s *Scheduler) Last() (model.PortfolioSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return model.PortfolioSummary{}, false
	}
	return *s.last, true
}

// Status reports when the last refresh ran and how it ended.
func (s *Scheduler) Status() (lastRun time.Time, lastErr error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.lastErr
}
