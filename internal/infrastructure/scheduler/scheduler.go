// Package scheduler runs the periodic delinquency sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iho/goloan/internal/usecase"
)

// Sweeper evaluates the portfolio as of a point in time.
type Sweeper interface {
	Sweep(ctx context.Context, asOf time.Time) (*usecase.SweepReport, error)
}

// Scheduler triggers Sweeper on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  zerolog.Logger
	timeout time.Duration
	now     func() time.Time
}

// Config for Scheduler.
type Config struct {
	// Spec is a standard five-field cron expression evaluated in UTC.
	Spec    string
	Sweeper Sweeper
	Logger  *zerolog.Logger
	// Timeout bounds one sweep; zero means one minute.
	Timeout time.Duration
}

// New validates the schedule and registers the sweep job.
func New(cfg Config) (*Scheduler, error) {
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}

	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		sweeper: cfg.Sweeper,
		logger:  logger.With().Str("component", "delinquency_sweep").Logger(),
		timeout: cfg.Timeout,
		now:     time.Now,
	}

	if _, err := s.cron.AddFunc(cfg.Spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", cfg.Spec, err)
	}
	return s, nil
}

// Start runs the scheduler until ctx is cancelled, then waits for a
// running sweep to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info().Time("next_run", s.NextRun()).Msg("sweep scheduler started")

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("sweep scheduler stopped")
	return ctx.Err()
}

// NextRun reports when the sweep fires next. Zero before Start.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce performs a single sweep as of now.
func (s *Scheduler) RunOnce(ctx context.Context) *usecase.SweepReport {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.sweeper.Sweep(ctx, s.now().UTC())
	if err != nil {
		s.logger.Error().Err(err).Msg("delinquency sweep failed")
		return nil
	}

	s.logger.Info().
		Int("scanned", report.Scanned).
		Int("delinquent", report.Delinquent).
		Int("max_days_in_arrears", report.MaxDaysInArrears).
		Str("overdue_total", report.OverdueTotal.String()).
		Msg("delinquency sweep completed")
	return report
}
