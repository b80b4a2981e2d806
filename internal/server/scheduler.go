package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/courtside/internal/feed"
)

// Job is a scheduled unit of work.
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs jobs on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// NewScheduler creates a scheduler using standard five-field cron specs and
// descriptors such as "@hourly" or "@every 30m".
func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job on schedule.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("Running job")

		if err := job.Run(); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Msg("Job failed")
		} else {
			s.log.Debug().Str("job", job.Name()).Msg("Job completed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", schedule, err)
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

// RefreshJob refetches seasons into the cache regardless of TTL.
type RefreshJob struct {
	Loader  *feed.Loader
	Seasons []string
	// Timeout bounds one run; zero means five minutes.
	Timeout time.Duration
	Log     zerolog.Logger
}

// Name identifies the job in logs.
func (j *RefreshJob) Name() string { return "refresh_seasons" }

// Run refreshes every season one at a time, which keeps the upstream
// request delay meaningful. Failed seasons are joined into the error.
func (j *RefreshJob) Run() error {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	results, err := feed.FetchSeasons(ctx, j.Loader, j.Seasons, 1, true)
	if err != nil {
		return err
	}
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Season, res.Err))
			continue
		}
		j.Log.Info().
			Str("season", res.Season).
			Int("rows", res.Rows).
			Bool("stale", res.Stale).
			Msg("season refreshed")
	}
	return errors.Join(errs...)
}
