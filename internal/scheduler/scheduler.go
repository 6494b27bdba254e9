package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs catalog reloads and planning runs on cron specs.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	jobs    int
}

func New(timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	logger := cronLogger{}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		timeout: timeout,
	}
}

// Add registers job under name. An empty spec leaves the job disabled.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		log.Debug().Str("job", name).Msg("scheduled job disabled")
		return nil
	}
	if job == nil {
		return errors.New("scheduler: job is nil")
	}

	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			log.Error().Err(err).Str("job", name).Msg("scheduled job failed")
			return
		}
		log.Info().Str("job", name).Int64("dur_ms", time.Since(start).Milliseconds()).Msg("scheduled job finished")
	})
	if err != nil {
		return fmt.Errorf("scheduler: add %s (%q): %w", name, spec, err)
	}

	s.jobs++
	log.Info().Str("job", name).Str("spec", spec).Msg("scheduled job registered")
	return nil
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return s.jobs
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", s.jobs).Msg("scheduler started")
}

// Stop waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	log.Info().Msg("scheduler stopped")
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Str("component", "cron").Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Str("component", "cron").Fields(keysAndValues).Msg(msg)
}
