package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"bonchef/internal/domain"
	"bonchef/internal/infra"
)

// StaleJobMessage is stored on jobs that stayed pending for too long.
const StaleJobMessage = "De import is verlopen. Probeer het opnieuw."

// JobRunner handles one claimed job.
type JobRunner interface {
	Run(ctx context.Context, job domain.ImportJob) error
}

// WorkerOptions configures a Worker.
type WorkerOptions struct {
	PollInterval  time.Duration
	StaleAfter    time.Duration
	SweepSchedule string
	Logger        *infra.Logger
}

// Worker claims pending jobs one at a time and hands them to a JobRunner.
type Worker struct {
	jobs          domain.ImportJobStore
	runner        JobRunner
	poll          time.Duration
	staleAfter    time.Duration
	sweepSchedule string
	logger        *infra.Logger
	sleep         func(context.Context, time.Duration) error
}

func NewWorker(jobs domain.ImportJobStore, runner JobRunner, opts WorkerOptions) *Worker {
	w := &Worker{
		jobs:          jobs,
		runner:        runner,
		poll:          opts.PollInterval,
		staleAfter:    opts.StaleAfter,
		sweepSchedule: opts.SweepSchedule,
		logger:        infra.LoggerOrDiscard(opts.Logger),
		sleep:         sleepContext,
	}
	if w.poll <= 0 {
		w.poll = 2 * time.Second
	}
	if w.staleAfter <= 0 {
		w.staleAfter = 30 * time.Minute
	}
	if w.sweepSchedule == "" {
		w.sweepSchedule = "@every 5m"
	}
	return w
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Dur("poll", w.poll).Msg("worker: started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		worked, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("worker: iteration failed")
		}
		if worked && err == nil {
			continue
		}
		if err := w.sleep(ctx, w.poll); err != nil {
			return err
		}
	}
}

// RunOnce claims and runs at most one job. It reports whether a job was
// claimed.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.jobs.ClaimNext(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("claim job: %w", err)
	}
	w.logger.Info().
		Str("job_id", job.ID).
		Str("source_type", string(job.SourceType)).
		Msg("worker: picked job")
	if err := w.runner.Run(ctx, *job); err != nil {
		return true, err
	}
	return true, nil
}

// SweepStale fails jobs that have been pending longer than the stale age.
func (w *Worker) SweepStale(ctx context.Context) (int64, error) {
	n, err := w.jobs.FailStale(ctx, w.staleAfter, StaleJobMessage)
	if err != nil {
		return 0, fmt.Errorf("sweep stale jobs: %w", err)
	}
	if n > 0 {
		w.logger.Warn().Int64("jobs", n).Dur("older_than", w.staleAfter).Msg("worker: failed stale jobs")
	}
	return n, nil
}

// StartSweeper schedules SweepStale. Stop the returned cron on shutdown.
func (w *Worker) StartSweeper(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(w.sweepSchedule, func() {
		if _, err := w.SweepStale(ctx); err != nil {
			w.logger.Error().Err(err).Msg("worker: stale sweep failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule stale sweep %q: %w", w.sweepSchedule, err)
	}
	c.Start()
	return c, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
