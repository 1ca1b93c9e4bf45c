package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bonchef/internal/domain"
	"bonchef/internal/infra"
)

// terminalWriteTimeout bounds the status write that ends a job, which runs
// even after the worker context is cancelled.
const terminalWriteTimeout = 10 * time.Second

// JobProcessor produces a recipe for a job.
type JobProcessor interface {
	Process(ctx context.Context, job domain.ImportJob) (domain.GeneratedRecipe, error)
}

// Runner processes a claimed job and records the outcome exactly once.
type Runner struct {
	processor JobProcessor
	jobs      domain.ImportJobStore
	recipes   domain.RecipeStore
	metrics   *infra.Metrics
	logger    *infra.Logger
}

func NewRunner(processor JobProcessor, jobs domain.ImportJobStore, recipes domain.RecipeStore, metrics *infra.Metrics, logger *infra.Logger) *Runner {
	return &Runner{
		processor: processor,
		jobs:      jobs,
		recipes:   recipes,
		metrics:   metrics,
		logger:    infra.LoggerOrDiscard(logger),
	}
}

// Run processes job, then either stores the recipe and completes the job in
// one write or fails the job with a user-safe message. The returned error
// only reports store failures; a failed import is a handled outcome.
func (r *Runner) Run(ctx context.Context, job domain.ImportJob) error {
	start := time.Now()
	log := r.logger.With().Str("job_id", job.ID).Str("source_type", string(job.SourceType)).Logger()

	recipe, err := r.processor.Process(ctx, job)
	if err != nil {
		return r.fail(ctx, job, toImportError(err).Message, start)
	}

	writeCtx, cancel := terminalContext(ctx)
	defer cancel()
	recipeID, err := r.recipes.InsertForJob(writeCtx, job.ID, recipe)
	if errors.Is(err, domain.ErrInvalidTransition) {
		r.metrics.ObserveImport(string(job.SourceType), "error", time.Since(start))
		log.Warn().Msg("importer: job finished elsewhere, recipe discarded")
		return fmt.Errorf("complete job %s: %w", job.ID, err)
	}
	if err != nil {
		log.Error().Err(err).Msg("importer: insert recipe failed")
		return r.fail(ctx, job, msgSaveFailed, start)
	}

	r.metrics.ObserveImport(string(job.SourceType), string(domain.JobStatusCompleted), time.Since(start))
	log.Info().Str("recipe_id", recipeID).Dur("took", time.Since(start)).Msg("importer: job completed")
	return nil
}

func (r *Runner) fail(ctx context.Context, job domain.ImportJob, message string, start time.Time) error {
	r.metrics.ObserveImport(string(job.SourceType), string(domain.JobStatusFailed), time.Since(start))
	writeCtx, cancel := terminalContext(ctx)
	defer cancel()
	if err := r.jobs.Fail(writeCtx, job.ID, message); err != nil {
		return fmt.Errorf("fail job %s: %w", job.ID, err)
	}
	r.logger.Info().Str("job_id", job.ID).Str("message", message).Dur("took", time.Since(start)).Msg("importer: job failed")
	return nil
}

// terminalContext detaches from worker shutdown so a claimed job is never
// left pending.
func terminalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), terminalWriteTimeout)
}
