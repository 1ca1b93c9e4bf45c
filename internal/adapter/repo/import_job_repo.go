package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bonchef/internal/domain"
	"bonchef/internal/infra"
	"bonchef/internal/sqlinline"
)

// TooManyQueuedMessage is shown when the vertical video queue is full.
const TooManyQueuedMessage = "Er staan al te veel video-imports in de wachtrij. Probeer het later opnieuw."

// ImportJobRepositoryPG implements domain.ImportJobStore.
type ImportJobRepositoryPG struct {
	db         infra.SQLExecutor
	maxPending int
}

// NewImportJobRepository creates a job repository backed by PostgreSQL.
// maxPendingVideo caps the pending vertical video jobs; zero disables the cap.
func NewImportJobRepository(db infra.SQLExecutor, maxPendingVideo int) *ImportJobRepositoryPG {
	return &ImportJobRepositoryPG{db: db, maxPending: maxPendingVideo}
}

// Create inserts a pending job. Vertical video jobs are refused once the
// queue holds maxPending of them; the count and the insert are separate
// statements, so the cap is soft under concurrent creation.
func (r *ImportJobRepositoryPG) Create(ctx context.Context, job *domain.ImportJob) error {
	if job == nil {
		return domain.ErrInvalidPayload
	}
	if _, ok := domain.ParseSourceType(string(job.SourceType)); !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedSourceType, job.SourceType)
	}
	if strings.TrimSpace(job.UserID) == "" || strings.TrimSpace(job.SourceData) == "" {
		return domain.ErrInvalidPayload
	}

	if job.SourceType == domain.SourceVerticalVideo && r.maxPending > 0 {
		var pending int64
		if err := r.db.QueryRow(ctx, sqlinline.QCountPendingImportJobsByType, string(domain.SourceVerticalVideo)).Scan(&pending); err != nil {
			return fmt.Errorf("count pending video jobs: %w", err)
		}
		if pending >= int64(r.maxPending) {
			return domain.NewImportError(domain.ErrTooManyQueued, TooManyQueuedMessage, nil)
		}
	}

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, sqlinline.QInsertImportJob,
		job.ID,
		job.UserID,
		string(job.SourceType),
		job.SourceData,
	).Scan(&createdAt); err != nil {
		return fmt.Errorf("insert import job: %w", err)
	}
	job.Status = domain.JobStatusPending
	job.CreatedAt = createdAt
	job.RecipeID = nil
	job.ErrorMessage = nil
	job.ClaimedAt = nil
	return nil
}

// ClaimNext marks the oldest unclaimed pending job as claimed and returns it.
// It returns domain.ErrNotFound when the queue is empty.
func (r *ImportJobRepositoryPG) ClaimNext(ctx context.Context) (*domain.ImportJob, error) {
	job, err := scanImportJob(r.db.QueryRow(ctx, sqlinline.QClaimNextImportJob))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("claim import job: %w", err)
	}
	return job, nil
}

// Fail moves a pending job to failed with a user facing message.
func (r *ImportJobRepositoryPG) Fail(ctx context.Context, jobID, message string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QFailImportJob, jobID, message)
	if err != nil {
		return fmt.Errorf("fail import job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %s is not pending", domain.ErrInvalidTransition, jobID)
	}
	return nil
}

// GetByID fetches a job by its identifier.
func (r *ImportJobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, domain.ErrNotFound
	}
	job, err := scanImportJob(r.db.QueryRow(ctx, sqlinline.QSelectImportJobByID, jobID))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListByUser returns the newest jobs of a user.
func (r *ImportJobRepositoryPG) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ImportJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, sqlinline.QListImportJobsByUser, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]domain.ImportJob, 0, limit)
	for rows.Next() {
		job, err := scanImportJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// FailStale fails every pending job created more than olderThan ago.
func (r *ImportJobRepositoryPG) FailStale(ctx context.Context, olderThan time.Duration, message string) (int64, error) {
	tag, err := r.db.Exec(ctx, sqlinline.QFailStaleImportJobs, olderThan.Seconds(), message)
	if err != nil {
		return 0, fmt.Errorf("fail stale import jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanImportJob(row pgx.Row) (*domain.ImportJob, error) {
	var (
		job        domain.ImportJob
		sourceType string
		status     string
	)
	if err := row.Scan(
		&job.ID,
		&job.UserID,
		&sourceType,
		&job.SourceData,
		&status,
		&job.RecipeID,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.ClaimedAt,
	); err != nil {
		return nil, err
	}
	job.SourceType = domain.SourceType(sourceType)
	job.Status = domain.JobStatus(status)
	return &job, nil
}

var _ domain.ImportJobStore = (*ImportJobRepositoryPG)(nil)
