package domain

import (
	"context"
	"time"
)

// ImportJobStore persists the import job lifecycle.
type ImportJobStore interface {
	Create(ctx context.Context, job *ImportJob) error
	ClaimNext(ctx context.Context) (*ImportJob, error)
	Fail(ctx context.Context, jobID, message string) error
	GetByID(ctx context.Context, jobID string) (*ImportJob, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]ImportJob, error)
	FailStale(ctx context.Context, olderThan time.Duration, message string) (int64, error)
}

// RecipeStore persists finished recipes. InsertForJob stores the recipe as
// a draft of the job owner and completes the job atomically; it returns
// ErrInvalidTransition, storing nothing, when the job is no longer pending.
type RecipeStore interface {
	InsertForJob(ctx context.Context, jobID string, recipe GeneratedRecipe) (string, error)
}

// ImageStore re-hosts images in managed storage.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
	UploadFromURL(ctx context.Context, rawURL string) (string, error)
}
