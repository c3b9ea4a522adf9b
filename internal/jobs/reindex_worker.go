package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/cloo-solutions/finrag/internal/service"
	"github.com/cloo-solutions/finrag/internal/telemetry"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3

	claimLimit = 100
)

// IndexJobRepository defines the interface for index job persistence
type IndexJobRepository interface {
	// ClaimPending moves pending jobs to processing and returns them
	ClaimPending(ctx context.Context, limit int) ([]*domain.IndexJob, error)

	UpdateStatus(ctx context.Context, id string, status domain.IndexJobStatus, errMsg string) error

	IncrementRetries(ctx context.Context, id string) error
}

// IndexBuilder rebuilds the whole vector index
type IndexBuilder interface {
	Build(ctx context.Context) (*service.BuildReport, error)
}

// ReindexWorker folds every pending index job into a single rebuild.
type ReindexWorker struct {
	repo    IndexJobRepository
	builder IndexBuilder
}

// NewReindexWorker creates a new ReindexWorker instance
func NewReindexWorker(repo IndexJobRepository, builder IndexBuilder) *ReindexWorker {
	return &ReindexWorker{
		repo:    repo,
		builder: builder,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *ReindexWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, claimLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, "ReindexWorker.ProcessJobs", telemetry.SpanAttributes{
		JobID:     jobs[0].ID,
		Operation: "reindex",
	})
	defer span.End()

	log.Printf("rebuilding index for %d pending jobs", len(jobs))

	report, buildErr := w.builder.Build(ctx)
	if buildErr != nil {
		span.SetError(buildErr)
		for _, job := range jobs {
			if err := w.handleJobFailure(ctx, job, buildErr); err != nil {
				log.Printf("error updating job %s: %v", job.ID, err)
			}
		}
		return nil
	}

	for _, job := range jobs {
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.IndexJobStatusCompleted, ""); err != nil {
			log.Printf("error updating job %s: %v", job.ID, err)
		}
	}

	log.Printf("reindex completed: %d documents, %d chunks", report.Documents, report.Chunks)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *ReindexWorker) handleJobFailure(ctx context.Context, job *domain.IndexJob, jobErr error) error {
	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.IndexJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.IndexJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
