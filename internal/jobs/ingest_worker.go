package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/docuchat-labs/docuchat/internal/domain"
)

const (
	// MaxRetries is the maximum number of attempts for a failed ingest job
	MaxRetries = 3
)

// JobStore defines the interface for ingest job state
type JobStore interface {
	// GetPendingJobs retrieves and claims pending ingest jobs
	GetPendingJobs() ([]QueuedJob, error)

	// CompleteJob marks a job completed with its indexed chunk count
	CompleteJob(jobID string, chunks int) error

	// UpdateJobStatus transitions a job to the given status
	UpdateJobStatus(jobID string, status domain.IngestJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(jobID string) error
}

// DocumentIngester defines the interface for running the ingest pipeline
// on a single document
type DocumentIngester interface {
	IngestDocument(ctx context.Context, doc *domain.Document) (int, error)
}

// IngestWorker processes queued ingest jobs
type IngestWorker struct {
	store    JobStore
	ingester DocumentIngester
}

// NewIngestWorker creates a new IngestWorker instance
func NewIngestWorker(store JobStore, ingester DocumentIngester) *IngestWorker {
	return &IngestWorker{
		store:    store,
		ingester: ingester,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *IngestWorker) ProcessJobs(ctx context.Context) error {
	queued, err := w.store.GetPendingJobs()
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(queued) == 0 {
		return nil
	}

	log.Printf("Processing %d pending ingest jobs", len(queued))

	for _, item := range queued {
		if err := w.processJob(ctx, item); err != nil {
			log.Printf("Error processing job %s: %v", item.Job.ID, err)
		}
	}

	return nil
}

func (w *IngestWorker) processJob(ctx context.Context, item QueuedJob) error {
	job := item.Job
	log.Printf("Processing job %s for document %s", job.ID, job.DocumentID)

	chunks, err := w.ingester.IngestDocument(ctx, item.Document)
	if err != nil {
		return w.handleJobFailure(job, err)
	}

	if err := w.store.CompleteJob(job.ID, chunks); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	log.Printf("Job %s completed: %d chunks indexed", job.ID, chunks)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *IngestWorker) handleJobFailure(job domain.IngestJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.store.IncrementRetries(job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.store.UpdateJobStatus(job.ID, domain.IngestJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.store.UpdateJobStatus(job.ID, domain.IngestJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
