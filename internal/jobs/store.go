package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docuchat-labs/docuchat/internal/domain"
)

// QueuedJob pairs an ingest job with the document it carries. The
// document payload lives only in the queue; once the job leaves the
// pending state the text is dropped and only the job record remains.
type QueuedJob struct {
	Job      domain.IngestJob
	Document *domain.Document
}

// Store is an in-memory ingest job queue. Jobs are enqueued by the API
// and claimed by the polling worker.
type Store struct {
	mu      sync.Mutex
	jobs    map[string]*domain.IngestJob
	pending map[string]*domain.Document
	order   []string
	now     func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		jobs:    make(map[string]*domain.IngestJob),
		pending: make(map[string]*domain.Document),
		now:     time.Now,
	}
}

// Enqueue registers a document for asynchronous ingestion and returns
// the created job.
func (s *Store) Enqueue(doc *domain.Document) domain.IngestJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := domain.NewIngestJob(uuid.NewString(), doc.ID, doc.Name, s.now())
	s.jobs[job.ID] = job
	s.pending[job.ID] = doc
	s.order = append(s.order, job.ID)
	return *job
}

// Get returns a snapshot of the job with the given ID.
func (s *Store) Get(jobID string) (domain.IngestJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return domain.IngestJob{}, domain.ErrIngestJobNotFound
	}
	return *job, nil
}

// GetPendingJobs claims all pending jobs, marking them processing, and
// returns them with their document payloads in enqueue order.
func (s *Store) GetPendingJobs() ([]QueuedJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var claimed []QueuedJob
	for _, id := range s.order {
		job := s.jobs[id]
		if job.Status != domain.IngestJobStatusPending {
			continue
		}
		job.Status = domain.IngestJobStatusProcessing
		claimed = append(claimed, QueuedJob{Job: *job, Document: s.pending[id]})
	}
	return claimed, nil
}

// CompleteJob marks a job completed with the number of chunks indexed
// and releases its document payload.
func (s *Store) CompleteJob(jobID string, chunks int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return domain.ErrIngestJobNotFound
	}
	now := s.now()
	job.Status = domain.IngestJobStatusCompleted
	job.Chunks = chunks
	job.Error = ""
	job.ProcessedAt = &now
	delete(s.pending, jobID)
	return nil
}

// UpdateJobStatus transitions a job to the given status. Moving a job
// back to pending re-queues its document; marking it failed drops the
// payload.
func (s *Store) UpdateJobStatus(jobID string, status domain.IngestJobStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return domain.ErrIngestJobNotFound
	}
	job.Status = status
	job.Error = errMsg
	if status == domain.IngestJobStatusFailed {
		now := s.now()
		job.ProcessedAt = &now
		delete(s.pending, jobID)
	}
	return nil
}

// IncrementRetries bumps a job's retry count.
func (s *Store) IncrementRetries(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return domain.ErrIngestJobNotFound
	}
	job.Retries++
	return nil
}

// Len reports the total number of tracked jobs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
