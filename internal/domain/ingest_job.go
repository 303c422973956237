package domain

import (
	"fmt"
	"time"
)

// IngestJobStatus represents the status of a document ingest job
type IngestJobStatus string

const (
	IngestJobStatusPending    IngestJobStatus = "pending"
	IngestJobStatusProcessing IngestJobStatus = "processing"
	IngestJobStatusCompleted  IngestJobStatus = "completed"
	IngestJobStatusFailed     IngestJobStatus = "failed"
)

// IngestJob represents an async document ingestion job
type IngestJob struct {
	ID           string
	DocumentID   string
	DocumentName string
	Status       IngestJobStatus
	Retries      int
	Error        string
	Chunks       int
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}

// NewIngestJob creates a pending IngestJob for a document
func NewIngestJob(id, documentID, documentName string, createdAt time.Time) *IngestJob {
	return &IngestJob{
		ID:           id,
		DocumentID:   documentID,
		DocumentName: documentName,
		Status:       IngestJobStatusPending,
		CreatedAt:    createdAt,
	}
}

// ValidateIngestJob validates an IngestJob instance
func ValidateIngestJob(j *IngestJob) error {
	if j == nil {
		return fmt.Errorf("ingest job cannot be nil")
	}

	if j.ID == "" {
		return fmt.Errorf("ingest job ID is required")
	}

	if j.DocumentID == "" {
		return fmt.Errorf("ingest job DocumentID is required")
	}

	if !isValidIngestJobStatus(j.Status) {
		return fmt.Errorf("ingest job Status is invalid: %s", j.Status)
	}

	if j.Retries < 0 {
		return fmt.Errorf("ingest job Retries cannot be negative")
	}

	return nil
}

// isValidIngestJobStatus checks if an IngestJobStatus is valid
func isValidIngestJobStatus(s IngestJobStatus) bool {
	switch s {
	case IngestJobStatusPending, IngestJobStatusProcessing,
		IngestJobStatusCompleted, IngestJobStatusFailed:
		return true
	}
	return false
}
