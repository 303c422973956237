package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeConfiguration     = "CONFIGURATION_ERROR"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeDimensionMismatch = "DIMENSION_MISMATCH"
	ErrCodeEmbeddingService  = "EMBEDDING_SERVICE_ERROR"
	ErrCodeGenerationService = "GENERATION_SERVICE_ERROR"
	ErrCodeContextTooLarge   = "CONTEXT_TOO_LARGE"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Configuration errors
var (
	ErrInvalidChunkSize     = NewDomainError(ErrCodeConfiguration, "chunk size must be greater than zero")
	ErrInvalidChunkOverlap  = NewDomainError(ErrCodeConfiguration, "chunk overlap must be in [0, chunk size)")
	ErrInvalidTopK          = NewDomainError(ErrCodeConfiguration, "top k must be greater than zero")
	ErrInvalidContextBudget = NewDomainError(ErrCodeConfiguration, "max context chars must be greater than zero")
)

// Validation errors
var (
	ErrEmptyQuestion        = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrDocumentNotFound  = NewDomainError(ErrCodeNotFound, "document not found")
	ErrIngestJobNotFound = NewDomainError(ErrCodeNotFound, "ingest job not found")
)

// Retrieval errors
var (
	// ErrContextTooLarge is returned when not even a single retrieved chunk
	// fits into the context budget. Chunks are never truncated mid-chunk.
	ErrContextTooLarge = NewDomainError(ErrCodeContextTooLarge, "no retrieved chunk fits the context budget")
)

// NewDimensionMismatchError reports an embedding whose dimensionality does not
// match the dimensionality established by the index.
func NewDimensionMismatchError(want, got int) *DomainError {
	return NewDomainError(ErrCodeDimensionMismatch,
		fmt.Sprintf("embedding has %d dimensions, index requires %d", got, want))
}

// NewEmbeddingServiceError wraps a failure from the embedding backend.
func NewEmbeddingServiceError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbeddingService, "embedding service call failed", err)
}

// NewGenerationServiceError wraps a failure from the generation backend.
func NewGenerationServiceError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeGenerationService, "generation service call failed", err)
}
