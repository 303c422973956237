package service

import (
	"context"
	"strings"

	"github.com/docuchat-labs/docuchat/internal/domain"
	"github.com/docuchat-labs/docuchat/internal/index"
)

// Embedder defines the interface for turning text into embedding vectors.
// The returned slice has the same length and order as the input; batching
// against the backend is the implementation's concern.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// RetrieverService embeds a question and ranks matching chunks from the
// vector index.
type RetrieverService struct {
	embedder Embedder
	index    index.VectorIndex
	minScore float32
}

// NewRetrieverService creates a new RetrieverService instance. minScore
// drops matches below the given cosine similarity; pass
// domain.MinScoreDisabled to keep every match.
func NewRetrieverService(embedder Embedder, idx index.VectorIndex, minScore float32) *RetrieverService {
	return &RetrieverService{
		embedder: embedder,
		index:    idx,
		minScore: minScore,
	}
}

// Retrieve returns up to topK chunks ranked by similarity to the question.
// Embedder and index failures are surfaced unchanged so callers can tell
// "no relevant chunks" apart from "retrieval failed".
func (s *RetrieverService) Retrieve(ctx context.Context, question string, topK int) (domain.RetrievalResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if topK <= 0 {
		return nil, domain.ErrInvalidTopK
	}

	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, err
	}

	result, err := s.index.Search(vectors[0], topK)
	if err != nil {
		return nil, err
	}

	if s.minScore <= domain.MinScoreDisabled {
		return result, nil
	}

	filtered := make(domain.RetrievalResult, 0, len(result))
	for _, sc := range result {
		if sc.Score >= s.minScore {
			filtered = append(filtered, sc)
		}
	}
	return filtered, nil
}
