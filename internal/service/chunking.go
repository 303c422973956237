package service

import (
	"fmt"

	"github.com/docuchat-labs/docuchat/internal/domain"
)

// ChunkDocument splits a document's extracted text into overlapping
// fixed-size chunks. The window is chunk_size runes wide and advances by
// chunk_size-overlap runes per step; the final window is truncated to the
// remaining text. Chunking is a pure function of the document and settings,
// so re-chunking the same input yields an identical sequence.
//
// Chunk IDs are deterministic per (document, sequence index) so that
// re-ingesting a corrected document replaces its prior index entries.
//
// Splitting is plain character-offset slicing; word and sentence boundaries
// are not respected.
func ChunkDocument(doc *domain.Document, settings domain.PipelineSettings) ([]domain.Chunk, error) {
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(doc.Text())
	if len(runes) == 0 {
		return []domain.Chunk{}, nil
	}

	step := settings.ChunkSize - settings.ChunkOverlap
	chunks := make([]domain.Chunk, 0, 1+len(runes)/step)

	for start, seq := 0, 0; start < len(runes); start, seq = start+step, seq+1 {
		end := start + settings.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, domain.Chunk{
			ID:            chunkID(doc.ID, seq),
			DocumentID:    doc.ID,
			SequenceIndex: seq,
			Text:          string(runes[start:end]),
			StartOffset:   start,
			EndOffset:     end,
			Page:          doc.PageAt(start),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

func chunkID(documentID string, seq int) string {
	return fmt.Sprintf("%s:%d", documentID, seq)
}
