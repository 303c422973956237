// Package index provides similarity search over embedded document chunks.
package index

import (
	"github.com/docuchat-labs/docuchat/internal/domain"
)

// Entry pairs a chunk with its embedding vector for insertion.
type Entry struct {
	Chunk  domain.Chunk
	Vector []float32
}

// VectorIndex stores embedded chunks and answers nearest-neighbor queries by
// cosine similarity. Implementations must serialize mutation against search.
type VectorIndex interface {
	// Upsert inserts entries, replacing any prior entry with the same chunk
	// ID. The first inserted vector fixes the index dimensionality; a vector
	// of any other length fails the whole batch with a dimension mismatch.
	Upsert(entries []Entry) error

	// Search returns at most k entries ranked by descending cosine
	// similarity. An empty index yields an empty result, not an error.
	Search(query []float32, k int) (domain.RetrievalResult, error)

	// Size reports the number of stored entries.
	Size() int

	// Clear removes all entries and resets the dimensionality.
	Clear()
}
