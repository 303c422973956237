package index

import (
	"math"
	"sort"
	"sync"

	"github.com/docuchat-labs/docuchat/internal/domain"
)

// MemoryIndex is an in-memory brute-force VectorIndex. Vectors live in a
// contiguous arena addressed by integer slot; a map from chunk ID to slot
// makes re-inserting a chunk replace its prior entry. Brute force is exact
// and fast enough for corpora in the hundreds-to-thousands of chunks.
type MemoryIndex struct {
	mu      sync.RWMutex
	dim     int
	entries []storedEntry
	byID    map[string]int
}

type storedEntry struct {
	chunk  domain.Chunk
	vector []float32
	norm   float64
}

// NewMemoryIndex creates an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byID: make(map[string]int),
	}
}

// Upsert implements VectorIndex. The batch is validated in full before any
// entry is applied, so a dimension mismatch never leaves a partial insert.
func (m *MemoryIndex) Upsert(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dim := m.dim
	if dim == 0 {
		dim = len(entries[0].Vector)
	}

	for _, e := range entries {
		if err := domain.ValidateChunk(&e.Chunk); err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid chunk", err)
		}
		if len(e.Vector) == 0 || len(e.Vector) != dim {
			return domain.NewDimensionMismatchError(dim, len(e.Vector))
		}
	}

	m.dim = dim
	for _, e := range entries {
		vector := make([]float32, len(e.Vector))
		copy(vector, e.Vector)

		stored := storedEntry{
			chunk:  e.Chunk,
			vector: vector,
			norm:   vectorNorm(vector),
		}

		if slot, ok := m.byID[e.Chunk.ID]; ok {
			m.entries[slot] = stored
			continue
		}
		m.byID[e.Chunk.ID] = len(m.entries)
		m.entries = append(m.entries, stored)
	}

	return nil
}

// Search implements VectorIndex.
func (m *MemoryIndex) Search(query []float32, k int) (domain.RetrievalResult, error) {
	if k <= 0 {
		return nil, domain.ErrInvalidTopK
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.entries) == 0 {
		return domain.RetrievalResult{}, nil
	}

	if len(query) != m.dim {
		return nil, domain.NewDimensionMismatchError(m.dim, len(query))
	}

	queryNorm := vectorNorm(query)
	scored := make(domain.RetrievalResult, 0, len(m.entries))
	for _, e := range m.entries {
		scored = append(scored, domain.ScoredChunk{
			Chunk: e.chunk,
			Score: cosine(query, queryNorm, e.vector, e.norm),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Chunk.DocumentID != scored[j].Chunk.DocumentID {
			return scored[i].Chunk.DocumentID < scored[j].Chunk.DocumentID
		}
		return scored[i].Chunk.SequenceIndex < scored[j].Chunk.SequenceIndex
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

// Size implements VectorIndex.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear implements VectorIndex.
func (m *MemoryIndex) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dim = 0
	m.entries = nil
	m.byID = make(map[string]int)
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, normA float64, b []float32, normB float64) float32 {
	if normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot / (normA * normB))
}
