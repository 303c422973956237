package domain

// ScoredChunk pairs a retrieved chunk with its cosine similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float32
}

// RetrievalResult is an ordered sequence of scored chunks, descending by
// score. Ties are broken by document ID and ascending sequence index so that
// repeated searches over identical index contents return identical orderings.
type RetrievalResult []ScoredChunk

// ChunkIDs returns the chunk IDs in ranked order.
func (r RetrievalResult) ChunkIDs() []string {
	ids := make([]string, 0, len(r))
	for _, sc := range r {
		ids = append(ids, sc.Chunk.ID)
	}
	return ids
}
