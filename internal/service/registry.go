package service

import (
	"sort"
	"sync"
	"time"

	"github.com/docuchat-labs/docuchat/internal/domain"
)

// DocumentInfo summarizes one ingested document for listing.
type DocumentInfo struct {
	ID        string
	Name      string
	Pages     int
	Chunks    int
	CreatedAt time.Time
}

// DocumentRegistry tracks which documents have been ingested this session.
// Like the index it is in-memory only; its contents live and die with the
// process.
type DocumentRegistry struct {
	mu   sync.RWMutex
	docs map[string]DocumentInfo
}

// NewDocumentRegistry creates an empty DocumentRegistry.
func NewDocumentRegistry() *DocumentRegistry {
	return &DocumentRegistry{docs: make(map[string]DocumentInfo)}
}

// Add records an ingested document and its chunk count. Re-ingesting the
// same document ID overwrites the prior record.
func (r *DocumentRegistry) Add(doc *domain.Document, chunks int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = DocumentInfo{
		ID:        doc.ID,
		Name:      doc.Name,
		Pages:     len(doc.Pages),
		Chunks:    chunks,
		CreatedAt: doc.CreatedAt,
	}
}

// Get returns the record for a document ID.
func (r *DocumentRegistry) Get(id string) (DocumentInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.docs[id]
	if !ok {
		return DocumentInfo{}, domain.ErrDocumentNotFound
	}
	return info, nil
}

// List returns all records ordered by ingestion time, oldest first.
func (r *DocumentRegistry) List() []DocumentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DocumentInfo, 0, len(r.docs))
	for _, info := range r.docs {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len reports the number of recorded documents.
func (r *DocumentRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// Clear removes all records.
func (r *DocumentRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = make(map[string]DocumentInfo)
}
