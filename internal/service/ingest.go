package service

import (
	"context"
	"log"

	"github.com/docuchat-labs/docuchat/internal/domain"
	"github.com/docuchat-labs/docuchat/internal/index"
	"github.com/docuchat-labs/docuchat/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// embeddingBatchSize bounds how many chunk texts go to the embedder per
// call during ingestion.
const embeddingBatchSize = 64

// defaultIngestConcurrency bounds how many documents of a batch are
// processed at once.
const defaultIngestConcurrency = 4

// IngestService turns extracted documents into indexed chunks: chunk,
// embed, insert.
type IngestService struct {
	embedder    Embedder
	index       index.VectorIndex
	registry    *DocumentRegistry
	settings    domain.PipelineSettings
	concurrency int
}

// NewIngestService creates a new IngestService instance. Settings are
// validated at construction.
func NewIngestService(embedder Embedder, idx index.VectorIndex, registry *DocumentRegistry, settings domain.PipelineSettings) (*IngestService, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &IngestService{
		embedder:    embedder,
		index:       idx,
		registry:    registry,
		settings:    settings,
		concurrency: defaultIngestConcurrency,
	}, nil
}

// IngestDocument chunks and embeds one document and inserts the result into
// the index. Returns the number of chunks produced; an empty document
// produces zero chunks and zero index entries without error.
func (s *IngestService) IngestDocument(ctx context.Context, doc *domain.Document) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.IngestDocument", telemetry.SpanAttributes{
		DocumentID: doc.ID,
		Operation:  "ingest",
	})
	defer span.End()

	chunks, err := ChunkDocument(doc, s.settings)
	if err != nil {
		return 0, err
	}

	if len(chunks) == 0 {
		s.registry.Add(doc, 0)
		return 0, nil
	}

	for start := 0; start < len(chunks); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, err
		}

		entries := make([]index.Entry, len(batch))
		for i := range batch {
			entries[i] = index.Entry{Chunk: batch[i], Vector: vectors[i]}
		}
		if err := s.index.Upsert(entries); err != nil {
			return 0, err
		}
	}

	s.registry.Add(doc, len(chunks))
	return len(chunks), nil
}

// SetConcurrency overrides how many documents of a batch run at once.
// Non-positive values keep the default.
func (s *IngestService) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// IngestOutcome reports the result of ingesting one document of a batch.
type IngestOutcome struct {
	DocumentID string
	Name       string
	Chunks     int
	Err        error
}

// IngestBatch processes independent documents concurrently. One document's
// failure does not abort the others; outcomes are reported individually, in
// input order.
func (s *IngestService) IngestBatch(ctx context.Context, docs []*domain.Document) []IngestOutcome {
	outcomes := make([]IngestOutcome, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			outcome := IngestOutcome{DocumentID: doc.ID, Name: doc.Name}
			outcome.Chunks, outcome.Err = s.IngestDocument(gctx, doc)
			if outcome.Err != nil {
				log.Printf("ingest: document %s (%s) failed: %v", doc.ID, doc.Name, outcome.Err)
			}
			outcomes[i] = outcome
			return nil
		})
	}

	// goroutines never return errors; failures stay in their outcome slot
	_ = g.Wait()
	return outcomes
}

// Clear drops all index entries and document records.
func (s *IngestService) Clear() {
	s.index.Clear()
	s.registry.Clear()
}
