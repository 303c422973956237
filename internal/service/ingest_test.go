package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/docuchat-labs/docuchat/internal/domain"
	"github.com/docuchat-labs/docuchat/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// staticEmbedder returns a fixed-dimension vector per input, deterministic
// on the text length. Good enough to drive the index in tests.
type staticEmbedder struct {
	dim int
}

func (e *staticEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, e.dim)
		v[0] = float32(len(text))
		v[e.dim-1] = 1
		out[i] = v
	}
	return out, nil
}

func newIngestService(t *testing.T, embedder Embedder, idx index.VectorIndex) (*IngestService, *DocumentRegistry) {
	t.Helper()
	registry := NewDocumentRegistry()
	settings := domain.DefaultPipelineSettings()
	settings.ChunkSize = 10
	settings.ChunkOverlap = 2
	svc, err := NewIngestService(embedder, idx, registry, settings)
	require.NoError(t, err)
	return svc, registry
}

func namedDoc(id, name, text string) *domain.Document {
	return domain.NewDocument(id, name, []domain.Page{{Number: 1, Text: text}}, time.Now())
}

func TestIngestService_IngestDocument(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc, registry := newIngestService(t, &staticEmbedder{dim: 4}, idx)

	count, err := svc.IngestDocument(context.Background(), namedDoc("d1", "report.pdf", "The quick brown fox jumps over the lazy dog"))

	require.NoError(t, err)
	assert.Greater(t, count, 1)
	assert.Equal(t, count, idx.Size())

	info, err := registry.Get("d1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", info.Name)
	assert.Equal(t, count, info.Chunks)
}

func TestIngestService_IngestEmptyDocument(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc, registry := newIngestService(t, &staticEmbedder{dim: 4}, idx)

	count, err := svc.IngestDocument(context.Background(), namedDoc("d1", "empty.pdf", ""))

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, idx.Size())

	// the document is still registered, with zero chunks
	info, err := registry.Get("d1")
	require.NoError(t, err)
	assert.Equal(t, 0, info.Chunks)
}

func TestIngestService_ReingestReplacesEntries(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc, _ := newIngestService(t, &staticEmbedder{dim: 4}, idx)
	ctx := context.Background()

	first, err := svc.IngestDocument(ctx, namedDoc("d1", "report.pdf", "original text of the doc"))
	require.NoError(t, err)

	second, err := svc.IngestDocument(ctx, namedDoc("d1", "report.pdf", "corrected text of the doc"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, second, idx.Size())
}

func TestIngestService_EmbedderFailure(t *testing.T) {
	mockEmbedder := new(MockEmbedder)
	backendErr := domain.NewEmbeddingServiceError(errors.New("rate limited"))
	mockEmbedder.On("Embed", mock.Anything, mock.Anything).Return(nil, backendErr)

	idx := index.NewMemoryIndex()
	svc, registry := newIngestService(t, mockEmbedder, idx)

	_, err := svc.IngestDocument(context.Background(), namedDoc("d1", "report.pdf", "some text"))

	assert.Equal(t, backendErr, err)
	assert.Equal(t, 0, idx.Size())
	_, err = registry.Get("d1")
	assert.Equal(t, domain.ErrDocumentNotFound, err)
}

func TestIngestService_IngestBatch_FailureIsolation(t *testing.T) {
	mockEmbedder := new(MockEmbedder)
	backendErr := domain.NewEmbeddingServiceError(errors.New("malformed input"))

	// the failing document's text embeds with an error, the others succeed
	mockEmbedder.On("Embed", mock.Anything, mock.MatchedBy(func(texts []string) bool {
		return len(texts) > 0 && texts[0] == "bad doc"
	})).Return(nil, backendErr)
	mockEmbedder.On("Embed", mock.Anything, mock.Anything).Return([][]float32{{1, 0}}, nil)

	svc, registry := newIngestService(t, mockEmbedder, index.NewMemoryIndex())

	docs := []*domain.Document{
		namedDoc("d1", "good-1.pdf", "good one"),
		namedDoc("d2", "bad.pdf", "bad doc"),
		namedDoc("d3", "good-2.pdf", "good two"),
	}

	outcomes := svc.IngestBatch(context.Background(), docs)

	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, backendErr, outcomes[1].Err)
	assert.NoError(t, outcomes[2].Err)

	assert.Equal(t, 2, registry.Len())
	_, err := registry.Get("d2")
	assert.Equal(t, domain.ErrDocumentNotFound, err)
}

func TestIngestService_IngestBatch_Concurrent(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc, registry := newIngestService(t, &staticEmbedder{dim: 4}, idx)

	docs := make([]*domain.Document, 20)
	for i := range docs {
		docs[i] = namedDoc(fmt.Sprintf("d%d", i), fmt.Sprintf("doc-%d.pdf", i), "text shared by every document here")
	}

	outcomes := svc.IngestBatch(context.Background(), docs)

	require.Len(t, outcomes, 20)
	for _, outcome := range outcomes {
		assert.NoError(t, outcome.Err)
	}
	assert.Equal(t, 20, registry.Len())
}

func TestIngestService_Clear(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc, registry := newIngestService(t, &staticEmbedder{dim: 4}, idx)
	_, err := svc.IngestDocument(context.Background(), namedDoc("d1", "report.pdf", "some text"))
	require.NoError(t, err)

	svc.Clear()

	assert.Equal(t, 0, idx.Size())
	assert.Equal(t, 0, registry.Len())
}

func TestNewIngestService_InvalidSettings(t *testing.T) {
	settings := domain.DefaultPipelineSettings()
	settings.ChunkOverlap = settings.ChunkSize

	_, err := NewIngestService(&staticEmbedder{dim: 4}, index.NewMemoryIndex(), NewDocumentRegistry(), settings)

	assert.Equal(t, domain.ErrInvalidChunkOverlap, err)
}
