//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/docuchat-labs/docuchat/internal/api/handlers"
	"github.com/docuchat-labs/docuchat/internal/conversation"
	"github.com/docuchat-labs/docuchat/internal/domain"
	"github.com/docuchat-labs/docuchat/internal/extract"
	"github.com/docuchat-labs/docuchat/internal/index"
	"github.com/docuchat-labs/docuchat/internal/jobs"
	"github.com/docuchat-labs/docuchat/internal/server"
	"github.com/docuchat-labs/docuchat/internal/service"
)

const embeddingDim = 64

// hashEmbedder maps words onto a fixed-size vector by hashing. Texts that
// share vocabulary get similar vectors, so retrieval behaves like the real
// backend without network calls.
type hashEmbedder struct{}

func (hashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, embeddingDim)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(strings.Trim(word, ".,:;!?\"'()")))
			v[h.Sum32()%embeddingDim]++
		}
		var norm float64
		for _, x := range v {
			norm += float64(x) * float64(x)
		}
		if norm > 0 {
			scale := float32(1 / math.Sqrt(norm))
			for j := range v {
				v[j] *= scale
			}
		}
		vectors[i] = v
	}
	return vectors, nil
}

// echoGenerator answers with a fixed prefix plus the question, proving the
// assembled context reached the generation step.
type echoGenerator struct{}

func (echoGenerator) Generate(ctx context.Context, question, contextBlock string) (string, error) {
	if contextBlock == "" {
		return "", fmt.Errorf("empty context")
	}
	return "Based on the documents: " + question, nil
}

// TestEnv holds the in-process server and HTTP client for one test.
type TestEnv struct {
	T          *testing.T
	ServerURL  string
	HTTPClient *http.Client
}

// SetupTestEnv wires the full pipeline with stub embedding and generation
// backends and serves it from an httptest server.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	settings := domain.DefaultPipelineSettings()
	settings.ChunkSize = 200
	settings.ChunkOverlap = 40

	idx := index.NewMemoryIndex()
	registry := service.NewDocumentRegistry()
	convLog := conversation.NewLog()
	embedder := hashEmbedder{}

	ingestSvc, err := service.NewIngestService(embedder, idx, registry, settings)
	if err != nil {
		t.Fatalf("failed to create ingest service: %v", err)
	}

	// threshold high enough that questions with no shared vocabulary
	// retrieve nothing
	retriever := service.NewRetrieverService(embedder, idx, 0.3)

	askSvc, err := service.NewAskService(retriever, echoGenerator{}, convLog, settings)
	if err != nil {
		t.Fatalf("failed to create ask service: %v", err)
	}

	store := jobs.NewStore()
	worker := jobs.NewWorker(jobs.NewIngestWorker(store, ingestSvc), 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	go worker.Start(ctx)

	router := server.NewRouter(server.RouterConfig{
		DocumentsHandler: handlers.NewDocumentsHandler(store, registry, extract.NewPDFExtractor(0), ingestSvc),
		AskHandler:       handlers.NewAskHandler(askSvc),
		HistoryHandler:   handlers.NewHistoryHandler(convLog),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		worker.Stop()
		cancel()
	})

	return &TestEnv{
		T:          t,
		ServerURL:  srv.URL,
		HTTPClient: srv.Client(),
	}
}

// PostJSON sends a JSON POST and decodes the envelope's data field into out.
func (env *TestEnv) PostJSON(path string, body interface{}, out interface{}) int {
	env.T.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		env.T.Fatalf("failed to marshal body: %v", err)
	}

	resp, err := env.HTTPClient.Post(env.ServerURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		env.T.Fatalf("POST %s failed: %v", path, err)
	}
	return env.decode(resp, out)
}

// GetJSON sends a GET and decodes the envelope's data field into out.
func (env *TestEnv) GetJSON(path string, out interface{}) int {
	env.T.Helper()

	resp, err := env.HTTPClient.Get(env.ServerURL + path)
	if err != nil {
		env.T.Fatalf("GET %s failed: %v", path, err)
	}
	return env.decode(resp, out)
}

// Delete sends a DELETE and returns the status code.
func (env *TestEnv) Delete(path string) int {
	env.T.Helper()

	req, err := http.NewRequest(http.MethodDelete, env.ServerURL+path, nil)
	if err != nil {
		env.T.Fatalf("failed to create request: %v", err)
	}
	resp, err := env.HTTPClient.Do(req)
	if err != nil {
		env.T.Fatalf("DELETE %s failed: %v", path, err)
	}
	return env.decode(resp, nil)
}

func (env *TestEnv) decode(resp *http.Response, out interface{}) int {
	env.T.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		env.T.Fatalf("failed to read response: %v", err)
	}

	if out != nil {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			env.T.Fatalf("failed to parse envelope %q: %v", raw, err)
		}
		if envelope.Data != nil {
			if err := json.Unmarshal(envelope.Data, out); err != nil {
				env.T.Fatalf("failed to parse data %q: %v", envelope.Data, err)
			}
		}
	}

	return resp.StatusCode
}

// WaitForJob polls the job endpoint until the job reaches a terminal state.
func (env *TestEnv) WaitForJob(jobID string) handlers.IngestJobResponse {
	env.T.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var job handlers.IngestJobResponse
		status := env.GetJSON("/documents/jobs/"+jobID, &job)
		if status != http.StatusOK {
			env.T.Fatalf("job %s returned status %d", jobID, status)
		}
		if job.Status == "completed" || job.Status == "failed" {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}

	env.T.Fatalf("job %s did not finish in time", jobID)
	return handlers.IngestJobResponse{}
}
