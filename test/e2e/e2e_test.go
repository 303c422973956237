//go:build e2e

package e2e

import (
	"net/http"
	"strings"
	"testing"

	"github.com/docuchat-labs/docuchat/internal/api/handlers"
)

const manualText = `The Aurora espresso machine heats water to 93 degrees celsius.
Descale the Aurora machine every three months using citric acid.
The water tank of the Aurora holds 1.8 liters and is dishwasher safe.
For milk drinks, the steam wand should be purged before and after each use.`

func TestFullPipeline(t *testing.T) {
	env := SetupTestEnv(t)

	// upload a text document
	var upload handlers.UploadDocumentResponse
	status := env.PostJSON("/documents", map[string]string{
		"name": "aurora-manual.txt",
		"text": manualText,
	}, &upload)
	if status != http.StatusAccepted {
		t.Fatalf("upload returned status %d", status)
	}
	if upload.JobID == "" || upload.DocumentID == "" {
		t.Fatalf("upload response incomplete: %+v", upload)
	}

	// ingestion runs asynchronously
	job := env.WaitForJob(upload.JobID)
	if job.Status != "completed" {
		t.Fatalf("job finished with status %s (error: %s)", job.Status, job.Error)
	}
	if job.Chunks == 0 {
		t.Fatal("expected at least one chunk")
	}

	// document is listed with its chunk count
	var list handlers.DocumentListResponse
	if status := env.GetJSON("/documents", &list); status != http.StatusOK {
		t.Fatalf("list returned status %d", status)
	}
	if len(list.Items) != 1 {
		t.Fatalf("expected 1 document, got %d", len(list.Items))
	}
	if list.Items[0].Chunks != job.Chunks {
		t.Fatalf("listed chunk count %d does not match job %d", list.Items[0].Chunks, job.Chunks)
	}

	// a question sharing vocabulary with the document gets a grounded answer
	var answer AskResult
	status = env.PostJSON("/ask", map[string]string{
		"question": "how often should I descale the Aurora espresso machine?",
	}, &answer)
	if status != http.StatusOK {
		t.Fatalf("ask returned status %d", status)
	}
	if !answer.Grounded {
		t.Fatal("expected a grounded answer")
	}
	if !strings.HasPrefix(answer.Answer, "Based on the documents:") {
		t.Fatalf("unexpected answer: %q", answer.Answer)
	}
	if len(answer.Citations) == 0 {
		t.Fatal("expected citations")
	}
	if len(answer.Retrieved) == 0 {
		t.Fatal("expected retrieved chunks")
	}
	for _, chunk := range answer.Retrieved {
		if chunk.DocumentID != upload.DocumentID {
			t.Fatalf("retrieved chunk from unexpected document %s", chunk.DocumentID)
		}
	}

	// a question with no shared vocabulary retrieves nothing
	var offTopic AskResult
	status = env.PostJSON("/ask", map[string]string{
		"question": "quarterly revenue forecast spreadsheet",
	}, &offTopic)
	if status != http.StatusOK {
		t.Fatalf("ask returned status %d", status)
	}
	if offTopic.Grounded {
		t.Fatal("expected an ungrounded answer")
	}
	if offTopic.Answer != "No relevant information found for your query." {
		t.Fatalf("unexpected fallback answer: %q", offTopic.Answer)
	}

	// both turns are logged, oldest first
	var history HistoryResult
	if status := env.GetJSON("/history", &history); status != http.StatusOK {
		t.Fatalf("history returned status %d", status)
	}
	if len(history.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history.Turns))
	}
	if !strings.Contains(history.Turns[0].Question, "descale") {
		t.Fatalf("unexpected first turn: %+v", history.Turns[0])
	}
	if len(history.Turns[1].CitedChunks) != 0 {
		t.Fatal("ungrounded turn should cite nothing")
	}
}

func TestResetEndpoints(t *testing.T) {
	env := SetupTestEnv(t)

	var upload handlers.UploadDocumentResponse
	env.PostJSON("/documents", map[string]string{
		"name": "notes.txt",
		"text": "the quick brown fox jumps over the lazy dog",
	}, &upload)
	env.WaitForJob(upload.JobID)

	var answer AskResult
	env.PostJSON("/ask", map[string]string{"question": "what does the quick brown fox do?"}, &answer)
	if !answer.Grounded {
		t.Fatal("expected a grounded answer before reset")
	}

	// dropping the corpus makes every question ungrounded
	if status := env.Delete("/documents"); status != http.StatusOK {
		t.Fatalf("reset returned status %d", status)
	}

	var list handlers.DocumentListResponse
	env.GetJSON("/documents", &list)
	if len(list.Items) != 0 {
		t.Fatalf("expected empty corpus, got %d documents", len(list.Items))
	}

	var afterReset AskResult
	env.PostJSON("/ask", map[string]string{"question": "what does the quick brown fox do?"}, &afterReset)
	if afterReset.Grounded {
		t.Fatal("expected an ungrounded answer after reset")
	}

	// history survives a corpus reset and clears independently
	var history HistoryResult
	env.GetJSON("/history", &history)
	if len(history.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history.Turns))
	}

	if status := env.Delete("/history"); status != http.StatusOK {
		t.Fatalf("history reset returned status %d", status)
	}
	env.GetJSON("/history", &history)
	if len(history.Turns) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(history.Turns))
	}
}

// AskResult mirrors the ask response payload.
type AskResult struct {
	Answer    string   `json:"answer"`
	Grounded  bool     `json:"grounded"`
	Citations []string `json:"citations"`
	Retrieved []struct {
		ID         string  `json:"id"`
		DocumentID string  `json:"document_id"`
		Page       int     `json:"page"`
		Score      float32 `json:"score"`
	} `json:"retrieved"`
}

// HistoryResult mirrors the history response payload.
type HistoryResult struct {
	Turns []struct {
		Question    string   `json:"question"`
		Answer      string   `json:"answer"`
		CitedChunks []string `json:"cited_chunks"`
		CreatedAt   string   `json:"created_at"`
	} `json:"turns"`
}
