package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docuchat-labs/docuchat/internal/api"
	"github.com/docuchat-labs/docuchat/internal/domain"
	"github.com/docuchat-labs/docuchat/internal/service"
)

// maxUploadMemory bounds how much of a multipart upload is kept in RAM
// before spilling to disk.
const maxUploadMemory = 16 << 20

type JobQueue interface {
	Enqueue(doc *domain.Document) domain.IngestJob
	Get(jobID string) (domain.IngestJob, error)
}

type DocumentLister interface {
	List() []service.DocumentInfo
	Get(id string) (service.DocumentInfo, error)
}

type PDFExtractor interface {
	Extract(r io.ReaderAt, size int64) ([]domain.Page, error)
}

// CorpusResetter drops every ingested document from the index and
// registry.
type CorpusResetter interface {
	Clear()
}

type DocumentsHandler struct {
	queue     JobQueue
	registry  DocumentLister
	extractor PDFExtractor
	resetter  CorpusResetter
}

func NewDocumentsHandler(queue JobQueue, registry DocumentLister, extractor PDFExtractor, resetter CorpusResetter) *DocumentsHandler {
	return &DocumentsHandler{
		queue:     queue,
		registry:  registry,
		extractor: extractor,
		resetter:  resetter,
	}
}

type UploadDocumentRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type UploadDocumentResponse struct {
	JobID      string `json:"job_id"`
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

type DocumentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Pages     int    `json:"pages"`
	Chunks    int    `json:"chunks"`
	CreatedAt string `json:"created_at"`
}

type DocumentListResponse struct {
	Items []*DocumentResponse `json:"items"`
}

type IngestJobResponse struct {
	ID           string `json:"id"`
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	Status       string `json:"status"`
	Retries      int    `json:"retries"`
	Error        string `json:"error,omitempty"`
	Chunks       int    `json:"chunks"`
	CreatedAt    string `json:"created_at"`
	ProcessedAt  string `json:"processed_at,omitempty"`
}

func documentToResponse(info service.DocumentInfo) *DocumentResponse {
	return &DocumentResponse{
		ID:        info.ID,
		Name:      info.Name,
		Pages:     info.Pages,
		Chunks:    info.Chunks,
		CreatedAt: info.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func jobToResponse(job domain.IngestJob) *IngestJobResponse {
	resp := &IngestJobResponse{
		ID:           job.ID,
		DocumentID:   job.DocumentID,
		DocumentName: job.DocumentName,
		Status:       string(job.Status),
		Retries:      job.Retries,
		Error:        job.Error,
		Chunks:       job.Chunks,
		CreatedAt:    job.CreatedAt.UTC().Format(time.RFC3339),
	}
	if job.ProcessedAt != nil {
		resp.ProcessedAt = job.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// Upload accepts a document for asynchronous ingestion. It takes either a
// JSON body with name and text, or a multipart form with a PDF under the
// "file" field. Either way the response is the queued job.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		h.uploadPDF(w, r)
		return
	}
	h.uploadText(w, r)
}

func (h *DocumentsHandler) uploadText(w http.ResponseWriter, r *http.Request) {
	var req UploadDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Text == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	doc := domain.NewDocument(uuid.NewString(), req.Name,
		[]domain.Page{{Number: 1, Text: req.Text}}, time.Now())
	h.enqueue(w, doc)
}

func (h *DocumentsHandler) uploadPDF(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	// spool the upload so the parser gets a ReaderAt of known size
	var buf bytes.Buffer
	size, err := io.Copy(&buf, file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	pages, err := h.extractor.Extract(bytes.NewReader(buf.Bytes()), size)
	if err != nil {
		api.Error(w, http.StatusUnprocessableEntity, "failed to extract text: "+err.Error())
		return
	}

	doc := domain.NewDocument(uuid.NewString(), header.Filename, pages, time.Now())
	h.enqueue(w, doc)
}

func (h *DocumentsHandler) enqueue(w http.ResponseWriter, doc *domain.Document) {
	job := h.queue.Enqueue(doc)
	api.Success(w, http.StatusAccepted, UploadDocumentResponse{
		JobID:      job.ID,
		DocumentID: doc.ID,
		Status:     string(job.Status),
	})
}

// List returns every ingested document, oldest first.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	infos := h.registry.List()

	items := make([]*DocumentResponse, len(infos))
	for i, info := range infos {
		items[i] = documentToResponse(info)
	}

	api.Success(w, http.StatusOK, DocumentListResponse{Items: items})
}

// Get returns a single ingested document by ID.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	info, err := h.registry.Get(id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(info))
}

// GetJob reports the status of an ingest job.
func (h *DocumentsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	job, err := h.queue.Get(id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, jobToResponse(job))
}

// Reset drops the whole corpus: index entries and document records.
func (h *DocumentsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.resetter.Clear()
	api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}
