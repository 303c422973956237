package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/docuchat-labs/docuchat/internal/domain"
	"github.com/docuchat-labs/docuchat/internal/service"
)

type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Enqueue(doc *domain.Document) domain.IngestJob {
	args := m.Called(doc)
	return args.Get(0).(domain.IngestJob)
}

func (m *MockJobQueue) Get(jobID string) (domain.IngestJob, error) {
	args := m.Called(jobID)
	return args.Get(0).(domain.IngestJob), args.Error(1)
}

type MockDocumentLister struct {
	mock.Mock
}

func (m *MockDocumentLister) List() []service.DocumentInfo {
	args := m.Called()
	return args.Get(0).([]service.DocumentInfo)
}

func (m *MockDocumentLister) Get(id string) (service.DocumentInfo, error) {
	args := m.Called(id)
	return args.Get(0).(service.DocumentInfo), args.Error(1)
}

type MockPDFExtractor struct {
	mock.Mock
}

func (m *MockPDFExtractor) Extract(r io.ReaderAt, size int64) ([]domain.Page, error) {
	args := m.Called(r, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Page), args.Error(1)
}

type MockCorpusResetter struct {
	mock.Mock
}

func (m *MockCorpusResetter) Clear() {
	m.Called()
}

func pendingJob(jobID string) domain.IngestJob {
	return *domain.NewIngestJob(jobID, "doc-1", "report.pdf", time.Now())
}

func requestWithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDocumentsHandler_Upload_JSON(t *testing.T) {
	mockQueue := new(MockJobQueue)
	handler := NewDocumentsHandler(mockQueue, nil, nil, nil)

	mockQueue.On("Enqueue", mock.MatchedBy(func(doc *domain.Document) bool {
		return doc.Name == "notes.txt" && doc.Text() == "some document text"
	})).Return(pendingJob("job-1"))

	body := `{"name":"notes.txt","text":"some document text"}`
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "job-1")
	assert.Contains(t, w.Body.String(), "pending")
	mockQueue.AssertExpectations(t)
}

func TestDocumentsHandler_Upload_MissingName(t *testing.T) {
	mockQueue := new(MockJobQueue)
	handler := NewDocumentsHandler(mockQueue, nil, nil, nil)

	body := `{"text":"some document text"}`
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "name is required")
	mockQueue.AssertNotCalled(t, "Enqueue", mock.Anything)
}

func TestDocumentsHandler_Upload_MissingText(t *testing.T) {
	mockQueue := new(MockJobQueue)
	handler := NewDocumentsHandler(mockQueue, nil, nil, nil)

	body := `{"name":"notes.txt"}`
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "text is required")
}

func TestDocumentsHandler_Upload_InvalidJSON(t *testing.T) {
	mockQueue := new(MockJobQueue)
	handler := NewDocumentsHandler(mockQueue, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartPDFRequest(t *testing.T, field, filename string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestDocumentsHandler_Upload_PDF(t *testing.T) {
	mockQueue := new(MockJobQueue)
	mockExtractor := new(MockPDFExtractor)
	handler := NewDocumentsHandler(mockQueue, nil, mockExtractor, nil)

	pages := []domain.Page{{Number: 1, Text: "page one"}, {Number: 2, Text: "page two"}}
	mockExtractor.On("Extract", mock.Anything, mock.Anything).Return(pages, nil)
	mockQueue.On("Enqueue", mock.MatchedBy(func(doc *domain.Document) bool {
		return doc.Name == "report.pdf" && len(doc.Pages) == 2
	})).Return(pendingJob("job-2"))

	req := multipartPDFRequest(t, "file", "report.pdf", []byte("%PDF-1.4 fake"))
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "job-2")
	mockQueue.AssertExpectations(t)
	mockExtractor.AssertExpectations(t)
}

func TestDocumentsHandler_Upload_PDFExtractionFails(t *testing.T) {
	mockQueue := new(MockJobQueue)
	mockExtractor := new(MockPDFExtractor)
	handler := NewDocumentsHandler(mockQueue, nil, mockExtractor, nil)

	mockExtractor.On("Extract", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	req := multipartPDFRequest(t, "file", "broken.pdf", []byte("not a pdf"))
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockQueue.AssertNotCalled(t, "Enqueue", mock.Anything)
}

func TestDocumentsHandler_Upload_PDFMissingFileField(t *testing.T) {
	mockQueue := new(MockJobQueue)
	mockExtractor := new(MockPDFExtractor)
	handler := NewDocumentsHandler(mockQueue, nil, mockExtractor, nil)

	req := multipartPDFRequest(t, "document", "report.pdf", []byte("%PDF-1.4 fake"))
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file field is required")
}

func TestDocumentsHandler_List(t *testing.T) {
	mockRegistry := new(MockDocumentLister)
	handler := NewDocumentsHandler(nil, mockRegistry, nil, nil)

	infos := []service.DocumentInfo{
		{ID: "d1", Name: "first.pdf", Pages: 3, Chunks: 12, CreatedAt: time.Now()},
		{ID: "d2", Name: "second.pdf", Pages: 1, Chunks: 4, CreatedAt: time.Now()},
	}
	mockRegistry.On("List").Return(infos)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data DocumentListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 2)
	assert.Equal(t, "first.pdf", resp.Data.Items[0].Name)
	assert.Equal(t, 12, resp.Data.Items[0].Chunks)
}

func TestDocumentsHandler_Get(t *testing.T) {
	mockRegistry := new(MockDocumentLister)
	handler := NewDocumentsHandler(nil, mockRegistry, nil, nil)

	info := service.DocumentInfo{ID: "d1", Name: "first.pdf", Pages: 3, Chunks: 12, CreatedAt: time.Now()}
	mockRegistry.On("Get", "d1").Return(info, nil)

	req := httptest.NewRequest(http.MethodGet, "/documents/d1", nil)
	req = requestWithURLParam(req, "id", "d1")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "first.pdf")
}

func TestDocumentsHandler_Get_NotFound(t *testing.T) {
	mockRegistry := new(MockDocumentLister)
	handler := NewDocumentsHandler(nil, mockRegistry, nil, nil)

	mockRegistry.On("Get", "nope").Return(service.DocumentInfo{}, domain.ErrDocumentNotFound)

	req := httptest.NewRequest(http.MethodGet, "/documents/nope", nil)
	req = requestWithURLParam(req, "id", "nope")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentsHandler_GetJob(t *testing.T) {
	mockQueue := new(MockJobQueue)
	handler := NewDocumentsHandler(mockQueue, nil, nil, nil)

	job := pendingJob("job-1")
	job.Status = domain.IngestJobStatusCompleted
	job.Chunks = 12
	mockQueue.On("Get", "job-1").Return(job, nil)

	req := httptest.NewRequest(http.MethodGet, "/documents/jobs/job-1", nil)
	req = requestWithURLParam(req, "id", "job-1")
	w := httptest.NewRecorder()

	handler.GetJob(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data IngestJobResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Data.Status)
	assert.Equal(t, 12, resp.Data.Chunks)
}

func TestDocumentsHandler_GetJob_NotFound(t *testing.T) {
	mockQueue := new(MockJobQueue)
	handler := NewDocumentsHandler(mockQueue, nil, nil, nil)

	mockQueue.On("Get", "nope").Return(domain.IngestJob{}, domain.ErrIngestJobNotFound)

	req := httptest.NewRequest(http.MethodGet, "/documents/jobs/nope", nil)
	req = requestWithURLParam(req, "id", "nope")
	w := httptest.NewRecorder()

	handler.GetJob(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentsHandler_Reset(t *testing.T) {
	mockResetter := new(MockCorpusResetter)
	handler := NewDocumentsHandler(nil, nil, nil, mockResetter)

	mockResetter.On("Clear").Return()

	req := httptest.NewRequest(http.MethodDelete, "/documents", nil)
	w := httptest.NewRecorder()

	handler.Reset(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockResetter.AssertExpectations(t)
}
