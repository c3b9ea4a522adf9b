package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/cloo-solutions/finrag/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadHandler_Upload_Success(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	mockSvc.On("Upload", mock.Anything, "report.pdf").Return(&service.UploadResult{
		Filename: "report.pdf",
		Path:     "/docs/report.pdf",
	}, nil)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, "file", "report.pdf", "%PDF-1.4 body"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"uploaded"}`, w.Body.String())
	assert.Equal(t, "%PDF-1.4 body", mockSvc.body)
	mockSvc.AssertExpectations(t)
}

func TestUploadHandler_Upload_ReportsQueuedJob(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	mockSvc.On("Upload", mock.Anything, "report.pdf").Return(&service.UploadResult{
		Filename: "report.pdf",
		JobID:    "job-1",
	}, nil)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, "file", "report.pdf", "x"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"uploaded","job_id":"job-1"}`, w.Body.String())
}

func TestUploadHandler_Upload_MissingFile(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, "document", "report.pdf", "x"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file is required")
	mockSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestUploadHandler_Upload_NotMultipart(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadHandler_Upload_InvalidName(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	mockSvc.On("Upload", mock.Anything, "notes.txt").Return(nil, domain.ErrUnsupportedDocument)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, "file", "notes.txt", "x"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"only .pdf documents are supported"}`, w.Body.String())
}

func TestUploadHandler_Upload_StorageFailure(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	mockSvc.On("Upload", mock.Anything, "report.pdf").
		Return(nil, domain.ErrStorageOperationFail.WithCause(errors.New("disk full")))

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, "file", "report.pdf", "x"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"storage operation failed"}`, w.Body.String())
}
