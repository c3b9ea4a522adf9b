package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/cloo-solutions/finrag/internal/api"
	"github.com/cloo-solutions/finrag/internal/service"
)

const uploadMemoryLimit = 32 << 20

type UploadService interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*service.UploadResult, error)
}

type UploadHandler struct {
	svc UploadService
}

func NewUploadHandler(svc UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

type UploadResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id,omitempty"`
}

// Upload stores the multipart "file" part in the document directory.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	result, err := h.svc.Upload(r.Context(), header.Filename, file)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, UploadResponse{Status: "uploaded", JobID: result.JobID})
}
