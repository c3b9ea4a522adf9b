package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/finrag/internal/api"
)

type QueryService interface {
	Ask(ctx context.Context, question string) (string, error)
}

type QueryHandler struct {
	svc QueryService
}

func NewQueryHandler(svc QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type QueryRequest struct {
	Query string `json:"query"`
}

type QueryResponse struct {
	Response string `json:"response"`
}

// Ask answers a question from the indexed documents.
func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.svc.Ask(r.Context(), req.Query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, QueryResponse{Response: answer})
}
