package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/finrag/internal/api"
	"github.com/cloo-solutions/finrag/internal/domain"
)

type ConversationService interface {
	List(ctx context.Context) ([]*domain.Conversation, error)
}

type ConversationHandler struct {
	svc ConversationService
}

func NewConversationHandler(svc ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type ConversationResponse struct {
	ID        int64  `json:"id"`
	Query     string `json:"query"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}

func conversationToResponse(c *domain.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:        c.ID,
		Query:     c.Query,
		Response:  c.Response,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// List returns the conversation log as a bare array.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		resp = append(resp, conversationToResponse(c))
	}

	api.JSON(w, http.StatusOK, resp)
}
