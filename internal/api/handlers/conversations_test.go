package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConversationHandler_List_Success(t *testing.T) {
	mockSvc := new(MockConversationService)
	handler := NewConversationHandler(mockSvc)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockSvc.On("List", mock.Anything).Return([]*domain.Conversation{
		{ID: 1, Query: "first", Response: "one", CreatedAt: created},
		{ID: 2, Query: "second", Response: "two", CreatedAt: created.Add(time.Minute)},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []ConversationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, int64(1), resp[0].ID)
	assert.Equal(t, "first", resp[0].Query)
	assert.Equal(t, "one", resp[0].Response)
	assert.Equal(t, "2026-03-01T12:00:00Z", resp[0].CreatedAt)
	assert.Equal(t, "second", resp[1].Query)
	mockSvc.AssertExpectations(t)
}

func TestConversationHandler_List_EmptyIsArray(t *testing.T) {
	mockSvc := new(MockConversationService)
	handler := NewConversationHandler(mockSvc)

	mockSvc.On("List", mock.Anything).Return([]*domain.Conversation{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestConversationHandler_List_Error(t *testing.T) {
	mockSvc := new(MockConversationService)
	handler := NewConversationHandler(mockSvc)

	mockSvc.On("List", mock.Anything).Return(nil, errors.New("connection reset"))

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}
