package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestQueryHandler_Ask_Success(t *testing.T) {
	mockSvc := new(MockQueryService)
	handler := NewQueryHandler(mockSvc)

	mockSvc.On("Ask", mock.Anything, "What is diversification?").Return("Spreading risk across assets.", nil)

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(`{"query":"What is diversification?"}`))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Spreading risk across assets.", resp["response"])
	assert.NotContains(t, resp, "data")
	mockSvc.AssertExpectations(t)
}

func TestQueryHandler_Ask_InvalidBody(t *testing.T) {
	mockSvc := new(MockQueryService)
	handler := NewQueryHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(`{not json`))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
	mockSvc.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestQueryHandler_Ask_EmptyQuery(t *testing.T) {
	mockSvc := new(MockQueryService)
	handler := NewQueryHandler(mockSvc)

	mockSvc.On("Ask", mock.Anything, "").Return("", domain.ErrEmptyQuery)

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"query is required"}`, w.Body.String())
}

func TestQueryHandler_Ask_BackendFailure(t *testing.T) {
	mockSvc := new(MockQueryService)
	handler := NewQueryHandler(mockSvc)

	cause := errors.New("dial tcp: connection refused")
	mockSvc.On("Ask", mock.Anything, "price of gold").Return("", domain.ErrAnswerFailed.WithCause(cause))

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(`{"query":"price of gold"}`))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"answer generation failed"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "connection refused")
}
