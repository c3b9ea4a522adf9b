package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriters(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "raw body",
			write:      func(w http.ResponseWriter) { JSON(w, http.StatusOK, map[string]string{"response": "Diversify."}) },
			wantStatus: http.StatusOK,
			wantBody:   `{"response":"Diversify."}`,
		},
		{
			name:       "raw array",
			write:      func(w http.ResponseWriter) { JSON(w, http.StatusOK, []int{}) },
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
		{
			name:       "data envelope",
			write:      func(w http.ResponseWriter) { Success(w, http.StatusOK, map[string]string{"status": "ok"}) },
			wantStatus: http.StatusOK,
			wantBody:   `{"data":{"status":"ok"}}`,
		},
		{
			name:       "error body",
			write:      func(w http.ResponseWriter) { Error(w, http.StatusBadRequest, "query is required") },
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"query is required"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestJSON_NoBody(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestDomainErrorToHTTP(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, http.StatusOK},
		{"validation error", domain.ErrEmptyQuery, http.StatusBadRequest},
		{"not found error", domain.ErrIndexJobNotFound, http.StatusNotFound},
		{"upstream error", domain.ErrAnswerFailed.WithCause(errors.New("429")), http.StatusBadGateway},
		{"wrapped upstream error", fmt.Errorf("ask: %w", domain.ErrEmbeddingFailed), http.StatusBadGateway},
		{"internal error", domain.ErrRetrievalFailed, http.StatusInternalServerError},
		{"unknown domain error", domain.NewDomainError("UNKNOWN", "unknown"), http.StatusInternalServerError},
		{"non-domain error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DomainErrorToHTTP(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHandleError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, domain.ErrAnswerFailed.WithCause(errors.New("api key sk-secret rejected")))

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var result ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)
	assert.Equal(t, "answer generation failed", result.Error)
}

func TestHandleError_NonDomain(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
