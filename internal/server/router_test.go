package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/finrag/internal/api/handlers"
	"github.com/cloo-solutions/finrag/internal/api/middleware"
	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/cloo-solutions/finrag/internal/service"
	"github.com/cloo-solutions/finrag/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Ask(ctx context.Context, question string) (string, error) {
	args := m.Called(ctx, question)
	return args.String(0), args.Error(1)
}

type MockConversationService struct {
	mock.Mock
}

func (m *MockConversationService) List(ctx context.Context) ([]*domain.Conversation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Conversation), args.Error(1)
}

func setupRouter(validator middleware.AuthValidator) (http.Handler, *MockQueryService, *MockConversationService) {
	querySvc := new(MockQueryService)
	convSvc := new(MockConversationService)

	router := NewRouter(RouterConfig{
		AuthValidator:       validator,
		QueryHandler:        handlers.NewQueryHandler(querySvc),
		ConversationHandler: handlers.NewConversationHandler(convSvc),
		UploadHandler:       handlers.NewUploadHandler(service.NewUploadService(storage.NewDiskStore(os.TempDir()))),
	})
	return router, querySvc, convSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _ := setupRouter(middleware.StaticKey("secret"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"}}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_RequiresAuthWhenConfigured(t *testing.T) {
	router, _, _ := setupRouter(middleware.StaticKey("secret"))

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/query"},
		{http.MethodGet, "/conversations"},
		{http.MethodPost, "/upload"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_OpenWithoutValidator(t *testing.T) {
	router, querySvc, _ := setupRouter(nil)
	querySvc.On("Ask", mock.Anything, "hello").Return("hi", nil)

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query":"hello"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"response":"hi"}`, w.Body.String())
}

func TestRouter_WithValidAuth(t *testing.T) {
	router, _, convSvc := setupRouter(middleware.StaticKey("secret"))
	convSvc.On("List", mock.Anything).Return([]*domain.Conversation{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	convSvc.AssertExpectations(t)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _, _ := setupRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/query", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _, _ := setupRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// wordEmbedder places texts on axes for the finance words they mention.
type wordEmbedder struct{}

var wordAxes = []string{"risk", "bond", "dividend"}

func (wordEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, len(wordAxes))
	lower := strings.ToLower(text)
	for i, w := range wordAxes {
		if strings.Contains(lower, w) {
			v[i] = 1
		}
	}
	return v, nil
}

func (e wordEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.GenerateEmbedding(ctx, t)
	}
	return out, nil
}

type echoCompleter struct{}

// Complete answers with the first context passage.
func (echoCompleter) Complete(_ context.Context, prompt string) (string, error) {
	parts := strings.Split(prompt, "\n\n")
	if len(parts) < 2 {
		return "", nil
	}
	return parts[1], nil
}

type sliceStore struct {
	mu      sync.Mutex
	records []domain.VectorRecord
}

func (s *sliceStore) Add(_ context.Context, records []domain.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *sliceStore) Query(_ context.Context, vector []float32, k int) ([]domain.ScoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best []domain.ScoredRecord
	for _, r := range s.records {
		var dot float64
		for i := range vector {
			dot += float64(vector[i]) * float64(r.Embedding[i])
		}
		best = append(best, domain.ScoredRecord{VectorRecord: r, Distance: 1 - dot})
	}
	for i := 1; i < len(best); i++ {
		for j := i; j > 0 && best[j].Distance < best[j-1].Distance; j-- {
			best[j], best[j-1] = best[j-1], best[j]
		}
	}
	if len(best) > k {
		best = best[:k]
	}
	return best, nil
}

func (s *sliceStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

func (s *sliceStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

type sliceConversations struct {
	mu    sync.Mutex
	items []*domain.Conversation
}

func (c *sliceConversations) Save(_ context.Context, query, response string) (*domain.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv := &domain.Conversation{ID: int64(len(c.items) + 1), Query: query, Response: response, CreatedAt: time.Now().UTC()}
	c.items = append(c.items, conv)
	return conv, nil
}

func (c *sliceConversations) List(_ context.Context) ([]*domain.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*domain.Conversation(nil), c.items...), nil
}

func TestRouter_EndToEnd(t *testing.T) {
	ctx := context.Background()
	docsDir := t.TempDir()

	store := &sliceStore{}
	embedder := wordEmbedder{}
	text := "Diversification reduces portfolio risk."
	vec, _ := embedder.GenerateEmbedding(ctx, text)
	require.NoError(t, store.Add(ctx, []domain.VectorRecord{{
		Embedding: vec,
		Text:      text,
		Metadata:  domain.ChunkMetadata{Source: "wikipedia:Risk_management"},
	}}))

	conversations := &sliceConversations{}
	querySvc := service.NewQueryService(embedder, service.NewRetriever(store), service.NewSynthesizer(echoCompleter{}), conversations)

	srv := httptest.NewServer(NewRouter(RouterConfig{
		QueryHandler:        handlers.NewQueryHandler(querySvc),
		ConversationHandler: handlers.NewConversationHandler(service.NewConversationService(conversations)),
		UploadHandler:       handlers.NewUploadHandler(service.NewUploadService(storage.NewDiskStore(docsDir))),
	}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/query", "application/json", strings.NewReader(`{"query":"What reduces portfolio risk?"}`))
	require.NoError(t, err)
	var answer map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&answer))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, text, answer["response"])

	resp, err = http.Post(srv.URL+"/query", "application/json", strings.NewReader(`{"query":"   "}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/conversations")
	require.NoError(t, err)
	var history []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	resp.Body.Close()
	require.Len(t, history, 1)
	assert.Equal(t, "What reduces portfolio risk?", history[0]["query"])
	assert.Equal(t, text, history[0]["response"])
	assert.NotEmpty(t, history[0]["created_at"])

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "annual-report.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err = http.Post(srv.URL+"/upload", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	var uploaded map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploaded))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "uploaded", uploaded["status"])

	stored, err := os.ReadFile(filepath.Join(docsDir, "annual-report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(stored))
}
