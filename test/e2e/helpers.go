//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/finrag/internal/api/handlers"
	"github.com/cloo-solutions/finrag/internal/api/middleware"
	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/cloo-solutions/finrag/internal/loader"
	"github.com/cloo-solutions/finrag/internal/openai"
	"github.com/cloo-solutions/finrag/internal/repository"
	"github.com/cloo-solutions/finrag/internal/server"
	"github.com/cloo-solutions/finrag/internal/service"
	"github.com/cloo-solutions/finrag/internal/storage"
	"github.com/cloo-solutions/finrag/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	e2eAPIKey  = "e2e-secret"
	e2eBucket  = "finrag-e2e"
	dimensions = 1536
)

// keywords are the embedding axes the fake OpenAI server uses.
var keywords = []string{"risk", "bond", "dividend", "inflation", "apple"}

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	RustFSC    *testutil.RustFSContainer
	Pool       *pgxpool.Pool
	S3Client   *storage.S3Client
	OpenAI     *httptest.Server
	Server     *httptest.Server
	DocsDir    string
	AIClient   *openai.Client
	HTTPClient *http.Client
}

// SetupE2EEnv starts Postgres and RustFS, a fake OpenAI API and the finrag router.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          e2eBucket,
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	fakeAI := httptest.NewServer(http.HandlerFunc(fakeOpenAI))
	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:              "sk-e2e",
		BaseURL:             fakeAI.URL + "/v1",
		EmbeddingDimensions: dimensions,
	})

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		RustFSC:    s3C,
		Pool:       pool,
		S3Client:   s3Client,
		OpenAI:     fakeAI,
		DocsDir:    t.TempDir(),
		AIClient:   aiClient,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	env.Server = httptest.NewServer(env.router())

	return env
}

func (e *E2ETestEnv) router() http.Handler {
	chunkRepo := repository.NewChunkRepository(e.Pool)
	conversationRepo := repository.NewConversationRepository(e.Pool)
	indexJobRepo := repository.NewIndexJobRepository(e.Pool)

	querySvc := service.NewQueryService(e.AIClient, service.NewRetriever(chunkRepo), service.NewSynthesizer(e.AIClient), conversationRepo)
	uploadSvc := service.NewUploadService(storage.NewDiskStore(e.DocsDir)).
		WithArchiver(e.S3Client).
		WithReindex(indexJobRepo, &service.DefaultUUIDGenerator{})

	return server.NewRouter(server.RouterConfig{
		AuthValidator:       middleware.StaticKey(e2eAPIKey),
		QueryHandler:        handlers.NewQueryHandler(querySvc),
		ConversationHandler: handlers.NewConversationHandler(service.NewConversationService(conversationRepo)),
		UploadHandler:       handlers.NewUploadHandler(uploadSvc),
	})
}

// Indexer builds an indexer over the given documents with the real chunker,
// embedding client and transaction runner.
func (e *E2ETestEnv) Indexer(docs ...domain.Document) *service.Indexer {
	chunker, err := service.NewChunker(service.DefaultChunkConfig())
	if err != nil {
		e.T.Fatalf("failed to create chunker: %v", err)
	}
	return service.NewIndexer(chunker, e.AIClient, repository.NewTxRunner(e.Pool), staticLoader(docs))
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.OpenAI != nil {
		e.OpenAI.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		_ = e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		_ = e.PostgresC.Terminate(e.Ctx)
	}
}

// Do sends an authenticated request and returns the status and body.
func (e *E2ETestEnv) Do(method, path, contentType string, body io.Reader) (int, []byte) {
	req, err := http.NewRequestWithContext(e.Ctx, method, e.Server.URL+path, body)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+e2eAPIKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read body: %v", err)
	}
	return resp.StatusCode, data
}

// Ask posts a question to /query.
func (e *E2ETestEnv) Ask(question string) (int, []byte) {
	payload, _ := json.Marshal(map[string]string{"query": question})
	return e.Do(http.MethodPost, "/query", "application/json", bytes.NewReader(payload))
}

// Upload posts content as the multipart "file" field.
func (e *E2ETestEnv) Upload(filename, content string) (int, []byte) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		e.T.Fatalf("failed to create form file: %v", err)
	}
	_, _ = part.Write([]byte(content))
	_ = writer.Close()

	return e.Do(http.MethodPost, "/upload", writer.FormDataContentType(), &buf)
}

type staticLoader []domain.Document

func (staticLoader) Name() string { return "static" }

func (l staticLoader) Load(context.Context) loader.Result {
	return loader.Result{Documents: l}
}

// embed maps text onto the keyword axes, with a constant last component so
// no vector is all zeros.
func embed(text string) []float32 {
	v := make([]float32, dimensions)
	lower := strings.ToLower(text)
	for i, k := range keywords {
		if strings.Contains(lower, k) {
			v[i] = 1
		}
	}
	v[dimensions-1] = 0.1
	return v
}

// fakeOpenAI serves /v1/embeddings and /v1/chat/completions. The chat reply
// echoes the first context passage of the prompt.
func fakeOpenAI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/v1/embeddings":
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data := make([]map[string]interface{}, len(req.Input))
		for i, text := range req.Input {
			data[i] = map[string]interface{}{"object": "embedding", "index": i, "embedding": embed(text)}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   data,
			"model":  "text-embedding-3-small",
		})

	case "/v1/chat/completions":
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		parts := strings.Split(req.Messages[0].Content, "\n\n")
		answer := ""
		if len(parts) > 1 {
			answer = parts[1]
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-e2e",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": answer},
			}},
		})

	default:
		http.Error(w, fmt.Sprintf("unexpected path %s", r.URL.Path), http.StatusNotFound)
	}
}
