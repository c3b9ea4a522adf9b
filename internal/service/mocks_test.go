package service

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/cloo-solutions/finrag/internal/loader"
	"github.com/stretchr/testify/mock"
)

type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbeddingClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) Add(ctx context.Context, records []domain.VectorRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockChunkRepository) Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredRecord, error) {
	args := m.Called(ctx, vector, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredRecord), args.Error(1)
}

func (m *MockChunkRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockChunkRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Save(ctx context.Context, query, response string) (*domain.Conversation, error) {
	args := m.Called(ctx, query, response)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) List(ctx context.Context) ([]*domain.Conversation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Conversation), args.Error(1)
}

type MockIndexJobRepository struct {
	mock.Mock
}

func (m *MockIndexJobRepository) Create(ctx context.Context, job *domain.IndexJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockIndexJobRepository) GetByID(ctx context.Context, id string) (*domain.IndexJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IndexJob), args.Error(1)
}

func (m *MockIndexJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.IndexJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.IndexJob), args.Error(1)
}

func (m *MockIndexJobRepository) UpdateStatus(ctx context.Context, id string, status domain.IndexJobStatus, errMsg string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

func (m *MockIndexJobRepository) IncrementRetries(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUUIDGenerator struct {
	mock.Mock
}

func (m *MockUUIDGenerator) NewString() string {
	args := m.Called()
	return args.String(0)
}

type staticLoader struct {
	name string
	docs []domain.Document
	errs []loader.Failure
}

func (l staticLoader) Name() string { return l.name }

func (l staticLoader) Load(_ context.Context) loader.Result {
	return loader.Result{Documents: l.docs, Failures: l.errs}
}

// memoryStore is an in-memory vector store ranking by dot product, which
// equals cosine similarity for the unit vectors used in tests.
type memoryStore struct {
	mu      sync.Mutex
	records []domain.VectorRecord
}

func (s *memoryStore) Add(_ context.Context, records []domain.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *memoryStore) Query(_ context.Context, vector []float32, k int) ([]domain.ScoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hits := make([]domain.ScoredRecord, 0, len(s.records))
	for _, r := range s.records {
		var dot float64
		for i := range vector {
			dot += float64(vector[i]) * float64(r.Embedding[i])
		}
		hits = append(hits, domain.ScoredRecord{VectorRecord: r, Distance: 1 - dot})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *memoryStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

func (s *memoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

type memoryConversations struct {
	mu    sync.Mutex
	items []*domain.Conversation
}

func (c *memoryConversations) Save(_ context.Context, query, response string) (*domain.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv := &domain.Conversation{ID: int64(len(c.items) + 1), Query: query, Response: response}
	c.items = append(c.items, conv)
	return conv, nil
}

func (c *memoryConversations) List(_ context.Context) ([]*domain.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*domain.Conversation(nil), c.items...), nil
}

type memoryDocumentStore struct {
	files map[string]string
	err   error
}

func (s *memoryDocumentStore) Save(name string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if s.files == nil {
		s.files = map[string]string{}
	}
	s.files[name] = string(b)
	return "/docs/" + name, nil
}

type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) ArchiveFile(ctx context.Context, key, filePath, contentType string) error {
	args := m.Called(ctx, key, filePath, contentType)
	return args.Error(0)
}
