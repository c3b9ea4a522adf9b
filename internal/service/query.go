package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/cloo-solutions/finrag/internal/telemetry"
)

// RetrievalK is the number of passages handed to the synthesizer.
const RetrievalK = 4

const promptTemplate = `You are a financial assistant. Use the following context to answer the question.

%s

Question: %s
Answer:`

// Retriever returns the RetrievalK nearest chunks for a question vector.
type Retriever struct {
	chunks ChunkRepositoryInterface
}

func NewRetriever(chunks ChunkRepositoryInterface) *Retriever {
	return &Retriever{chunks: chunks}
}

func (r *Retriever) Retrieve(ctx context.Context, vector []float32) ([]domain.ScoredRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "Retriever.Retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
		TopK:      RetrievalK,
	})
	defer span.End()

	hits, err := r.chunks.Query(ctx, vector, RetrievalK)
	if err != nil {
		span.SetError(err)
		return nil, domain.ErrRetrievalFailed.WithCause(err)
	}
	span.SetCount("hits", len(hits))
	return hits, nil
}

// CompletionClient defines the interface for LLM completion
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Synthesizer turns a question and its context passages into an answer.
type Synthesizer struct {
	llm CompletionClient
}

func NewSynthesizer(llm CompletionClient) *Synthesizer {
	return &Synthesizer{llm: llm}
}

func (s *Synthesizer) Synthesize(ctx context.Context, question string, contextChunks []string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "Synthesizer.Synthesize", telemetry.SpanAttributes{
		Operation: "synthesize",
	})
	defer span.End()

	answer, err := s.llm.Complete(ctx, BuildPrompt(question, contextChunks))
	if err != nil {
		span.SetError(err)
		return "", domain.ErrAnswerFailed.WithCause(err)
	}
	return answer, nil
}

// BuildPrompt joins the passages with blank lines, in the order given.
func BuildPrompt(question string, contextChunks []string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(contextChunks, "\n\n"), question)
}

// ConversationRepositoryInterface defines the conversation log persistence
type ConversationRepositoryInterface interface {
	Save(ctx context.Context, query, response string) (*domain.Conversation, error)
	List(ctx context.Context) ([]*domain.Conversation, error)
}

// QueryService answers questions: embed, retrieve, synthesize, then log.
type QueryService struct {
	embedder      EmbeddingClient
	retriever     *Retriever
	synthesizer   *Synthesizer
	conversations ConversationRepositoryInterface
}

func NewQueryService(
	embedder EmbeddingClient,
	retriever *Retriever,
	synthesizer *Synthesizer,
	conversations ConversationRepositoryInterface,
) *QueryService {
	return &QueryService{
		embedder:      embedder,
		retriever:     retriever,
		synthesizer:   synthesizer,
		conversations: conversations,
	}
}

// Ask answers question from the indexed corpus. A failure to log the exchange
// is reported but does not fail the call.
func (s *QueryService) Ask(ctx context.Context, question string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "QueryService.Ask", telemetry.SpanAttributes{
		Operation: "query",
	})
	defer span.End()

	// the log keeps the question as submitted
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return "", domain.ErrEmptyQuery
	}

	vector, err := s.embedder.GenerateEmbedding(ctx, trimmed)
	if err != nil {
		span.SetError(err)
		return "", domain.ErrEmbeddingFailed.WithCause(err)
	}

	hits, err := s.retriever.Retrieve(ctx, vector)
	if err != nil {
		return "", err
	}

	passages := make([]string, len(hits))
	for i, h := range hits {
		passages[i] = h.Text
	}

	answer, err := s.synthesizer.Synthesize(ctx, trimmed, passages)
	if err != nil {
		return "", err
	}

	if _, err := s.conversations.Save(ctx, question, answer); err != nil {
		log.Printf("failed to log conversation: %v", err)
		telemetry.CaptureError(ctx, fmt.Errorf("failed to log conversation: %w", err))
	}

	return answer, nil
}
