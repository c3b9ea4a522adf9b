package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/cloo-solutions/finrag/internal/loader"
	"github.com/cloo-solutions/finrag/internal/telemetry"
)

// ChunkRepositoryInterface defines the vector store operations
type ChunkRepositoryInterface interface {
	Add(ctx context.Context, records []domain.VectorRecord) error
	Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredRecord, error)
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// BuildReport summarises one index build.
type BuildReport struct {
	Documents int
	Chunks    int
	Sources   []loader.Result
	Duration  time.Duration
}

// Failures counts skipped items across all sources.
func (r *BuildReport) Failures() int {
	n := 0
	for _, s := range r.Sources {
		n += len(s.Failures)
	}
	return n
}

// Indexer runs the build pipeline: load, chunk, embed, then replace the index.
type Indexer struct {
	loaders  []loader.Loader
	chunker  *Chunker
	embedder EmbeddingClient
	txRunner TxRunner
}

func NewIndexer(chunker *Chunker, embedder EmbeddingClient, txRunner TxRunner, loaders ...loader.Loader) *Indexer {
	return &Indexer{
		loaders:  loaders,
		chunker:  chunker,
		embedder: embedder,
		txRunner: txRunner,
	}
}

// Build loads every source and swaps the whole index in one transaction.
// Loader failures are reported, not returned. A build with nothing to index,
// an embedding error or a storage error leaves the previous index in place.
func (ix *Indexer) Build(ctx context.Context) (*BuildReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "Indexer.Build", telemetry.SpanAttributes{
		Operation: "build",
	})
	defer span.End()

	started := time.Now()

	results := loader.LoadAll(ctx, ix.loaders...)
	docs := loader.Documents(results)
	chunks := ix.chunker.SplitAll(docs)

	report := &BuildReport{
		Documents: len(docs),
		Chunks:    len(chunks),
		Sources:   results,
	}
	span.SetCount("documents", report.Documents)
	span.SetCount("chunks", report.Chunks)

	// an empty load would wipe a good index
	if len(chunks) == 0 {
		span.SetError(domain.ErrNoDocuments)
		return report, domain.ErrNoDocuments
	}

	records, err := ix.embed(ctx, chunks)
	if err != nil {
		span.SetError(err)
		return report, err
	}

	err = ix.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Chunks().DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
		if err := repos.Chunks().Add(ctx, records); err != nil {
			return fmt.Errorf("failed to store chunks: %w", err)
		}
		return nil
	})
	if err != nil {
		span.SetError(err)
		return report, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "index rebuild failed", err)
	}

	report.Duration = time.Since(started)
	log.Printf("index rebuilt: %d documents, %d chunks, %d skipped in %s",
		report.Documents, report.Chunks, report.Failures(), report.Duration.Round(time.Millisecond))

	return report, nil
}

func (ix *Indexer) embed(ctx context.Context, chunks []domain.Chunk) ([]domain.VectorRecord, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := ix.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, domain.ErrEmbeddingFailed.WithCause(err)
	}

	if len(embeddings) != len(chunks) {
		return nil, domain.ErrEmbeddingFailed.WithCause(
			fmt.Errorf("got %d embeddings for %d chunks", len(embeddings), len(chunks)))
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domain.NewVectorRecord(c, embeddings[i])
		if err := domain.ValidateVectorRecord(records[i], len(embeddings[0])); err != nil {
			return nil, domain.ErrEmbeddingFailed.WithCause(err)
		}
	}
	return records, nil
}
