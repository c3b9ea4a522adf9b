package repository

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository is the vector store: embedded chunks in document_chunks.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// Add appends records in one batch round trip.
func (r *ChunkRepository) Add(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO document_chunks (source, chunk_index, content, embedding)
			 VALUES ($1, $2, $3, $4)`,
			rec.Metadata.Source, rec.Index, rec.Text, pgvector.NewVector(rec.Embedding),
		)
	}

	br := r.db.SendBatch(ctx, batch)
	for i := range records {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}
	return br.Close()
}

// Query returns the k records closest to vector by cosine distance, nearest first.
// Embeddings are not read back.
func (r *ChunkRepository) Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredRecord, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT source, chunk_index, content, embedding <=> $1 AS distance
		 FROM document_chunks
		 ORDER BY embedding <=> $1, id
		 LIMIT $2`,
		pgvector.NewVector(vector), k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ScoredRecord
	for rows.Next() {
		var rec domain.ScoredRecord
		if err := rows.Scan(&rec.Metadata.Source, &rec.Index, &rec.Text, &rec.Distance); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// rebuildLockKey names the advisory lock that serialises index rebuilds.
const rebuildLockKey int64 = 0x66696e726167

// DeleteAll empties the index. It first takes a transaction-scoped advisory
// lock, so a concurrent rebuild waits for this transaction to commit and then
// deletes what it wrote instead of adding a second copy next to it.
func (r *ChunkRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, rebuildLockKey); err != nil {
		return fmt.Errorf("failed to lock index: %w", err)
	}
	_, err := r.db.Exec(ctx, `DELETE FROM document_chunks`)
	return err
}

func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&n)
	return n, err
}
