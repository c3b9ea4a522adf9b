// Package cache memoises embeddings so repeated questions and unchanged chunks
// are not sent to the embedding backend again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"
)

// Embedder is the embedding backend being cached.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore holds cached vectors by key.
type VectorStore interface {
	// GetMany returns one entry per key, nil for a miss.
	GetMany(ctx context.Context, keys []string) ([][]float32, error)
	SetMany(ctx context.Context, entries map[string][]float32, ttl time.Duration) error
}

// CachedEmbedder serves embeddings from a VectorStore and asks the backend
// only for misses. Store errors degrade to uncached calls.
type CachedEmbedder struct {
	next      Embedder
	store     VectorStore
	namespace string
	ttl       time.Duration
}

// NewCachedEmbedder keys entries by model and dimensions, so switching either
// never serves a stale vector.
func NewCachedEmbedder(next Embedder, store VectorStore, model string, dimensions int, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		next:      next,
		store:     store,
		namespace: fmt.Sprintf("finrag:emb:%s:%d:", model, dimensions),
		ttl:       ttl,
	}
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.namespace + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// GenerateEmbeddings returns vectors in input order, mixing cached and fresh ones.
func (c *CachedEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return c.next.GenerateEmbeddings(ctx, texts)
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.key(t)
	}

	out, err := c.store.GetMany(ctx, keys)
	if err != nil || len(out) != len(texts) {
		if err != nil {
			log.Printf("embedding cache read failed: %v", err)
		}
		out = make([][]float32, len(texts))
	}

	var missIdx []int
	var missTexts []string
	for i, v := range out {
		if v == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.next.GenerateEmbeddings(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedding backend returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	entries := make(map[string][]float32, len(fresh))
	for j, i := range missIdx {
		out[i] = fresh[j]
		entries[keys[i]] = fresh[j]
	}
	if err := c.store.SetMany(ctx, entries, c.ttl); err != nil {
		log.Printf("embedding cache write failed: %v", err)
	}

	return out, nil
}
