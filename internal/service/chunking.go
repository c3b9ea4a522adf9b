package service

import (
	"strings"
	"unicode"

	"github.com/cloo-solutions/finrag/internal/domain"
)

// ChunkConfig controls how documents are split before embedding.
// All sizes are in runes.
type ChunkConfig struct {
	MaxChars int
	MinChars int
	Overlap  int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChars: 1000,
		MinChars: 400,
		Overlap:  200,
	}
}

// Chunker splits documents into overlapping windows.
type Chunker struct {
	cfg ChunkConfig
}

func NewChunker(cfg ChunkConfig) (*Chunker, error) {
	if cfg.MaxChars <= 0 || cfg.Overlap < 0 || cfg.Overlap >= cfg.MaxChars {
		return nil, domain.ErrInvalidChunkConfig
	}
	if cfg.MinChars < 0 || cfg.MinChars > cfg.MaxChars {
		cfg.MinChars = 0
	}
	return &Chunker{cfg: cfg}, nil
}

// Split cuts doc into chunks tagged with the document's source, in text order.
func (c *Chunker) Split(doc domain.Document) []domain.Chunk {
	texts := chunkText(doc.Text, c.cfg)
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{Text: text, Source: doc.Source, Index: i}
	}
	return chunks
}

// SplitAll splits every document and concatenates the chunks in document order.
func (c *Chunker) SplitAll(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.Split(doc)...)
	}
	return chunks
}

// chunkText assumes a validated cfg. Consecutive chunks share exactly
// cfg.Overlap runes and together cover the trimmed text.
func chunkText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	runes := []rune(clean)
	if len(runes) <= cfg.MaxChars {
		return []string{clean}
	}

	chunks := make([]string, 0, len(runes)/(cfg.MaxChars-cfg.Overlap)+1)
	start := 0
	for {
		end := start + cfg.MaxChars
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		// the cut must leave the next window strictly ahead of this one
		minCut := start + cfg.MinChars
		if minCut < start+cfg.Overlap+1 {
			minCut = start + cfg.Overlap + 1
		}
		end = findCut(runes, minCut, end)

		chunks = append(chunks, string(runes[start:end]))
		start = end - cfg.Overlap
	}

	return chunks
}

// findCut returns the best boundary in (lo, hi]: after a paragraph break,
// then after a sentence end, then after whitespace, else hi.
func findCut(runes []rune, lo, hi int) int {
	if lo >= hi {
		return hi
	}
	for i := hi; i > lo; i-- {
		if i >= 2 && runes[i-1] == '\n' && runes[i-2] == '\n' {
			return i
		}
	}
	for i := hi; i > lo; i-- {
		if i >= 2 && unicode.IsSpace(runes[i-1]) && isSentenceEnd(runes[i-2]) {
			return i
		}
	}
	for i := hi; i > lo; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return hi
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
