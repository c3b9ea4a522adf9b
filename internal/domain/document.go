package domain

import "fmt"

// Document is a unit of loaded source text together with its provenance tag.
type Document struct {
	Text   string
	Source string
}

// Chunk is a bounded slice of a Document's text. Index is its position within the parent document.
type Chunk struct {
	Text   string
	Source string
	Index  int
}

// ChunkMetadata is the metadata persisted next to every vector record.
type ChunkMetadata struct {
	Source string
}

// VectorRecord is an embedded chunk as held by the vector store
type VectorRecord struct {
	Embedding []float32
	Text      string
	Metadata  ChunkMetadata
	Index     int
}

// ScoredRecord is a vector store hit. Lower Distance means more similar.
type ScoredRecord struct {
	VectorRecord
	Distance float64
}

// NewVectorRecord builds a VectorRecord from a chunk and its embedding
func NewVectorRecord(c Chunk, embedding []float32) VectorRecord {
	return VectorRecord{
		Embedding: embedding,
		Text:      c.Text,
		Metadata:  ChunkMetadata{Source: c.Source},
		Index:     c.Index,
	}
}

// ValidateVectorRecord validates a VectorRecord against the expected embedding dimensions
func ValidateVectorRecord(r VectorRecord, dimensions int) error {
	if len(r.Embedding) == 0 {
		return fmt.Errorf("vector record Embedding is required")
	}

	if dimensions > 0 && len(r.Embedding) != dimensions {
		return fmt.Errorf("vector record Embedding has %d dimensions, expected %d", len(r.Embedding), dimensions)
	}

	if r.Metadata.Source == "" {
		return fmt.Errorf("vector record Source is required")
	}

	return nil
}
