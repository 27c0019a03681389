// Package docstore persists embedded document chunks and serves
// vector-similarity lookups for the retrieval tools. Backends are
// namespace-scoped; an empty namespace is the default collection.
package docstore

import (
	"context"
	"math"
)

// Document is one embedded chunk.
type Document struct {
	ID        string         `json:"id"`
	Namespace string         `json:"namespace,omitempty"`
	Title     string         `json:"title,omitempty"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Vector    []float32      `json:"vector"`
}

// Scored pairs a document with its similarity to a query vector.
type Scored struct {
	Document Document
	Score    float64
}

// Store is the persistence contract behind the retriever.
type Store interface {
	// Add inserts documents, overwriting existing IDs.
	Add(ctx context.Context, docs []Document) error
	// Search returns up to limit documents from the namespace ordered by
	// descending cosine similarity to the query vector.
	Search(ctx context.Context, namespace string, vector []float32, limit int) ([]Scored, error)
	// Count reports how many documents the namespace holds.
	Count(ctx context.Context, namespace string) (int, error)
}

// CosineSimilarity computes the cosine similarity of two vectors. Vectors
// of different lengths, or zero vectors, score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
