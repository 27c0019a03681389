package rag

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Embedder maps texts onto fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// HashEmbedder is a deterministic feature-hashing embedder: tokens are
// hashed into a fixed number of buckets and the bucket counts L2-normalized.
// It needs no network or model weights, which keeps ingestion and retrieval
// fully self-contained; swap in a provider-backed Embedder for semantic
// quality.
type HashEmbedder struct {
	Dim int
}

const defaultEmbedderDim = 512

// NewHashEmbedder creates a HashEmbedder with the given dimensionality.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = defaultEmbedderDim
	}
	return &HashEmbedder{Dim: dim}
}

// Dimensions implements Embedder.
func (e *HashEmbedder) Dimensions() int { return e.Dim }

// Embed implements Embedder.
func (e *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embedOne(text)
	}
	return vectors, nil
}

func (e *HashEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.Dim)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%uint32(e.Dim)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
