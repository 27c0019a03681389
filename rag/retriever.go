package rag

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/promptlane/agentd/docstore"
)

// SearchResult is one retrieval hit in tool-friendly shape.
type SearchResult struct {
	ID       string         `json:"id"`
	Title    string         `json:"title,omitempty"`
	Snippet  string         `json:"snippet,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

// Query bundles the parameters of one retrieval call.
type Query struct {
	Text          string
	TopK          int
	Namespace     string
	TruncateChars int
}

// Retriever embeds queries and searches the document store.
type Retriever struct {
	Store        docstore.Store
	Embedder     Embedder
	Chunker      Chunker
	DefaultTopK  int
	MaxTopK      int
	SnippetChars int
}

// NewRetriever wires a Retriever with sane defaults.
func NewRetriever(store docstore.Store, embedder Embedder) *Retriever {
	return &Retriever{
		Store:        store,
		Embedder:     embedder,
		Chunker:      Chunker{Size: 1000, Overlap: 150},
		DefaultTopK:  5,
		MaxTopK:      20,
		SnippetChars: 500,
	}
}

// Search runs a similarity query. TopK falls back to the retriever default
// and is capped at MaxTopK.
func (r *Retriever) Search(ctx context.Context, q Query) ([]SearchResult, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, fmt.Errorf("retriever: query must be a non-empty string")
	}

	topK := q.TopK
	if topK <= 0 {
		topK = r.DefaultTopK
	}
	if r.MaxTopK > 0 && topK > r.MaxTopK {
		topK = r.MaxTopK
	}

	vectors, err := r.Embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("retriever: embed query: %w", err)
	}

	scored, err := r.Store.Search(ctx, q.Namespace, vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("retriever: store search: %w", err)
	}

	limit := q.TruncateChars
	if limit <= 0 {
		limit = r.SnippetChars
	}

	results := make([]SearchResult, 0, len(scored))
	for _, s := range scored {
		results = append(results, SearchResult{
			ID:       s.Document.ID,
			Title:    s.Document.Title,
			Snippet:  truncate(s.Document.Content, limit),
			Metadata: s.Document.Metadata,
			Score:    s.Score,
		})
	}
	return results, nil
}

// IngestStats summarizes one ingestion call.
type IngestStats struct {
	NumDocuments int `json:"num_documents"`
	NumChunks    int `json:"num_chunks"`
}

// IngestTexts chunks, embeds, and stores raw texts. Metadata is applied to
// every chunk; each chunk additionally records its source document index.
func (r *Retriever) IngestTexts(ctx context.Context, texts []string, namespace string, metadata map[string]any) (IngestStats, error) {
	stats := IngestStats{}
	var docs []docstore.Document

	for docIdx, text := range texts {
		chunks := r.Chunker.Split(text)
		if len(chunks) == 0 {
			continue
		}
		stats.NumDocuments++

		vectors, err := r.Embedder.Embed(ctx, chunks)
		if err != nil {
			return IngestStats{}, fmt.Errorf("retriever: embed chunks: %w", err)
		}

		for i, chunk := range chunks {
			md := make(map[string]any, len(metadata)+2)
			for k, v := range metadata {
				md[k] = v
			}
			md["document_index"] = docIdx
			md["chunk_index"] = i

			docs = append(docs, docstore.Document{
				ID:        uuid.NewString(),
				Namespace: namespace,
				Content:   chunk,
				Metadata:  md,
				Vector:    vectors[i],
			})
		}
	}

	if len(docs) == 0 {
		return stats, nil
	}
	if err := r.Store.Add(ctx, docs); err != nil {
		return IngestStats{}, fmt.Errorf("retriever: store documents: %w", err)
	}
	stats.NumChunks = len(docs)
	return stats, nil
}

// truncate shortens s to at most limit bytes plus an ellipsis, backing off
// to the previous rune boundary so multibyte content stays valid UTF-8.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
