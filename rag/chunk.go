// Package rag provides the retrieval layer the agent's document tools are
// built on: chunking, embedding, vector search, intent classification, and
// follow-up question suggestions.
package rag

import "strings"

// Chunker splits raw text into overlapping chunks, preferring paragraph
// then line then word boundaries over hard cuts.
type Chunker struct {
	Size    int
	Overlap int
}

var chunkSeparators = []string{"\n\n", "\n", " "}

// Split chunks text. Chunks are at most Size characters and consecutive
// chunks share up to Overlap trailing characters of context.
func (c Chunker) Split(text string) []string {
	size := c.Size
	if size <= 0 {
		size = 1000
	}
	overlap := c.Overlap
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := boundaryBefore(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// boundaryBefore finds the latest separator position in (start, end] so a
// chunk ends on a natural boundary when one exists in its back half.
func boundaryBefore(text string, start, end int) int {
	for _, sep := range chunkSeparators {
		idx := strings.LastIndex(text[start:end], sep)
		if idx > (end-start)/2 {
			return start + idx + len(sep)
		}
	}
	return end
}
