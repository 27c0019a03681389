package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkerSplit(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, Chunker{}.Split("   \n "))
	})

	t.Run("short text is one chunk", func(t *testing.T) {
		chunks := Chunker{Size: 100}.Split("hello world")
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello world", chunks[0])
	})

	t.Run("respects size limit", func(t *testing.T) {
		text := strings.Repeat("word ", 500)
		chunks := Chunker{Size: 200, Overlap: 20}.Split(text)
		require.NotEmpty(t, chunks)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), 200)
		}
	})

	t.Run("prefers paragraph boundaries", func(t *testing.T) {
		para1 := strings.Repeat("a", 80)
		para2 := strings.Repeat("b", 80)
		chunks := Chunker{Size: 100}.Split(para1 + "\n\n" + para2)
		require.Len(t, chunks, 2)
		assert.Equal(t, para1, chunks[0])
		assert.Equal(t, para2, chunks[1])
	})

	t.Run("covers all content", func(t *testing.T) {
		text := strings.Repeat("lorem ipsum dolor sit amet ", 100)
		chunks := Chunker{Size: 150, Overlap: 30}.Split(text)
		joined := strings.Join(chunks, " ")
		assert.Contains(t, joined, "lorem ipsum dolor sit amet")
		// Last chunk must end where the text ends.
		assert.True(t, strings.HasSuffix(strings.TrimSpace(text), chunks[len(chunks)-1]))
	})

	t.Run("oversized overlap disabled", func(t *testing.T) {
		text := strings.Repeat("x ", 300)
		chunks := Chunker{Size: 100, Overlap: 100}.Split(text)
		require.NotEmpty(t, chunks)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), 100)
		}
	})
}
