package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Zero(t, CosineSimilarity(nil, nil))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	docs := []Document{
		{ID: "a", Namespace: "kb", Content: "east", Vector: []float32{1, 0}},
		{ID: "b", Namespace: "kb", Content: "north", Vector: []float32{0, 1}},
		{ID: "c", Namespace: "other", Content: "elsewhere", Vector: []float32{1, 0}},
	}
	require.NoError(t, store.Add(ctx, docs))

	t.Run("count per namespace", func(t *testing.T) {
		n, err := store.Count(ctx, "kb")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = store.Count(ctx, "missing")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("search ranks by similarity", func(t *testing.T) {
		results, err := store.Search(ctx, "kb", []float32{1, 0.1}, 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].Document.ID)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("limit applied", func(t *testing.T) {
		results, err := store.Search(ctx, "kb", []float32{1, 0}, 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("namespaces are isolated", func(t *testing.T) {
		results, err := store.Search(ctx, "other", []float32{1, 0}, 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "c", results[0].Document.ID)
	})

	t.Run("add overwrites by id", func(t *testing.T) {
		require.NoError(t, store.Add(ctx, []Document{
			{ID: "a", Namespace: "kb", Content: "replaced", Vector: []float32{0, 1}},
		}))
		n, err := store.Count(ctx, "kb")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
