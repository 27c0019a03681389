package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	results []SearchResult
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, q Query) ([]SearchResult, error) {
	return f.results, f.err
}

func TestAnswerer(t *testing.T) {
	t.Run("grounded answer with sources", func(t *testing.T) {
		searcher := &fakeSearcher{results: []SearchResult{
			{ID: "1", Snippet: "Redis supports key expiry.", Score: 0.9},
		}}
		chatter := &fakeChatter{content: "Keys expire via TTL [S1]."}
		a := &Answerer{LLM: chatter, Retriever: searcher}

		answer, sources, err := a.Answer(context.Background(), "How do keys expire?", Query{Namespace: "kb"})
		require.NoError(t, err)
		assert.Equal(t, "Keys expire via TTL [S1].", answer)
		require.Len(t, sources, 1)

		// The prompt must carry the labeled context.
		require.NotEmpty(t, chatter.prompts)
		assert.Contains(t, chatter.prompts[0], "[S1] Redis supports key expiry.")
	})

	t.Run("retrieval failure propagates", func(t *testing.T) {
		a := &Answerer{
			LLM:       &fakeChatter{content: "unused"},
			Retriever: &fakeSearcher{err: errors.New("store down")},
		}
		_, _, err := a.Answer(context.Background(), "q", Query{})
		assert.Error(t, err)
	})
}

func TestFormatContext(t *testing.T) {
	assert.Equal(t, "(no context retrieved)", FormatContext(nil))

	got := FormatContext([]SearchResult{
		{Snippet: "first"},
		{Snippet: "second"},
	})
	assert.Equal(t, "[S1] first\n[S2] second", got)
}
