package tools

import (
	"context"
	"testing"

	"github.com/promptlane/agentd/llm"
	"github.com/promptlane/agentd/rag"
)

// capturingSearcher records the queries it receives and returns one hit.
type capturingSearcher struct {
	queries []rag.Query
}

func (c *capturingSearcher) Search(ctx context.Context, q rag.Query) ([]rag.SearchResult, error) {
	c.queries = append(c.queries, q)
	return []rag.SearchResult{{ID: "doc-1", Snippet: "hit", Score: 0.9}}, nil
}

type cannedChatter struct {
	content string
}

func (c *cannedChatter) Chat(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return &llm.Response{
		Message: map[string]any{"role": "assistant", "content": c.content},
	}, nil
}

func TestSearchDocsNamespaceDefaulting(t *testing.T) {
	r := NewRegistry()
	if err := RegisterRetrieval(r); err != nil {
		t.Fatalf("register retrieval tools: %v", err)
	}

	t.Run("omitted namespace falls back to the run namespace", func(t *testing.T) {
		searcher := &capturingSearcher{}
		tc := &Context{Retriever: searcher, Namespace: "default"}

		out, err := r.Call(context.Background(), "search_docs", map[string]any{"query": "gophers"}, tc)
		if err != nil {
			t.Fatalf("call: %v", err)
		}
		if len(searcher.queries) != 1 {
			t.Fatalf("expected one search, got %d", len(searcher.queries))
		}
		if searcher.queries[0].Namespace != "default" {
			t.Fatalf("expected run namespace, got %q", searcher.queries[0].Namespace)
		}
		result := out.(map[string]any)
		if result["count"] != 1 {
			t.Errorf("expected the ingested document to be found, got %v", result["count"])
		}
	})

	t.Run("explicit namespace wins", func(t *testing.T) {
		searcher := &capturingSearcher{}
		tc := &Context{Retriever: searcher, Namespace: "default"}

		_, err := r.Call(context.Background(), "search_docs", map[string]any{
			"query":     "gophers",
			"namespace": "kb",
		}, tc)
		if err != nil {
			t.Fatalf("call: %v", err)
		}
		if searcher.queries[0].Namespace != "kb" {
			t.Fatalf("expected explicit namespace, got %q", searcher.queries[0].Namespace)
		}
	})

	t.Run("answer_with_rag defaults the namespace too", func(t *testing.T) {
		searcher := &capturingSearcher{}
		tc := &Context{
			Retriever: searcher,
			LLM:       &cannedChatter{content: "grounded answer [S1]"},
			Namespace: "default",
		}

		_, err := r.Call(context.Background(), "answer_with_rag", map[string]any{"question": "gophers?"}, tc)
		if err != nil {
			t.Fatalf("call: %v", err)
		}
		if len(searcher.queries) != 1 || searcher.queries[0].Namespace != "default" {
			t.Fatalf("expected run namespace in retrieval, got %+v", searcher.queries)
		}
	})
}
