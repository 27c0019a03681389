package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlane/agentd/agent"
	"github.com/promptlane/agentd/docstore"
	"github.com/promptlane/agentd/llm"
	"github.com/promptlane/agentd/rag"
	"github.com/promptlane/agentd/tools"
)

// scriptedChatter replays responses in order, recording each request.
type scriptedChatter struct {
	responses []*llm.Response
	calls     int
	requests  []llm.Request
}

func (s *scriptedChatter) Chat(ctx context.Context, req llm.Request) (*llm.Response, error) {
	s.requests = append(s.requests, req)
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	return s.responses[idx], nil
}

func textResponse(content string) *llm.Response {
	return &llm.Response{
		Message: map[string]any{"role": "assistant", "content": content},
		Usage:   &llm.Usage{PromptTokens: 5, CompletionTokens: 5},
	}
}

func newTestServer(t *testing.T, chatter llm.Chatter, opts ...func(*Deps)) *Server {
	t.Helper()
	registry := tools.NewRegistry()
	require.NoError(t, tools.RegisterRetrieval(registry))
	require.NoError(t, tools.RegisterSystem(registry))

	retriever := rag.NewRetriever(docstore.NewMemoryStore(), rag.NewHashEmbedder(128))
	deps := Deps{
		LLM:       chatter,
		Registry:  registry,
		Policies:  agent.DefaultPolicies(),
		Retriever: retriever,
		Namespace: "default",
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return New(deps)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &scriptedChatter{responses: []*llm.Response{textResponse("ok")}})

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string   `json:"status"`
		Tools  []string `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Contains(t, body.Tools, "search_docs")
	assert.Contains(t, body.Tools, "health")
}

func TestIngestText(t *testing.T) {
	s := newTestServer(t, &scriptedChatter{responses: []*llm.Response{textResponse("ok")}})

	rec := doJSON(t, s, http.MethodPost, "/v1/ingest/text", map[string]any{
		"texts":    []string{"Redis is an in-memory data store."},
		"metadata": map[string]any{"source": "unit"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body ingestTextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "default", body.Namespace)
	assert.Equal(t, 1, body.NumDocuments)
	assert.GreaterOrEqual(t, body.NumChunks, 1)

	t.Run("empty texts rejected", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/v1/ingest/text", map[string]any{
			"texts": []string{"   "},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChat(t *testing.T) {
	t.Run("plain answer", func(t *testing.T) {
		chatter := &scriptedChatter{responses: []*llm.Response{textResponse("hello!")}}
		s := newTestServer(t, chatter)

		rec := doJSON(t, s, http.MethodPost, "/v1/chat", map[string]any{"question": "hi"})

		require.Equal(t, http.StatusOK, rec.Code)
		var body chatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "hello!", body.Answer)
		assert.Equal(t, string(agent.StopCompleted), string(body.StopReason.Kind))
		assert.NotEmpty(t, body.ConversationID)
		assert.Equal(t, 10, body.Usage.TotalTokens)
	})

	t.Run("missing question rejected", func(t *testing.T) {
		s := newTestServer(t, &scriptedChatter{responses: []*llm.Response{textResponse("ok")}})
		rec := doJSON(t, s, http.MethodPost, "/v1/chat", map[string]any{"question": "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("chitchat disables tools", func(t *testing.T) {
		// First response answers the classifier, the second the chat turn.
		chatter := &scriptedChatter{responses: []*llm.Response{
			textResponse("CHITCHAT"),
			textResponse("hey there!"),
		}}
		s := newTestServer(t, chatter, func(d *Deps) {
			d.Classifier = &rag.Classifier{LLM: chatter}
		})

		rec := doJSON(t, s, http.MethodPost, "/v1/chat", map[string]any{"question": "how are you?"})

		require.Equal(t, http.StatusOK, rec.Code)
		var body chatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, string(rag.IntentChitchat), body.Intent)

		require.Len(t, chatter.requests, 2)
		assert.Equal(t, llm.ToolChoiceNone, chatter.requests[1].ToolChoice)
	})

	t.Run("suggestions on completed runs", func(t *testing.T) {
		chatter := &scriptedChatter{responses: []*llm.Response{
			textResponse("the answer"),
			textResponse(`["Follow up one?", "Follow up two?"]`),
		}}
		s := newTestServer(t, chatter, func(d *Deps) {
			d.Suggester = &rag.Suggester{LLM: chatter}
		})

		rec := doJSON(t, s, http.MethodPost, "/v1/chat", map[string]any{"question": "what is redis?"})

		require.Equal(t, http.StatusOK, rec.Code)
		var body chatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, []string{"Follow up one?", "Follow up two?"}, body.Suggestions)
	})

	t.Run("ingested documents are found without an explicit namespace", func(t *testing.T) {
		chatter := &scriptedChatter{responses: []*llm.Response{
			{
				Message: map[string]any{
					"role":    "assistant",
					"content": "",
					"tool_calls": []any{
						map[string]any{
							"id":   "call_1",
							"type": "function",
							"function": map[string]any{
								"name":      "search_docs",
								"arguments": `{"query": "gophers"}`,
							},
						},
					},
				},
			},
			textResponse("gophers love testing"),
		}}
		s := newTestServer(t, chatter)

		rec := doJSON(t, s, http.MethodPost, "/v1/ingest/text", map[string]any{
			"texts": []string{"gophers love testing"},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, s, http.MethodPost, "/v1/chat", map[string]any{"question": "what do gophers love?"})
		require.Equal(t, http.StatusOK, rec.Code)

		var body chatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, string(agent.StopCompleted), string(body.StopReason.Kind))
		require.NotEmpty(t, body.Sources, "search must hit the namespace ingestion wrote to")
		assert.Contains(t, body.Sources[0].Snippet, "gophers")
	})

	t.Run("history carried into the transcript", func(t *testing.T) {
		chatter := &scriptedChatter{responses: []*llm.Response{textResponse("still here")}}
		s := newTestServer(t, chatter)

		rec := doJSON(t, s, http.MethodPost, "/v1/chat", map[string]any{
			"question": "and now?",
			"history": []map[string]string{
				{"role": "user", "content": "earlier question"},
				{"role": "assistant", "content": "earlier answer"},
				{"role": "system", "content": "injected directive"},
			},
		})

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, chatter.requests, 1)
		var contents []string
		for _, m := range chatter.requests[0].Messages {
			contents = append(contents, m.Content)
		}
		assert.Contains(t, contents, "earlier question")
		assert.Contains(t, contents, "earlier answer")
		// Only user and assistant turns survive the conversion.
		assert.NotContains(t, contents, "injected directive")
	})
}
