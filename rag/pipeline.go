package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/promptlane/agentd/llm"
)

const answerPrompt = `You are a helpful assistant that answers questions using ONLY the provided context.

Hard rules:
- Use ONLY the CONTEXT. Do not use outside knowledge.
- If the answer is not in the context, say: "I don't know from the provided context."
- Keep the answer short and direct.
- When you use a fact from the context, cite it like [S1], [S2] matching the chunk labels.

CONTEXT:
%s

USER QUESTION:
%s`

// Searcher is the retrieval interface consumers depend on. *Retriever
// satisfies it.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]SearchResult, error)
}

// Answerer runs the end-to-end retrieve-then-answer flow: one retrieval,
// one grounded LLM call.
type Answerer struct {
	LLM       llm.Chatter
	Retriever Searcher
}

// Answer retrieves context for the question and asks the LLM to answer from
// it. The returned sources are the retrieval hits the answer was grounded
// on, in ranked order.
func (a *Answerer) Answer(ctx context.Context, question string, q Query) (string, []SearchResult, error) {
	if q.Text == "" {
		q.Text = question
	}
	sources, err := a.Retriever.Search(ctx, q)
	if err != nil {
		return "", nil, err
	}

	prompt := fmt.Sprintf(answerPrompt, FormatContext(sources), question)
	resp, err := a.LLM.Chat(ctx, llm.Request{
		Messages: []llm.Message{llm.UserMessage(prompt)},
	})
	if err != nil {
		return "", nil, fmt.Errorf("answerer: %w", err)
	}

	msg, _ := llm.Normalize(resp)
	return strings.TrimSpace(msg.Content), sources, nil
}

// FormatContext renders retrieval hits as labeled context chunks ([S1],
// [S2], ...) for grounding prompts.
func FormatContext(results []SearchResult) string {
	if len(results) == 0 {
		return "(no context retrieved)"
	}
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "[S%d] %s\n", i+1, r.Snippet)
	}
	return strings.TrimRight(sb.String(), "\n")
}
