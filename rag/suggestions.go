package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/promptlane/agentd/llm"
)

const suggestPrompt = `Given the user's question, the assistant's answer, and the retrieved context,
propose follow-up questions the user might ask next.

Rules:
- Return a JSON array of strings, nothing else.
- Each question must be answerable from the context.
- Keep questions short and specific.

QUESTION: %s

ANSWER: %s

CONTEXT:
%s`

// Suggester generates follow-up questions after a retrieval-grounded answer.
type Suggester struct {
	LLM llm.Chatter
	Max int
}

// Suggest returns up to Max follow-up questions. Suggestion generation is
// best-effort: any LLM failure yields an empty list, never an error to the
// caller's response path.
func (s *Suggester) Suggest(ctx context.Context, question, answer, contextText string) []string {
	max := s.Max
	if max <= 0 {
		max = 5
	}

	prompt := fmt.Sprintf(suggestPrompt, question, answer, contextText)
	resp, err := s.LLM.Chat(ctx, llm.Request{
		Messages: []llm.Message{llm.UserMessage(prompt)},
	})
	if err != nil {
		return nil
	}

	msg, _ := llm.Normalize(resp)
	suggestions := parseSuggestions(msg.Content)

	seen := make(map[string]bool, len(suggestions))
	unique := suggestions[:0]
	for _, q := range suggestions {
		if !seen[q] {
			seen[q] = true
			unique = append(unique, q)
		}
	}
	if len(unique) > max {
		unique = unique[:max]
	}
	return unique
}

// parseSuggestions tries strict JSON first, then falls back to one question
// per line with bullets and numbering stripped.
func parseSuggestions(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		out := arr[:0]
		for _, item := range arr {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}

	var out []string
	for _, line := range strings.Split(raw, "\n") {
		cleaned := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789. "))
		if cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
