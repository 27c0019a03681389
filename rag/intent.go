package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/promptlane/agentd/llm"
)

// Intent labels what kind of handling a question needs.
type Intent string

const (
	IntentRAGQA    Intent = "RAG_QA"
	IntentChitchat Intent = "CHITCHAT"
	IntentOther    Intent = "OTHER"
)

const intentPrompt = `Classify the user question into exactly one of these intents:

- RAG_QA: the user wants information that should be answered from the document knowledge base.
- CHITCHAT: greetings, small talk, or conversation about the assistant itself.
- OTHER: anything else.

Reply with only the intent label.

Question: %s`

// Classifier decides the intent of an incoming question with a single
// low-temperature LLM call.
type Classifier struct {
	LLM llm.Chatter
}

var zeroTemperature = 0.0

// Classify returns the question's intent. Empty questions are OTHER without
// an LLM call. Model output is normalized forgivingly; anything
// unrecognizable defaults to RAG_QA, the safe choice for a retrieval
// system.
func (c *Classifier) Classify(ctx context.Context, question string) (Intent, error) {
	if strings.TrimSpace(question) == "" {
		return IntentOther, nil
	}

	resp, err := c.LLM.Chat(ctx, llm.Request{
		Messages:    []llm.Message{llm.UserMessage(fmt.Sprintf(intentPrompt, question))},
		Temperature: &zeroTemperature,
	})
	if err != nil {
		return IntentRAGQA, fmt.Errorf("intent classification: %w", err)
	}

	msg, _ := llm.Normalize(resp)
	return normalizeIntent(msg.Content), nil
}

// normalizeIntent is forgiving about decoration like "Intent: RAG_QA".
func normalizeIntent(raw string) Intent {
	text := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(text, "RAG"):
		return IntentRAGQA
	case strings.Contains(text, "CHITCHAT"), strings.Contains(text, "CHAT"), strings.Contains(text, "SMALLTALK"):
		return IntentChitchat
	case strings.Contains(text, "OTHER"):
		return IntentOther
	default:
		return IntentRAGQA
	}
}
