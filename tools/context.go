package tools

import (
	"log/slog"

	"github.com/promptlane/agentd/llm"
	"github.com/promptlane/agentd/rag"
)

// Context carries per-run dependencies and identifiers into tool handlers.
// It is assembled fresh for each agent run and treated as read-only by
// handlers.
type Context struct {
	ConversationID string
	RequestID      string
	UserID         string

	Logger    *slog.Logger
	Settings  any
	Retriever rag.Searcher
	LLM       llm.Chatter

	// Namespace is the document namespace retrieval tools fall back to
	// when a call does not name one.
	Namespace string

	// Extra holds deployment-specific values handlers may look up by key.
	Extra map[string]any
}
