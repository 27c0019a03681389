package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/promptlane/agentd/agent"
	"github.com/promptlane/agentd/llm"
	"github.com/promptlane/agentd/rag"
	"github.com/promptlane/agentd/tools"
)

type chatHistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Question       string             `json:"question"`
	History        []chatHistoryEntry `json:"history,omitempty"`
	ConversationID string             `json:"conversation_id,omitempty"`
	Debug          *bool              `json:"debug,omitempty"`
	Tone           string             `json:"tone,omitempty"`
	Style          string             `json:"style,omitempty"`
	Temperature    *float64           `json:"temperature,omitempty"`
	Namespace      string             `json:"namespace,omitempty"`
}

type chatResponse struct {
	ConversationID string             `json:"conversation_id"`
	Answer         string             `json:"answer"`
	StopReason     agent.StopReason   `json:"stop_reason"`
	Intent         string             `json:"intent"`
	Sources        []rag.SearchResult `json:"sources,omitempty"`
	Suggestions    []string           `json:"suggestions,omitempty"`
	Trace          []agent.TraceStep  `json:"trace,omitempty"`
	ToolCalls      []llm.ToolCall     `json:"tool_calls,omitempty"`
	Usage          llm.Usage          `json:"usage"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	reqID := requestID()
	logger := s.requestLogger(reqID, req.ConversationID)

	intent := rag.IntentRAGQA
	if s.deps.Classifier != nil {
		classified, err := s.deps.Classifier.Classify(r.Context(), req.Question)
		if err != nil {
			logger.Warn("intent_classification_failed", "error", err.Error())
		}
		intent = classified
	}

	policies := s.deps.Policies
	if intent == rag.IntentChitchat {
		// Small talk gets a plain completion; no tool round-trips.
		policies.ToolChoice = llm.ToolChoiceNone
	}

	namespace := req.Namespace
	if namespace == "" {
		namespace = s.deps.Namespace
	}

	recorder := &recordingSearcher{inner: s.deps.Retriever}
	tc := &tools.Context{
		RequestID: reqID,
		Logger:    logger,
		Retriever: recorder,
		LLM:       s.deps.LLM,
		Namespace: namespace,
	}

	orch := agent.New(s.deps.LLM, s.deps.Registry, policies, logger)
	result := orch.Run(r.Context(), agent.RunRequest{
		Question:       req.Question,
		History:        historyMessages(req.History),
		ConversationID: req.ConversationID,
		Debug:          req.Debug,
		Context:        tc,
		Tone:           req.Tone,
		Style:          req.Style,
		Temperature:    req.Temperature,
	})

	resp := chatResponse{
		ConversationID: result.ConversationID,
		Answer:         result.Message,
		StopReason:     result.Stop,
		Intent:         string(intent),
		Sources:        dedupeSources(recorder.results),
		Trace:          result.Trace,
		ToolCalls:      result.ToolCalls,
		Usage:          result.Usage,
	}

	if s.deps.Suggester != nil && result.Stop.Kind == agent.StopCompleted {
		resp.Suggestions = s.deps.Suggester.Suggest(
			r.Context(), req.Question, result.Message, rag.FormatContext(recorder.results))
	}

	writeJSON(w, http.StatusOK, resp)
}

// historyMessages converts the wire history into transcript messages,
// dropping entries with roles the transcript cannot carry.
func historyMessages(entries []chatHistoryEntry) []llm.Message {
	out := make([]llm.Message, 0, len(entries))
	for _, e := range entries {
		switch llm.Role(e.Role) {
		case llm.RoleUser:
			out = append(out, llm.UserMessage(e.Content))
		case llm.RoleAssistant:
			out = append(out, llm.AssistantMessage(e.Content))
		}
	}
	return out
}

// dedupeSources drops repeat hits across multiple retrievals in one run,
// keeping first-seen order.
func dedupeSources(results []rag.SearchResult) []rag.SearchResult {
	if len(results) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(results))
	out := make([]rag.SearchResult, 0, len(results))
	for _, r := range results {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}
