package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/teilomillet/gollm"
)

// GollmAdapter implements Chatter on top of gollm, covering providers that
// have no OpenAI-compatible endpoint. gollm works in prompt/completion
// terms, so the transcript is flattened into a single prompt and any tool
// calls the model emits as JSON text are lifted back into the envelope.
type GollmAdapter struct {
	provider string
	llm      gollm.LLM
}

// GollmConfig configures a GollmAdapter.
type GollmConfig struct {
	Provider    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// NewGollmAdapter builds a gollm-backed adapter. An empty API key defers to
// gollm's environment lookup.
func NewGollmAdapter(cfg GollmConfig) (*GollmAdapter, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	opts := []gollm.ConfigOption{
		gollm.SetProvider(cfg.Provider),
		gollm.SetMaxTokens(cfg.MaxTokens),
		gollm.SetTemperature(cfg.Temperature),
		gollm.SetMaxRetries(0), // adapter errors surface to the caller unretried
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if cfg.Model != "" {
		opts = append(opts, gollm.SetModel(cfg.Model))
	}
	if cfg.APIKey != "" {
		opts = append(opts, gollm.SetAPIKey(cfg.APIKey))
	}

	inner, err := gollm.NewLLM(opts...)
	if err != nil {
		return nil, fmt.Errorf("gollm adapter for provider %s: %w", cfg.Provider, err)
	}
	return &GollmAdapter{provider: cfg.Provider, llm: inner}, nil
}

// Chat implements Chatter.
func (a *GollmAdapter) Chat(ctx context.Context, req Request) (*Response, error) {
	prompt := a.translateRequest(req)
	if req.Temperature != nil {
		a.llm.SetOption("temperature", *req.Temperature)
	}

	text, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, &ProviderError{
			AdapterError: AdapterError{Message: "gollm generate failed", Cause: err},
			Provider:     a.provider,
		}
	}

	message := map[string]any{
		"role":    "assistant",
		"content": text,
	}
	if calls := a.parseToolCalls(text); len(calls) > 0 {
		message["tool_calls"] = calls
		message["content"] = a.stripToolCallJSON(text)
	}

	return &Response{
		Message: message,
		Usage: &Usage{
			// gollm exposes no usage counters; approximate from text size.
			PromptTokens:     estimateTokens(req),
			CompletionTokens: len(text) / 4,
		},
		StopReason: "stop",
	}, nil
}

// translateRequest flattens the transcript into a gollm prompt, folding
// system text into the system prompt and tool results into labeled context
// lines.
func (a *GollmAdapter) translateRequest(req Request) *gollm.Prompt {
	var system strings.Builder
	var parts []string

	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			system.WriteString(msg.Content)
			system.WriteString("\n")
		case RoleUser:
			parts = append(parts, msg.Content)
		case RoleAssistant:
			if msg.Content != "" {
				parts = append(parts, "[Assistant]: "+msg.Content)
			}
		case RoleTool:
			label := "[Tool Result " + msg.ToolName + "]"
			parts = append(parts, label+": "+msg.Content)
		}
	}

	promptText := strings.Join(parts, "\n")
	if promptText == "" {
		promptText = "Hello"
	}

	opts := []gollm.PromptOption{}
	if system.Len() > 0 {
		opts = append(opts, gollm.WithSystemPrompt(strings.TrimSpace(system.String()), gollm.CacheTypeEphemeral))
	}
	if len(req.Tools) > 0 {
		tools := make([]gollm.Tool, 0, len(req.Tools))
		for _, t := range req.Tools {
			tools = append(tools, gollm.Tool{
				Type: "function",
				Function: gollm.Function{
					Name:        t.Function.Name,
					Description: t.Function.Description,
					Parameters:  t.Function.Parameters,
				},
			})
		}
		opts = append(opts, gollm.WithTools(tools))
		if req.ToolChoice != "" {
			opts = append(opts, gollm.WithToolChoice(string(req.ToolChoice)))
		}
	}

	return gollm.NewPrompt(promptText, opts...)
}

// parseToolCalls lifts tool calls out of response text for providers that
// emit them as embedded JSON rather than structured fields.
func (a *GollmAdapter) parseToolCalls(text string) []any {
	start := strings.Index(text, `[{"name"`)
	if start == -1 {
		return nil
	}

	var rawCalls []struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(text[start:]), &rawCalls); err != nil {
		return nil
	}

	calls := make([]any, 0, len(rawCalls))
	for _, rc := range rawCalls {
		if rc.Name == "" {
			continue
		}
		calls = append(calls, map[string]any{
			"id":   "call_" + uuid.NewString()[:8],
			"type": "function",
			"function": map[string]any{
				"name":      rc.Name,
				"arguments": string(rc.Arguments),
			},
		})
	}
	if len(calls) == 0 {
		return nil
	}
	return calls
}

func (a *GollmAdapter) stripToolCallJSON(text string) string {
	if idx := strings.Index(text, `[{"name"`); idx != -1 {
		return strings.TrimSpace(text[:idx])
	}
	return text
}

func estimateTokens(req Request) int {
	total := 0
	for _, msg := range req.Messages {
		total += len(msg.Content) / 4
	}
	if total == 0 {
		total = 10
	}
	return total
}
