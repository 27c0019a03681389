// Package llm defines the provider-agnostic contract between the agent
// orchestrator and concrete LLM backends, along with the normalization
// rules that map inconsistent provider response shapes onto a canonical
// message plus tool-call list.
package llm

import "context"

// Role identifies who produced a message in a transcript.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in the running transcript. Ordering is significant:
// an assistant message carrying tool calls must immediately precede the
// matching tool-result messages, which must precede the next assistant
// message.
type Message struct {
	Role       Role           `json:"role"`
	Content    string         `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolName   string         `json:"tool_name,omitempty"`
	ToolCalls  []ToolCall     `json:"tool_calls,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SystemMessage creates a system Message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage creates a user Message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage creates an assistant Message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// ToolCall is a model-initiated tool invocation. ID correlates the call to
// its result message across the transcript.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// FunctionDef is the function descriptor inside a ToolDef.
type FunctionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolDef is an OpenAI-style tool descriptor sent with a chat request.
type ToolDef struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

// ToolChoice controls whether the model may, must not, or must call tools.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceNone     ToolChoice = "none"
	ToolChoiceRequired ToolChoice = "required"
)

// Usage tracks token consumption for one response or a whole run.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Merge adds other's counters into u. A response that omits its total has
// one derived as prompt plus completion before adding.
func (u *Usage) Merge(other *Usage) {
	if other == nil {
		return
	}
	total := other.TotalTokens
	if total == 0 {
		total = other.PromptTokens + other.CompletionTokens
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += total
}

// Request is the input to a Chatter call.
type Request struct {
	Messages    []Message  `json:"messages"`
	Tools       []ToolDef  `json:"tools,omitempty"`
	ToolChoice  ToolChoice `json:"tool_choice,omitempty"`
	Temperature *float64   `json:"temperature,omitempty"`
}

// Response is the envelope a Chatter returns. Message holds the raw
// provider-shaped assistant message when the adapter can isolate one; Raw
// holds the full provider payload for envelopes the normalizer has to
// unwrap itself (the choices[0].message shape among them).
type Response struct {
	Message    map[string]any `json:"message,omitempty"`
	Raw        map[string]any `json:"raw,omitempty"`
	Usage      *Usage         `json:"usage,omitempty"`
	StopReason string         `json:"stop_reason,omitempty"`
}

// Chatter is the injected LLM adapter. Implementations must tolerate calls
// without tools and must not retry internally; the orchestrator surfaces
// adapter errors as-is.
type Chatter interface {
	Chat(ctx context.Context, req Request) (*Response, error)
}
