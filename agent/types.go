package agent

import (
	"time"

	"github.com/promptlane/agentd/llm"
)

// StopKind is the closed set of terminal outcomes for a run.
type StopKind string

const (
	StopCompleted    StopKind = "completed"
	StopLLMError     StopKind = "llm_error"
	StopToolError    StopKind = "tool_error"
	StopBlockedTool  StopKind = "blocked_tool"
	StopMaxToolCalls StopKind = "max_tool_calls"
	StopMaxSteps     StopKind = "max_steps"
)

// StopReason records why the run ended.
type StopReason struct {
	Kind   StopKind `json:"kind"`
	Detail string   `json:"detail,omitempty"`
}

// ToolResult is the recorded outcome of one tool execution. Exactly one of
// Output and Error is meaningful.
type ToolResult struct {
	ToolCallID string  `json:"tool_call_id"`
	Name       string  `json:"name"`
	Output     any     `json:"output,omitempty"`
	Error      string  `json:"error,omitempty"`
	LatencyMS  float64 `json:"latency_ms"`
}

// TraceStep is one entry in the optional execution trace: an LLM call, a
// tool call, or the terminal stop event.
type TraceStep struct {
	Step       int            `json:"step"`
	Kind       string         `json:"kind"` // llm | tool | error | stop
	Input      map[string]any `json:"input,omitempty"`
	Output     map[string]any `json:"output,omitempty"`
	ToolCall   *llm.ToolCall  `json:"tool_call,omitempty"`
	ToolResult *ToolResult    `json:"tool_result,omitempty"`
	TokensIn   int            `json:"tokens_in,omitempty"`
	TokensOut  int            `json:"tokens_out,omitempty"`
	LatencyMS  float64        `json:"latency_ms"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Result is the terminal output of a run. The loop always returns one; it
// never raises past its own boundary.
type Result struct {
	ConversationID string         `json:"conversation_id"`
	Message        string         `json:"message"`
	Stop           StopReason     `json:"stop_reason"`
	Trace          []TraceStep    `json:"trace,omitempty"`
	ToolCalls      []llm.ToolCall `json:"tool_calls,omitempty"`
	Usage          llm.Usage      `json:"usage"`
}
