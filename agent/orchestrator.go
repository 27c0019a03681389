package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/promptlane/agentd/llm"
	"github.com/promptlane/agentd/tools"
)

// User-facing terminal messages. The stop reason carries the technical
// detail; these are what the caller shows.
const (
	llmFailureMessage  = "Sorry, I ran into a problem while generating a response. Please try again."
	toolFailureMessage = "Sorry, something went wrong while running a tool. Please try again."
	limitMessage       = "I had to stop before finishing because the tool call limit was reached."
	stepLimitMessage   = "I had to stop because the step limit was reached. Please try rephrasing your question."
	emptyAnswer        = "I don't have an answer yet."
)

// RunRequest is the caller-facing input for one run.
type RunRequest struct {
	Question       string
	History        []llm.Message
	ConversationID string
	// Debug toggles trace collection. Nil defers to the policy default; an
	// explicit false disables tracing even when the default enables it.
	Debug       *bool
	Context     *tools.Context
	Tone        string
	Style       string
	Temperature *float64
}

// Orchestrator drives runs against one LLM and one tool registry. It is
// read-only after construction and safe to share across concurrent runs;
// all per-run state lives on the stack of Run.
type Orchestrator struct {
	llm      llm.Chatter
	registry *tools.Registry
	policies Policies
	logger   *slog.Logger
}

// New builds an Orchestrator. Policies are clamped here so the loop can
// rely on sane bounds.
func New(chatter llm.Chatter, registry *tools.Registry, policies Policies, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		llm:      chatter,
		registry: registry,
		policies: policies.Clamp(),
		logger:   logger,
	}
}

// Run executes the loop to a terminal state. It never returns an error:
// every failure mode is encoded in the result's stop reason.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) *Result {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	tc := req.Context
	if tc == nil {
		tc = &tools.Context{}
	}
	if tc.ConversationID == "" {
		tc.ConversationID = conversationID
	}
	if tc.Logger == nil {
		tc.Logger = o.logger
	}

	trace := &tracer{enabled: o.policies.DebugTraceDefault}
	if req.Debug != nil {
		trace.enabled = *req.Debug
	}

	transcript := o.buildTranscript(req)
	specs := o.registry.Specs(tc)

	var (
		usage     llm.Usage
		toolCalls []llm.ToolCall
		executed  int
	)

	finish := func(message string, stop StopReason) *Result {
		trace.record(TraceStep{
			Step:   len(trace.steps),
			Kind:   "stop",
			Output: map[string]any{"stop": string(stop.Kind), "detail": stop.Detail},
		})
		o.logger.Info("agent_run_finished",
			"conversation_id", conversationID,
			"stop_reason", string(stop.Kind),
			"tool_calls", executed,
			"total_tokens", usage.TotalTokens,
		)
		return &Result{
			ConversationID: conversationID,
			Message:        message,
			Stop:           stop,
			Trace:          trace.steps,
			ToolCalls:      toolCalls,
			Usage:          usage,
		}
	}

	for step := 0; step < o.policies.MaxSteps; step++ {
		request := llm.Request{
			Messages:    transcript,
			Temperature: req.Temperature,
		}
		if len(specs) > 0 {
			request.Tools = specs
			request.ToolChoice = o.policies.ToolChoice
		}

		llmStart := time.Now()
		resp, err := o.llm.Chat(ctx, request)
		llmLatency := msSince(llmStart)
		if err != nil {
			trace.record(TraceStep{
				Step:      step,
				Kind:      "error",
				Output:    map[string]any{"error": err.Error()},
				LatencyMS: llmLatency,
			})
			return finish(llmFailureMessage, StopReason{Kind: StopLLMError, Detail: err.Error()})
		}

		usage.Merge(resp.Usage)

		message, calls := llm.Normalize(resp)
		trace.record(TraceStep{
			Step:      step,
			Kind:      "llm",
			Input:     map[string]any{"messages": len(transcript), "tools": len(specs)},
			Output:    map[string]any{"content": sanitizeOutput(message.Content), "tool_calls": len(calls)},
			TokensIn:  promptTokens(resp.Usage),
			TokensOut: completionTokens(resp.Usage),
			LatencyMS: llmLatency,
		})

		if len(calls) == 0 {
			answer := message.Content
			if answer == "" {
				answer = emptyAnswer
			}
			return finish(answer, StopReason{Kind: StopCompleted})
		}

		// The assistant message that issued the calls must precede every
		// tool-result message in the transcript.
		transcript = append(transcript, message)

		for _, call := range calls {
			if executed >= o.policies.MaxToolCalls {
				detail := fmt.Sprintf("tool call limit of %d reached", o.policies.MaxToolCalls)
				return finish(limitMessage, StopReason{Kind: StopMaxToolCalls, Detail: detail})
			}
			executed++
			toolCalls = append(toolCalls, call)

			toolStart := time.Now()
			output, callErr := o.registry.Call(ctx, call.Name, call.Arguments, tc)
			result := ToolResult{
				ToolCallID: call.ID,
				Name:       call.Name,
				Output:     output,
				LatencyMS:  msSince(toolStart),
			}
			if callErr != nil {
				result.Error = callErr.Error()
			}

			traced := result
			traced.Output = sanitizeOutput(result.Output)
			trace.record(TraceStep{
				Step:       step,
				Kind:       "tool",
				ToolCall:   &call,
				ToolResult: &traced,
				LatencyMS:  result.LatencyMS,
			})

			transcript = append(transcript, toolResultMessage(result))

			if callErr != nil {
				stop := StopReason{Kind: stopKindFor(callErr), Detail: callErr.Error()}
				if o.policies.ContinueOnToolError && stop.Kind == StopToolError {
					continue
				}
				return finish(toolFailureMessage, stop)
			}
		}
	}

	detail := fmt.Sprintf("step limit of %d reached", o.policies.MaxSteps)
	return finish(stepLimitMessage, StopReason{Kind: StopMaxSteps, Detail: detail})
}

// buildTranscript assembles the initial message list: system prompt,
// optional tone/style directive, prior history, then the new question.
func (o *Orchestrator) buildTranscript(req RunRequest) []llm.Message {
	messages := make([]llm.Message, 0, len(req.History)+3)
	messages = append(messages, llm.SystemMessage(systemPrompt))
	if directive := toneStyleDirective(req.Tone, req.Style); directive != "" {
		messages = append(messages, llm.SystemMessage(directive))
	}
	messages = append(messages, req.History...)
	messages = append(messages, llm.UserMessage(req.Question))
	return messages
}

// toolResultMessage renders an executed tool call for the transcript. The
// full output goes back to the LLM; only the trace copy is truncated.
func toolResultMessage(result ToolResult) llm.Message {
	var content string
	switch {
	case result.Error != "":
		content = fmt.Sprintf(`{"error": %q}`, result.Error)
	case result.Output == nil:
		content = "null"
	default:
		if s, ok := result.Output.(string); ok {
			content = s
		} else if b, err := json.Marshal(result.Output); err == nil {
			content = string(b)
		} else {
			content = fmt.Sprintf("%v", result.Output)
		}
	}
	return llm.Message{
		Role:       llm.RoleTool,
		Content:    content,
		ToolCallID: result.ToolCallID,
		ToolName:   result.Name,
		Name:       result.Name,
	}
}

// stopKindFor maps a registry failure to its stop reason. Unknown tools
// count as tool errors rather than a separate outcome.
func stopKindFor(err error) StopKind {
	var terr *tools.Error
	if errors.As(err, &terr) && terr.Kind == tools.KindNotAllowed {
		return StopBlockedTool
	}
	return StopToolError
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

func promptTokens(u *llm.Usage) int {
	if u == nil {
		return 0
	}
	return u.PromptTokens
}

func completionTokens(u *llm.Usage) int {
	if u == nil {
		return 0
	}
	return u.CompletionTokens
}
