package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Normalize converts a provider response envelope into one canonical
// assistant Message plus the ordered tool calls it requested.
//
// Resolution order:
//  1. The assistant message is taken from resp.Message, else unwrapped from
//     a choices[0].message envelope in resp.Raw.
//  2. A list-typed "tool_calls" field maps entry-by-entry onto ToolCall,
//     preferring the nested "function" descriptor for name and arguments.
//  3. Failing that, a single legacy "function_call" object yields exactly
//     one ToolCall.
//
// A malformed entry is skipped rather than failing the whole call; partial
// extraction beats aborting the turn.
func Normalize(resp *Response) (Message, []ToolCall) {
	raw := locateMessage(resp)
	if raw == nil {
		return Message{Role: RoleAssistant}, nil
	}

	msg := Message{Role: RoleAssistant}
	if role, ok := raw["role"].(string); ok && role != "" {
		msg.Role = Role(role)
	}
	if content, ok := raw["content"].(string); ok {
		msg.Content = content
	}

	calls := extractToolCalls(raw)
	if len(calls) == 0 {
		calls = extractLegacyFunctionCall(raw)
	}
	msg.ToolCalls = calls
	return msg, calls
}

// locateMessage finds the assistant message map, directly or inside an
// OpenAI-style non-streaming envelope.
func locateMessage(resp *Response) map[string]any {
	if resp == nil {
		return nil
	}
	if resp.Message != nil {
		return resp.Message
	}
	choices, ok := resp.Raw["choices"].([]any)
	if !ok || len(choices) == 0 {
		return nil
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return nil
	}
	msg, _ := choice["message"].(map[string]any)
	return msg
}

func extractToolCalls(msg map[string]any) []ToolCall {
	entries, ok := msg["tool_calls"].([]any)
	if !ok {
		return nil
	}

	var calls []ToolCall
	for _, entry := range entries {
		tc, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		id, _ := tc["id"].(string)
		if id == "" {
			id = uuid.NewString()
		}

		fn, _ := tc["function"].(map[string]any)
		name := stringField(fn, "name")
		argsRaw := anyField(fn, "arguments")
		if name == "" {
			name = stringField(tc, "name")
		}
		if argsRaw == nil && fn == nil {
			argsRaw = tc["arguments"]
		}
		if name == "" {
			continue
		}

		calls = append(calls, ToolCall{ID: id, Name: name, Arguments: ParseArguments(argsRaw)})
	}
	return calls
}

func extractLegacyFunctionCall(msg map[string]any) []ToolCall {
	fc, ok := msg["function_call"].(map[string]any)
	if !ok {
		return nil
	}
	name := stringField(fc, "name")
	if name == "" {
		return nil
	}
	return []ToolCall{{
		ID:        uuid.NewString(),
		Name:      name,
		Arguments: ParseArguments(fc["arguments"]),
	}}
}

// ParseArguments coerces a raw argument payload into a JSON object. A
// structured object passes through; a non-empty string is parsed as JSON,
// falling back to {"_raw": s} when parsing fails; empty or absent input
// yields an empty object.
func ParseArguments(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return map[string]any{}
		}
		var parsed map[string]any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil || parsed == nil {
			return map[string]any{"_raw": s}
		}
		return parsed
	default:
		return map[string]any{"_raw": fmt.Sprint(v)}
	}
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func anyField(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}
