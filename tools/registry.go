// Package tools implements the capability-scoped tool registry the agent
// loop dispatches through: registration with duplicate protection, spec
// export for the LLM's function-calling interface, allowlist enforcement,
// and a closed error taxonomy the loop can match exhaustively.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/promptlane/agentd/llm"
)

// Handler executes one tool call. Any error (or panic) it produces is
// wrapped as a KindExecution failure; it never reaches the loop raw.
type Handler func(ctx context.Context, args map[string]any, tc *Context) (any, error)

// Spec describes a tool for function calling. Immutable once registered.
type Spec struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema object
}

// ErrorKind is the closed set of registry failure kinds.
type ErrorKind string

const (
	KindDuplicate  ErrorKind = "duplicate_tool"
	KindNotFound   ErrorKind = "tool_not_found"
	KindNotAllowed ErrorKind = "tool_not_allowed"
	KindExecution  ErrorKind = "tool_execution_error"
)

// Error is the registry's only error type; callers branch on Kind.
type Error struct {
	Kind ErrorKind
	Tool string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindDuplicate:
		return fmt.Sprintf("tool %q already registered", e.Tool)
	case KindNotFound:
		return fmt.Sprintf("unknown tool %q", e.Tool)
	case KindNotAllowed:
		return fmt.Sprintf("tool %q is not allowed", e.Tool)
	default:
		return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

type registration struct {
	spec    Spec
	handler Handler
}

// Registry maps tool names to handlers. Read-only once populated, so one
// Registry may be shared across concurrent runs.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]registration
	allowlist []string // explicit allowlist; nil defers to context settings
}

// Option configures a Registry.
type Option func(*Registry)

// WithAllowlist fixes the permitted tool names at construction time,
// overriding any allowlist carried by the runtime settings.
func WithAllowlist(names []string) Option {
	return func(r *Registry) {
		r.allowlist = append([]string(nil), names...)
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{tools: make(map[string]registration)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a tool, failing with KindDuplicate if the name is taken.
func (r *Registry) Register(spec Spec, fn Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[spec.Name]; exists {
		return &Error{Kind: KindDuplicate, Tool: spec.Name}
	}
	r.tools[spec.Name] = registration{spec: spec, handler: fn}
	return nil
}

// Replace adds or overwrites a tool unconditionally.
func (r *Registry) Replace(spec Spec, fn Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[spec.Name] = registration{spec: spec, handler: fn}
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specs exports the permitted tools as function descriptors, name-sorted.
// The ordering must be deterministic: it is part of what the LLM sees.
func (r *Registry) Specs(tc *Context) []llm.ToolDef {
	allowed := r.allowset(tc)

	defs := make([]llm.ToolDef, 0, len(r.tools))
	for _, name := range r.Names() {
		if allowed != nil && !allowed[name] {
			continue
		}
		r.mu.RLock()
		reg := r.tools[name]
		r.mu.RUnlock()
		defs = append(defs, llm.ToolDef{
			Type: "function",
			Function: llm.FunctionDef{
				Name:        reg.spec.Name,
				Description: reg.spec.Description,
				Parameters:  reg.spec.Parameters,
			},
		})
	}
	return defs
}

// Call dispatches a tool synchronously. On success the raw handler output
// is returned unchanged; on failure the error is always a *Error. Every
// call emits one structured log line; logging can neither fail the call
// nor abort it.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any, tc *Context) (out any, err error) {
	start := time.Now()
	defer func() {
		logCall(tc, name, time.Since(start), err)
	}()

	r.mu.RLock()
	reg, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &Error{Kind: KindNotFound, Tool: name}
	}

	if allowed := r.allowset(tc); allowed != nil && !allowed[name] {
		return nil, &Error{Kind: KindNotAllowed, Tool: name}
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = &Error{Kind: KindExecution, Tool: name, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	out, err = reg.handler(ctx, args, tc)
	if err != nil {
		return nil, &Error{Kind: KindExecution, Tool: name, Err: err}
	}
	return out, nil
}

// logCall writes the per-call log line. Failures inside observability must
// never propagate into dispatch.
func logCall(tc *Context, name string, elapsed time.Duration, callErr error) {
	defer func() { _ = recover() }()
	if tc == nil || tc.Logger == nil {
		return
	}
	attrs := []any{
		"tool_name", name,
		"latency_ms", float64(elapsed.Microseconds()) / 1000.0,
		"conversation_id", tc.ConversationID,
		"request_id", tc.RequestID,
	}
	if callErr != nil {
		attrs = append(attrs, "error", callErr.Error())
	}
	tc.Logger.Info("tool_call", attrs...)
}

// allowset resolves the active allowlist: the explicit list wins, then an
// allowlist carried by the context settings, then allow-all (nil).
func (r *Registry) allowset(tc *Context) map[string]bool {
	list := r.allowlist
	if list == nil && tc != nil {
		list = allowlistFromSettings(tc.Settings)
	}

	normalized := make([]string, 0, len(list))
	for _, entry := range list {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if entry == "*" || entry == "ALL" {
			return nil
		}
		normalized = append(normalized, entry)
	}
	if list == nil || len(normalized) == 0 {
		return nil
	}

	set := make(map[string]bool, len(normalized))
	for _, name := range normalized {
		set[name] = true
	}
	return set
}

// Allowlister lets a settings object expose its tool allowlist directly.
type Allowlister interface {
	ToolsAllowlist() []string
}

// allowlistFromSettings reads a tool allowlist from a settings object,
// accepting the Allowlister interface, a map entry, a comma-separated
// string, or a string slice.
func allowlistFromSettings(settings any) []string {
	switch s := settings.(type) {
	case nil:
		return nil
	case Allowlister:
		return s.ToolsAllowlist()
	case map[string]any:
		return coerceAllowlist(s["tools_allowlist"])
	default:
		return nil
	}
}

func coerceAllowlist(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	default:
		return nil
	}
}
