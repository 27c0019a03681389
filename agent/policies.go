// Package agent implements the bounded orchestration loop: it drives an
// LLM through reasoning and tool-invocation steps, enforces policy limits,
// dispatches tool calls through a registry, and returns a final answer
// with aggregated usage and an optional execution trace.
package agent

import "github.com/promptlane/agentd/llm"

// Policies bounds a single run. Build once, Clamp before use, never
// mutate mid-run.
type Policies struct {
	// MaxSteps caps the number of LLM invocations per run.
	MaxSteps int
	// MaxToolCalls caps tool executions across the whole run. Zero means
	// no tool may execute.
	MaxToolCalls int
	// ToolChoice is the function-calling mode passed to the LLM.
	ToolChoice llm.ToolChoice
	// Allowlist restricts which registered tools are visible and callable.
	// Nil defers to the runtime settings, then allow-all.
	Allowlist []string
	// DebugTraceDefault enables trace collection for runs that do not say.
	DebugTraceDefault bool
	// ContinueOnToolError keeps the run going after a failed tool call by
	// feeding the error back to the LLM instead of aborting the run.
	ContinueOnToolError bool
}

// DefaultPolicies returns the stock limits.
func DefaultPolicies() Policies {
	return Policies{
		MaxSteps:     6,
		MaxToolCalls: 10,
		ToolChoice:   llm.ToolChoiceAuto,
	}
}

// Clamp returns a copy with out-of-range numeric bounds corrected.
// Misconfiguration is silently repaired rather than rejected so a bad
// config value degrades the run instead of failing it.
func (p Policies) Clamp() Policies {
	out := p
	if out.MaxSteps < 1 {
		out.MaxSteps = 1
	}
	if out.MaxToolCalls < 0 {
		out.MaxToolCalls = 0
	}
	if out.ToolChoice == "" {
		out.ToolChoice = llm.ToolChoiceAuto
	}
	return out
}
