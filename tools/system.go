package tools

import (
	"context"
	"time"
)

// RegisterSystem adds the small diagnostic tools every deployment carries.
func RegisterSystem(r *Registry) error {
	if err := r.Register(Spec{
		Name:        "health",
		Description: "Report whether the agent runtime is up.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, healthTool); err != nil {
		return err
	}

	if err := r.Register(Spec{
		Name:        "time_now",
		Description: "Return the current UTC time in RFC 3339 format.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, timeNowTool); err != nil {
		return err
	}

	return r.Register(Spec{
		Name:        "debug_echo",
		Description: "Echo the provided arguments back. Used to verify tool plumbing end to end.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"payload": map[string]any{
					"description": "Arbitrary value to echo back.",
				},
			},
		},
	}, debugEchoTool)
}

func healthTool(ctx context.Context, args map[string]any, tc *Context) (any, error) {
	return map[string]any{"status": "ok"}, nil
}

func timeNowTool(ctx context.Context, args map[string]any, tc *Context) (any, error) {
	return map[string]any{"utc": time.Now().UTC().Format(time.RFC3339)}, nil
}

func debugEchoTool(ctx context.Context, args map[string]any, tc *Context) (any, error) {
	return map[string]any{"echo": args}, nil
}
