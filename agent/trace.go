package agent

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// traceOutputLimit caps how much of a tool output the trace keeps. The
// full output still reaches the transcript.
const traceOutputLimit = 2000

// tracer accumulates trace steps for a run. A nil-enabled tracer is a
// no-op, so call sites record unconditionally.
type tracer struct {
	enabled bool
	steps   []TraceStep
}

func (t *tracer) record(step TraceStep) {
	if !t.enabled {
		return
	}
	step.Timestamp = time.Now().UTC()
	t.steps = append(t.steps, step)
}

// sanitizeOutput renders a tool output as a trace-sized string. Structured
// values are JSON-encoded first so truncation applies to a stable form.
func sanitizeOutput(output any) string {
	var s string
	switch v := output.(type) {
	case nil:
		return ""
	case string:
		s = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprintf("%v", v)
		} else {
			s = string(b)
		}
	}
	if len(s) > traceOutputLimit {
		cut := traceOutputLimit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "…(truncated)"
	}
	return s
}
