package agent

import "fmt"

// systemPrompt is the base directive for every run. Tools are described to
// the model separately through the function-calling interface.
const systemPrompt = `You are a careful assistant for answering user questions.

Guidelines:
- Prefer the available tools when a question needs information you do not have.
- When you answer from retrieved documents, cite the source labels you were given.
- If you cannot answer, say so plainly instead of guessing.
- Keep answers short and direct.`

// toneStyleDirective renders the optional per-run tone/style message.
// Either part may be empty; both empty yields "".
func toneStyleDirective(tone, style string) string {
	switch {
	case tone != "" && style != "":
		return fmt.Sprintf("Respond in a %s tone, using a %s style.", tone, style)
	case tone != "":
		return fmt.Sprintf("Respond in a %s tone.", tone)
	case style != "":
		return fmt.Sprintf("Respond using a %s style.", style)
	default:
		return ""
	}
}
