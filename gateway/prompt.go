package gateway

import "strings"

// baseInstruction is appended to every system prompt.
const baseInstruction = `You are an expert full-stack web developer working inside a browser-based site builder.
Respond with complete, working code the user can paste into the editor.
Return a single self-contained HTML document unless the user asks for another file or stack.
Inline CSS and JavaScript, or load libraries from a public CDN.
Use semantic, accessible markup and responsive layout.
Do not wrap the answer in commentary. If an explanation is needed, keep it to a short note after the code.`

// composeSystemPrompt builds the single system message for a request:
// an optional stack hint, then the template fragment, then the base instruction.
func composeSystemPrompt(stack, templatePrompt string) string {
	parts := make([]string, 0, 3)
	if stack = strings.TrimSpace(stack); stack != "" {
		parts = append(parts, "Target stack: "+stack+".")
	}
	if templatePrompt = strings.TrimSpace(templatePrompt); templatePrompt != "" {
		parts = append(parts, templatePrompt)
	}
	parts = append(parts, baseInstruction)
	return strings.Join(parts, "\n\n")
}
