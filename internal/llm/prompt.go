package llm

import (
	"strings"

	"github.com/Prishashn/Hrextractor/constants"
)

const maxPromptTextBytes = 6000

// BuildSystemPrompt composes the system message constraining the backend to
// the supplied text and the six schema fields.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a profile page parser. Return ONLY JSON that matches the provided JSON Schema.",
		"Use ONLY the provided text. Never infer facts that are not stated in it. Do NOT guess.",
		"Emit exactly these fields: " + strings.Join(constants.ProfileFieldKeys, ", ") + ".",
		"If a field is not present in the text, set it to the literal string \"" + constants.Sentinel + "\".",
		"Do not add any prose, markdown, or keys outside the schema.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the merged OCR text, truncated to keep the
// request within a predictable budget.
func BuildUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("TEXT:\n")
	text = strings.TrimSpace(text)
	if len(text) > maxPromptTextBytes {
		b.WriteString(text[:maxPromptTextBytes])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
