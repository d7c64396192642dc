// Package prompts builds model prompts from typed inputs. Every function is
// pure: same inputs, same string. Runners own control flow; nothing here
// calls the gateway or inspects responses.
package prompts

import (
	"fmt"
	"strings"
)

// Labeled pairs an anonymized label with response content.
type Labeled struct {
	Label   string
	Content string
}

// renderLabeled formats anonymized responses as repeated "=== Label ===" blocks.
func renderLabeled(rs []Labeled) string {
	var b strings.Builder
	for _, r := range rs {
		fmt.Fprintf(&b, "=== %s ===\n%s\n\n", r.Label, r.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// bullets renders items as a dash list.
func bullets(items []string) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "- %s\n", it)
	}
	return strings.TrimRight(b.String(), "\n")
}

const titleTemplate = `Generate a 3-5 word title for a conversation that starts with this question. Reply with the title only, no quotes, no punctuation at the end.

Question: %s`

// Title builds the post-run title-generation prompt.
func Title(question string) string {
	return fmt.Sprintf(titleTemplate, question)
}
