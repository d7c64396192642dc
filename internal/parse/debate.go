package parse

import (
	"regexp"
	"strings"
)

// Revision decisions.
const (
	DecisionRevise = "REVISE"
	DecisionStand  = "STAND"
	DecisionMerge  = "MERGE"
)

// Revision is a debater's parsed second-round reply.
type Revision struct {
	Decision string `json:"decision"`
	// Body is the revised response text. For STAND, callers substitute the
	// original; the body here is whatever followed the decision line.
	Body string `json:"body"`
	// ParseSuccess is false when no DECISION line was found; the caller
	// carries the original response forward.
	ParseSuccess bool `json:"parse_success"`
}

var decisionRe = regexp.MustCompile(`(?i)DECISION\s*:\s*\**\s*(REVISE|STAND|MERGE)\b`)

// ParseRevision extracts the DECISION line and the revised body that
// follows it. Missing decision yields ParseSuccess=false and an empty
// decision; the body falls back to the full text.
func ParseRevision(text string) Revision {
	clean := stripBold(text)
	loc := decisionRe.FindStringSubmatchIndex(clean)
	if loc == nil {
		return Revision{Body: strings.TrimSpace(text)}
	}

	decision := normalizeEnum(clean[loc[2]:loc[3]])
	body := strings.TrimSpace(clean[loc[1]:])
	// Drop a leftover separator line under the decision.
	body = strings.TrimLeft(body, ":-– \t\n")

	return Revision{
		Decision:     decision,
		Body:         strings.TrimSpace(body),
		ParseSuccess: true,
	}
}
