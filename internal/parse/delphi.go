package parse

import (
	"regexp"
	"strings"
)

// Delphi question kinds.
const (
	KindNumeric     = "numeric"
	KindQualitative = "qualitative"
)

// Confidence levels attached to panelist answers.
const (
	ConfidenceLow    = "LOW"
	ConfidenceMedium = "MEDIUM"
	ConfidenceHigh   = "HIGH"
)

// Classification is the facilitator's read of the question.
type Classification struct {
	Kind string `json:"kind"`
	// Options are the enumerated choices for qualitative questions, when
	// the facilitator listed any.
	Options []string `json:"options,omitempty"`
}

var (
	classifyTypeRe = regexp.MustCompile(`(?i)TYPE\s*:\s*\**\s*(NUMERIC|QUALITATIVE)\b`)
	estimateRe     = regexp.MustCompile(`(?i)ESTIMATE\s*:\s*\**\s*(.+)`)
	answerRe       = regexp.MustCompile(`(?i)ANSWER\s*:\s*\**\s*(.+)`)
	confLevelRe    = regexp.MustCompile(`(?i)CONFIDENCE\s*:\s*\**\s*(LOW|MEDIUM|HIGH)\b`)
)

// Classify parses the facilitator's classification reply. Default on parse
// failure is qualitative with no options.
func Classify(text string) Classification {
	c := Classification{Kind: KindQualitative}
	clean := stripBold(text)
	if m := classifyTypeRe.FindStringSubmatch(clean); m != nil {
		c.Kind = strings.ToLower(normalizeEnum(m[1]))
	}
	for _, line := range lines(text) {
		if v, ok := fieldValue(line, "Options"); ok {
			c.Options = splitCSV(v)
		}
	}
	return c
}

// Estimate extracts a panelist's numeric estimate. Primary: the ESTIMATE:
// line. Fallback: the first signed or decimal number anywhere. ok is false
// when no number exists; the panelist is excluded that round.
func Estimate(text string) (float64, bool) {
	clean := stripBold(text)
	if m := estimateRe.FindStringSubmatch(clean); m != nil {
		if v, ok := firstNumber(m[1]); ok {
			return v, true
		}
	}
	return firstNumber(clean)
}

// Answer extracts a panelist's qualitative answer from the ANSWER: line.
// ok is false when the line is missing; the panelist is excluded that round.
func Answer(text string) (string, bool) {
	clean := stripBold(text)
	if m := answerRe.FindStringSubmatch(clean); m != nil {
		a := strings.TrimSpace(m[1])
		if a != "" {
			return a, true
		}
	}
	return "", false
}

// ConfidenceLevel extracts the CONFIDENCE: LOW|MEDIUM|HIGH line, defaulting
// to MEDIUM.
func ConfidenceLevel(text string) string {
	if m := confLevelRe.FindStringSubmatch(stripBold(text)); m != nil {
		return normalizeEnum(m[1])
	}
	return ConfidenceMedium
}
