package parse

import (
	"regexp"
	"strings"
)

var (
	confValueRe     = regexp.MustCompile(`(?i)CONFIDENCE\s*:\s*\**\s*(\d*\.?\d+)\s*(%?)`)
	synthesisHeadRe = regexp.MustCompile(`(?i)SYNTHESIS\s*:`)
	calibHeadRe     = regexp.MustCompile(`(?i)CONFIDENCE\s+CALIBRATION\s+NOTES\s*:`)
)

// Confidence extracts a self-assessed confidence in [0, 1]. Accepted forms:
// 0.82, .82, 82%, 82, 1.0, 0. Values in (1, 100] are treated as
// percentages. ok is false when nothing parsed; the value then defaults
// to 0.5.
func Confidence(text string) (value float64, ok bool) {
	m := confValueRe.FindStringSubmatch(stripBold(text))
	if m == nil {
		return 0.5, false
	}
	v, numOK := firstNumber(m[1])
	if !numOK {
		return 0.5, false
	}
	if m[2] == "%" || v > 1 {
		v /= 100
	}
	return clamp(v, 0, 1), true
}

// Synthesis is the confidence-weighted synthesizer's split output.
type Synthesis struct {
	Body             string `json:"body"`
	CalibrationNotes string `json:"calibration_notes,omitempty"`
}

// ParseSynthesis splits a synthesizer reply into the SYNTHESIS: body and
// the CONFIDENCE CALIBRATION NOTES: section. Fallback: the entire reply is
// the synthesis body.
func ParseSynthesis(text string) Synthesis {
	clean := stripBold(text)

	body := clean
	var notes string
	if loc := calibHeadRe.FindStringIndex(clean); loc != nil {
		body = clean[:loc[0]]
		notes = strings.TrimSpace(clean[loc[1]:])
	}
	if loc := synthesisHeadRe.FindStringIndex(body); loc != nil {
		body = body[loc[1]:]
	}

	return Synthesis{
		Body:             strings.TrimSpace(body),
		CalibrationNotes: notes,
	}
}
