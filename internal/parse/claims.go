package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// Claim types.
var ClaimTypes = []string{"STATISTIC", "DATE", "ATTRIBUTION", "TECHNICAL", "COMPARISON", "CAUSAL"}

// Claim is one extracted verifiable claim.
type Claim struct {
	Number  int    `json:"number"`
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
	Type    string `json:"type"`
}

// Verification is one checker's verdict on one claim.
type Verification struct {
	ClaimNumber int    `json:"claim_number"`
	Verdict     string `json:"verdict"`
	Evidence    string `json:"evidence,omitempty"`
	Correction  string `json:"correction,omitempty"`
	Confidence  string `json:"confidence"`
}

var (
	claimHeadRe   = regexp.MustCompile(`(?im)^\s*CLAIM\s+(\d+)\s*:\s*(.*)$`)
	verifHeadRe   = regexp.MustCompile(`(?im)^\s*VERIFICATION\s+claim_(\d+)\s*:\s*(.*)$`)
	claimVerdictRe = regexp.MustCompile(`(?i)\b(VERIFIED|DISPUTED|UNVERIFIABLE)\b`)
	reliabilityRe = regexp.MustCompile(`(?i)Reliability\s+Score\s*:\s*\**\s*(\d+(?:\.\d+)?)`)
)

// Claims extracts CLAIM blocks and deduplicates by exact claim text.
func Claims(text string) []Claim {
	clean := stripBold(text)
	heads := claimHeadRe.FindAllStringSubmatchIndex(clean, -1)
	var out []Claim
	seen := make(map[string]bool)

	for i, head := range heads {
		end := len(clean)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		block := clean[head[1]:end]

		c := Claim{Type: "TECHNICAL", Text: strings.TrimSpace(clean[head[4]:head[5]])}
		c.Number, _ = strconv.Atoi(clean[head[2]:head[3]])
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if v, ok := fieldValue(line, "Context"); ok {
				c.Context = v
			} else if v, ok := fieldValue(line, "Type"); ok {
				c.Type = coerceSeverity(v, ClaimTypes, "TECHNICAL")
			}
		}
		if c.Text == "" || seen[c.Text] {
			continue
		}
		seen[c.Text] = true
		out = append(out, c)
	}
	return out
}

// Verifications extracts a checker's per-claim VERIFICATION blocks.
// Verdicts default to UNVERIFIABLE and confidences to MEDIUM. A correction
// of "N/A" is dropped.
func Verifications(text string) []Verification {
	clean := stripBold(text)
	heads := verifHeadRe.FindAllStringSubmatchIndex(clean, -1)
	out := make([]Verification, 0, len(heads))

	for i, head := range heads {
		end := len(clean)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		block := clean[head[1]:end]
		headRest := clean[head[4]:head[5]]

		v := Verification{Verdict: "UNVERIFIABLE", Confidence: ConfidenceMedium}
		v.ClaimNumber, _ = strconv.Atoi(clean[head[2]:head[3]])
		if m := claimVerdictRe.FindStringSubmatch(headRest); m != nil {
			v.Verdict = normalizeEnum(m[1])
		} else if m := claimVerdictRe.FindStringSubmatch(block); m != nil {
			v.Verdict = normalizeEnum(m[1])
		}
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if val, ok := fieldValue(line, "Evidence"); ok {
				v.Evidence = val
			} else if val, ok := fieldValue(line, "Correction"); ok {
				if !strings.EqualFold(val, "N/A") {
					v.Correction = val
				}
			} else if val, ok := fieldValue(line, "Confidence"); ok {
				v.Confidence = coerceSeverity(val, []string{ConfidenceLow, ConfidenceMedium, ConfidenceHigh}, ConfidenceMedium)
			}
		}
		out = append(out, v)
	}
	return out
}

// ReliabilityScore extracts the reporter's 0-100 reliability score, clamped.
// ok is false when the line is missing.
func ReliabilityScore(text string) (float64, bool) {
	m := reliabilityRe.FindStringSubmatch(stripBold(text))
	if m == nil {
		return 0, false
	}
	v, ok := firstNumber(m[1])
	if !ok {
		return 0, false
	}
	return clamp(v, 0, 100), true
}
