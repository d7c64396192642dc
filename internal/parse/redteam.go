package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// Finding severities, worst first.
var FindingSeverities = []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"}

// Finding is one attack finding.
type Finding struct {
	Number   int    `json:"number"`
	Severity string `json:"severity"`
	Body     string `json:"body"`
}

// Defense verdicts.
const (
	DefenseAccept = "ACCEPT"
	DefenseRebut  = "REBUT"
)

// Defense is the defender's response to one finding.
type Defense struct {
	FindingNumber int    `json:"finding_number"`
	// Verdict defaults to REBUT: an unaddressed finding is never silently
	// accepted.
	Verdict string `json:"verdict"`
	Body    string `json:"body"`
	// Revised is the replacement content an ACCEPT carries, when present.
	Revised string `json:"revised,omitempty"`
}

var (
	findingHeadRe = regexp.MustCompile(`(?im)^\s*FINDING\s+(\d+)\s*(?:\(([A-Za-z]+)\))?\s*:`)
	severityRe    = regexp.MustCompile(`(?i)SEVERITY\s*:\s*\**\s*([A-Za-z]+)`)
	defenseHeadRe = regexp.MustCompile(`(?im)^\s*RESPONSE\s+TO\s+FINDING\s+(\d+)\s*:`)
	defVerdictRe  = regexp.MustCompile(`(?i)VERDICT\s*:\s*\**\s*(ACCEPT|REBUT)\b`)
	revisedRe     = regexp.MustCompile(`(?is)REVISED\s*(?:CONTENT|VERSION|BODY)?\s*:\s*(.+)`)
)

// Findings extracts numbered FINDING blocks from an attack reply. Unknown
// severities coerce to MEDIUM.
func Findings(text string) []Finding {
	clean := stripBold(text)
	heads := findingHeadRe.FindAllStringSubmatchIndex(clean, -1)
	out := make([]Finding, 0, len(heads))

	for i, head := range heads {
		end := len(clean)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		block := clean[head[1]:end]

		num, _ := strconv.Atoi(clean[head[2]:head[3]])
		f := Finding{Number: num, Severity: "MEDIUM", Body: strings.TrimSpace(block)}

		// Inline "(HIGH)" on the header, or a Severity: line in the block.
		if head[4] >= 0 {
			f.Severity = coerceSeverity(clean[head[4]:head[5]], FindingSeverities, "MEDIUM")
		} else if m := severityRe.FindStringSubmatch(block); m != nil {
			f.Severity = coerceSeverity(m[1], FindingSeverities, "MEDIUM")
		}
		out = append(out, f)
	}
	return out
}

// Defenses extracts RESPONSE TO FINDING blocks from a defense reply.
func Defenses(text string) []Defense {
	clean := stripBold(text)
	heads := defenseHeadRe.FindAllStringSubmatchIndex(clean, -1)
	out := make([]Defense, 0, len(heads))

	for i, head := range heads {
		end := len(clean)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		block := clean[head[1]:end]

		num, _ := strconv.Atoi(clean[head[2]:head[3]])
		d := Defense{FindingNumber: num, Verdict: DefenseRebut, Body: strings.TrimSpace(block)}
		if m := defVerdictRe.FindStringSubmatch(block); m != nil {
			d.Verdict = normalizeEnum(m[1])
		}
		if m := revisedRe.FindStringSubmatch(block); m != nil {
			d.Revised = strings.TrimSpace(m[1])
		}
		out = append(out, d)
	}
	return out
}

// SeverityRank orders severities for "highest observed" comparisons; lower
// is worse. Unknown severities rank last.
func SeverityRank(severity string) int {
	for i, s := range FindingSeverities {
		if strings.EqualFold(s, severity) {
			return i
		}
	}
	return len(FindingSeverities)
}

func coerceSeverity(raw string, valid []string, def string) string {
	v := normalizeEnum(raw)
	for _, s := range valid {
		if v == s {
			return s
		}
	}
	return def
}
