package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// Review finding severities.
var ReviewSeverities = []string{"CRITICAL", "MAJOR", "MINOR", "SUGGESTION"}

// CriterionScore is one row of a reviewer's scoring table.
type CriterionScore struct {
	Criterion     string  `json:"criterion"`
	Score         float64 `json:"score"`
	Weight        float64 `json:"weight"`
	Justification string  `json:"justification,omitempty"`
}

// ReviewFinding is one numbered reviewer finding.
type ReviewFinding struct {
	Number   int    `json:"number"`
	Severity string `json:"severity"`
	Body     string `json:"body"`
}

// Review is a reviewer's parsed report.
type Review struct {
	Scores   []CriterionScore `json:"scores"`
	Findings []ReviewFinding  `json:"findings"`
	// Overall is the weighted mean over scored criteria, 0 when none.
	Overall float64 `json:"overall"`
}

var (
	// | Criterion | 8 | 0.3 | justification |
	reviewRowRe     = regexp.MustCompile(`^\|([^|]+)\|\s*(\d+(?:\.\d+)?)\s*(?:/\s*10\s*)?\|\s*(\d+(?:\.\d+)?%?)\s*\|([^|]*)\|?`)
	reviewFindingRe = regexp.MustCompile(`(?im)^\s*FINDING\s+(\d+)\s*(?:\(([A-Za-z]+)\))?\s*:`)
)

// ParseReview extracts the markdown scoring table and FINDING blocks from a
// reviewer reply. Scores outside 1-10 are dropped; weights given as
// percentages are scaled to fractions.
func ParseReview(text string) Review {
	clean := stripBold(text)
	var r Review

	for _, line := range strings.Split(clean, "\n") {
		line = strings.TrimSpace(line)
		m := reviewRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		criterion := strings.TrimSpace(m[1])
		if criterion == "" || strings.EqualFold(criterion, "criterion") || strings.HasPrefix(criterion, "-") {
			continue // header or separator row
		}
		score, ok := firstNumber(m[2])
		if !ok || score < 1 || score > 10 {
			continue
		}
		weight := parseWeight(m[3])
		r.Scores = append(r.Scores, CriterionScore{
			Criterion:     criterion,
			Score:         score,
			Weight:        weight,
			Justification: strings.TrimSpace(m[4]),
		})
	}

	heads := reviewFindingRe.FindAllStringSubmatchIndex(clean, -1)
	for i, head := range heads {
		end := len(clean)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		block := clean[head[1]:end]

		num, _ := strconv.Atoi(clean[head[2]:head[3]])
		f := ReviewFinding{Number: num, Severity: "MINOR", Body: strings.TrimSpace(block)}
		if head[4] >= 0 {
			f.Severity = coerceSeverity(clean[head[4]:head[5]], ReviewSeverities, "MINOR")
		} else if m := severityRe.FindStringSubmatch(block); m != nil {
			f.Severity = coerceSeverity(m[1], ReviewSeverities, "MINOR")
		}
		r.Findings = append(r.Findings, f)
	}

	var weighted, totalWeight float64
	for _, s := range r.Scores {
		w := s.Weight
		if w == 0 {
			w = 1
		}
		weighted += s.Score * w
		totalWeight += w
	}
	if totalWeight > 0 {
		r.Overall = roundTo(weighted/totalWeight, 1)
	}
	return r
}

func parseWeight(raw string) float64 {
	raw = strings.TrimSpace(raw)
	pct := strings.HasSuffix(raw, "%")
	v, ok := firstNumber(raw)
	if !ok {
		return 0
	}
	if pct || v > 1 {
		v /= 100
	}
	return clamp(v, 0, 1)
}
