package parse

import (
	"regexp"
	"strings"
)

// SpecialistReport is one specialist's parsed assessment.
type SpecialistReport struct {
	// Criteria are the rows of the criterion table, 1-10 scores.
	Criteria []CriterionScore `json:"criteria,omitempty"`
	// Recommendations are the top recommendations, at most three.
	Recommendations []string `json:"recommendations,omitempty"`
	// KeyFindings are dash-items under a key findings heading.
	KeyFindings []string `json:"key_findings,omitempty"`
}

var (
	panelRowRe      = regexp.MustCompile(`^\|([^|]+)\|\s*(\d+(?:\.\d+)?)\s*(?:/\s*10\s*)?\|`)
	recsHeadRe      = regexp.MustCompile(`(?i)(?:TOP\s+)?RECOMMENDATIONS?\s*:?\s*$`)
	findingsHeadRe  = regexp.MustCompile(`(?i)KEY\s+FINDINGS?\s*:?\s*$`)
	numberedItemRe  = regexp.MustCompile(`^\d+[.)]\s*(.+)$`)
)

// Specialist parses a role-templated specialist report: criterion table
// rows, a numbered top-3 recommendation list, and key-finding dash items.
func Specialist(text string) SpecialistReport {
	var r SpecialistReport

	const (
		sectionNone = iota
		sectionRecs
		sectionFindings
	)
	section := sectionNone

	for _, line := range lines(text) {
		if recsHeadRe.MatchString(line) {
			section = sectionRecs
			continue
		}
		if findingsHeadRe.MatchString(line) {
			section = sectionFindings
			continue
		}

		if m := panelRowRe.FindStringSubmatch(line); m != nil {
			criterion := strings.TrimSpace(m[1])
			if criterion == "" || strings.EqualFold(criterion, "criterion") || strings.HasPrefix(criterion, "-") {
				continue
			}
			if score, ok := firstNumber(m[2]); ok && score >= 1 && score <= 10 {
				r.Criteria = append(r.Criteria, CriterionScore{Criterion: criterion, Score: score})
			}
			continue
		}

		switch section {
		case sectionRecs:
			if m := numberedItemRe.FindStringSubmatch(line); m != nil && len(r.Recommendations) < 3 {
				r.Recommendations = append(r.Recommendations, strings.TrimSpace(m[1]))
			}
		case sectionFindings:
			if strings.HasPrefix(line, "-") {
				if item := strings.TrimSpace(strings.TrimPrefix(line, "-")); item != "" {
					r.KeyFindings = append(r.KeyFindings, item)
				}
			}
		}
	}
	return r
}
