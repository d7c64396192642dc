package parse

import "regexp"

var (
	finalRankingRe = regexp.MustCompile(`(?i)FINAL\s+RANKING\s*:?`)
	labelTokenRe   = regexp.MustCompile(`(?i)\bResponse\s+([A-Z]{1,2})\b`)
)

// Ranking extracts an ordered list of response labels from a rater's reply.
// Primary: the numbered list following a "FINAL RANKING:" marker. Fallback:
// every "Response X" token in order of appearance. Labels not present in
// valid are dropped; duplicates keep their first position.
func Ranking(text string, valid func(label string) bool) []string {
	section := text
	if loc := finalRankingRe.FindStringIndex(text); loc != nil {
		section = text[loc[1]:]
	}

	var out []string
	seen := make(map[string]bool)
	for _, m := range labelTokenRe.FindAllStringSubmatch(stripBold(section), -1) {
		label := "Response " + normalizeEnum(m[1])
		if seen[label] || (valid != nil && !valid(label)) {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}
