package parse

import "regexp"

var (
	votePrimaryRe   = regexp.MustCompile(`(?i)VOTE\s*:\s*\**\s*Response\s+([A-Z]{1,2})\b`)
	winnerPrimaryRe = regexp.MustCompile(`(?i)WINNER\s*:\s*\**\s*Response\s+([AB])\b`)
	abTokenRe       = regexp.MustCompile(`(?i)\bResponse\s+([AB])\b`)
)

// Vote extracts the voted label from a ballot reply. Primary: the last
// "VOTE: Response X" line. Fallback: the last "Response X" token anywhere.
// Returns "" when neither appears.
func Vote(text string) string {
	clean := stripBold(text)
	if ms := votePrimaryRe.FindAllStringSubmatch(clean, -1); len(ms) > 0 {
		return "Response " + normalizeEnum(ms[len(ms)-1][1])
	}
	if ms := labelTokenRe.FindAllStringSubmatch(clean, -1); len(ms) > 0 {
		return "Response " + normalizeEnum(ms[len(ms)-1][1])
	}
	return ""
}

// MatchupWinner extracts the winning side of a two-response matchup.
// Primary: the last "WINNER: Response A|B". Fallback: the last
// "Response A|B" token. ok is false when neither appears.
func MatchupWinner(text string) (label string, ok bool) {
	clean := stripBold(text)
	if ms := winnerPrimaryRe.FindAllStringSubmatch(clean, -1); len(ms) > 0 {
		return "Response " + normalizeEnum(ms[len(ms)-1][1]), true
	}
	if ms := abTokenRe.FindAllStringSubmatch(clean, -1); len(ms) > 0 {
		return "Response " + normalizeEnum(ms[len(ms)-1][1]), true
	}
	return "", false
}
