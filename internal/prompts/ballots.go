package prompts

import "fmt"

const voteBallotTemplate = `Several anonymous responses were given to this question:

%s

%s

Pick the single best response. Explain briefly, then end your reply with exactly one line in this format:

VOTE: Response X`

// VoteBallot builds the blind-vote ballot over anonymized responses.
func VoteBallot(question string, responses []Labeled) string {
	return fmt.Sprintf(voteBallotTemplate, question, renderLabeled(responses))
}

const tiebreakTemplate = `A vote between responses to this question ended in a tie:

%s

The tied responses:

%s

Break the tie. End your reply with exactly one line:

VOTE: Response X`

// TiebreakBallot builds the chairman tie-break ballot over only the tied
// responses.
func TiebreakBallot(question string, tied []Labeled) string {
	return fmt.Sprintf(tiebreakTemplate, question, renderLabeled(tied))
}

const matchupTemplate = `Judge this head-to-head matchup of two anonymous responses to the question:

%s

%s

Decide which response answers the question better. End your reply with exactly one line:

WINNER: Response A
or
WINNER: Response B`

// Matchup builds the tournament judge prompt for one pairing. Responses must
// carry the labels "Response A" and "Response B".
func Matchup(question string, a, b Labeled) string {
	return fmt.Sprintf(matchupTemplate, question, renderLabeled([]Labeled{a, b}))
}

const matchupStrictTemplate = `%s

Your previous reply did not follow the required format. Reply with ONLY one line, nothing else:

WINNER: Response A
or
WINNER: Response B`

// MatchupStrict builds the retry prompt after a judge format failure.
func MatchupStrict(question string, a, b Labeled) string {
	return fmt.Sprintf(matchupStrictTemplate, Matchup(question, a, b))
}
