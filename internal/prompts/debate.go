package prompts

import "fmt"

const debateRevisionTemplate = `You answered this question:

%s

Your original answer:
%s

Your peers answered (anonymized):

%s

Reconsider your answer in light of the peer answers. Start your reply with exactly one line:

DECISION: REVISE or STAND or MERGE

Then, unless you STAND, write your revised answer in full.`

// DebateRevision builds a debater's second-round prompt: its own original
// answer plus anonymized peer answers.
func DebateRevision(question, original string, peers []Labeled) string {
	return fmt.Sprintf(debateRevisionTemplate, question, original, renderLabeled(peers))
}
