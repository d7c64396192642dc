package prompts

import "fmt"

const rankingTemplate = `You are evaluating anonymized responses to this question:

%s

%s

Rank ALL responses from best to worst. Judge accuracy, completeness, and clarity. End your reply with exactly this format:

FINAL RANKING:
1. Response X
2. Response Y
...`

// Ranking builds the council rating prompt over anonymized responses.
func Ranking(question string, responses []Labeled) string {
	return fmt.Sprintf(rankingTemplate, question, renderLabeled(responses))
}

const councilSynthesisTemplate = `You are the chairman of a model council. The council was asked:

%s

The council members answered:

%s

Peer ranking of the answers (lower is better):
%s

Write the council's final answer. Synthesize the strongest points, resolve disagreements, and answer the original question directly. Do not mention the council process.`

// CouncilSynthesis builds the chairman prompt from member answers and the
// aggregate ranking summary.
func CouncilSynthesis(question string, responses []Labeled, rankingSummary string) string {
	return fmt.Sprintf(councilSynthesisTemplate, question, renderLabeled(responses), rankingSummary)
}
