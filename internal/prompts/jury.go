package prompts

import (
	"fmt"
	"strings"
)

const jurorTemplate = `You are a juror evaluating this response to the question below.

Question:
%s

Response under deliberation:
%s

Score the response on each dimension from 1 to 10 using a markdown table:

| Dimension | Score |
|-----------|-------|
| Accuracy | N |
| Completeness | N |
| Clarity | N |
| Relevance | N |
| Actionability | N |

Then give your reasoning, and end with exactly one line:

VERDICT: APPROVE or REVISE or REJECT`

// JurorDeliberation builds one juror's scoring prompt.
func JurorDeliberation(question, content string) string {
	return fmt.Sprintf(jurorTemplate, question, content)
}

const foremanTemplate = `You are the jury foreman. The jury deliberated on this response:

Question:
%s

Response:
%s

Juror deliberations:
%s

Computed tally:
%s

Majority verdict: %s

Write the jury's final statement: summarize the jurors' agreement and disagreement, state the verdict, and list the concrete changes required if the verdict is REVISE or REJECT. End with exactly one line:

VERDICT: APPROVE or REVISE or REJECT`

// ForemanSynthesis builds the foreman prompt from raw juror texts plus the
// computed tally and majority verdict.
func ForemanSynthesis(question, content string, deliberations []string, tallySummary, majority string) string {
	var b strings.Builder
	for i, d := range deliberations {
		fmt.Fprintf(&b, "--- Juror %d ---\n%s\n\n", i+1, d)
	}
	return fmt.Sprintf(foremanTemplate, question, content, strings.TrimRight(b.String(), "\n"), tallySummary, majority)
}
