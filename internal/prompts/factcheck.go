package prompts

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/parse"
)

const factGenerateTemplate = `Answer this question with concrete, specific claims (the answer will be independently fact-checked):

%s`

// FactCheckGenerate builds the optional content-generation prompt.
func FactCheckGenerate(question string) string {
	return fmt.Sprintf(factGenerateTemplate, question)
}

const extractTemplate = `Extract the verifiable factual claims from the content below. At most %d claims; skip opinions and predictions.

Content:
%s

Reply in exactly this format:

CLAIM 1: <the claim, verbatim or tightly paraphrased>
Context: <where in the content it appears>
Type: STATISTIC or DATE or ATTRIBUTION or TECHNICAL or COMPARISON or CAUSAL

CLAIM 2: ...`

// FactCheckExtract builds the claim-extraction prompt.
func FactCheckExtract(content string, maxClaims int) string {
	return fmt.Sprintf(extractTemplate, maxClaims, content)
}

const verifyTemplate = `Verify each claim below independently.

Claims:

%s

For every claim reply with a block:

VERIFICATION claim_n: VERIFIED or DISPUTED or UNVERIFIABLE
Evidence: <what supports your verdict>
Correction: <the corrected claim, or N/A>
Confidence: HIGH or MEDIUM or LOW`

// FactCheckVerify builds one checker's verification prompt.
func FactCheckVerify(claims []parse.Claim) string {
	var b strings.Builder
	for _, c := range claims {
		fmt.Fprintf(&b, "claim_%d: %s", c.Number, c.Text)
		if c.Context != "" {
			fmt.Fprintf(&b, " (context: %s)", c.Context)
		}
		fmt.Fprintf(&b, " [%s]\n", c.Type)
	}
	return fmt.Sprintf(verifyTemplate, strings.TrimRight(b.String(), "\n"))
}

const reportTemplate = `Write a fact-check report for the content below.

Content:
%s

Per-claim consensus of %d independent checkers:

%s

Write the report: overall assessment, a per-claim breakdown with corrections where disputed, and end with exactly one line:

Reliability Score: <0-100>`

// FactCheckReport builds the reporter prompt over the per-claim consensus
// summary.
func FactCheckReport(content string, checkers int, consensusSummary string) string {
	return fmt.Sprintf(reportTemplate, content, checkers, consensusSummary)
}
