package prompts

import (
	"fmt"
	"strings"
)

const redTeamGenerateTemplate = `Produce a thorough, well-structured answer to this question. It will be adversarially stress-tested, so be precise and avoid unsupported claims.

Question:
%s`

// RedTeamGenerate builds the initial content-generation prompt.
func RedTeamGenerate(question string) string {
	return fmt.Sprintf(redTeamGenerateTemplate, question)
}

const redTeamAttackTemplate = `You are red-teaming the content below (attack round %d). Find concrete flaws: factual errors, logical gaps, unsupported claims, missing caveats, security or safety problems.

Content:
%s

Report each flaw as a numbered block:

FINDING 1 (CRITICAL|HIGH|MEDIUM|LOW): one-line summary
Explanation of the flaw and why it matters.

FINDING 2 (...): ...

Report only real flaws. If you find none, say "No findings."`

// RedTeamAttack builds an attacker's prompt for one round.
func RedTeamAttack(round int, content string) string {
	return fmt.Sprintf(redTeamAttackTemplate, round, content)
}

const redTeamDefendTemplate = `You wrote the content below. A red team reported findings against it. Address every finding.

Content:
%s

Findings:
%s

For each finding reply with a block:

RESPONSE TO FINDING n:
VERDICT: ACCEPT or REBUT
Your reasoning.
Revised: <the corrected content, only when you ACCEPT>`

// RedTeamDefend builds the defender's prompt over the current content and the
// round's findings. Findings are rendered with their severity tags.
func RedTeamDefend(content string, findings []string) string {
	var b strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&b, "%s\n\n", f)
	}
	return fmt.Sprintf(redTeamDefendTemplate, content, strings.TrimRight(b.String(), "\n"))
}

const redTeamSynthesisTemplate = `You are finalizing red-teamed content.

Original question:
%s

Current content after %d attack/defense round(s):
%s

Audit summary:
%s

Produce the hardened final version: incorporate every accepted fix, keep rebutted points unchanged, and note any residual risks at the end.`

// RedTeamSynthesis builds the closing hardening prompt.
func RedTeamSynthesis(question string, rounds int, content, auditSummary string) string {
	return fmt.Sprintf(redTeamSynthesisTemplate, question, rounds, content, auditSummary)
}
