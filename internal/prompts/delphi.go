package prompts

import "fmt"

const delphiClassifyTemplate = `Classify this question for a Delphi panel:

%s

Reply in this format:

TYPE: NUMERIC or QUALITATIVE
Options: comma, separated, choices (only for qualitative questions with enumerable answers; omit otherwise)`

// DelphiClassify builds the facilitator's question-classification prompt.
func DelphiClassify(question string) string {
	return fmt.Sprintf(delphiClassifyTemplate, question)
}

const delphiNumericRound1Template = `You are a panelist in an anonymous Delphi estimation round.

Question:
%s

Give your independent estimate. Reply in this format:

ESTIMATE: <number>
CONFIDENCE: LOW or MEDIUM or HIGH

Then briefly explain your reasoning.`

const delphiQualitativeRound1Template = `You are a panelist in an anonymous Delphi round.

Question:
%s
%s
Give your independent answer. Reply in this format:

ANSWER: <your answer>
CONFIDENCE: LOW or MEDIUM or HIGH

Then briefly explain your reasoning.`

// DelphiRound1 builds the identical first-round prompt for all panelists.
func DelphiRound1(question string, numeric bool, options []string) string {
	if numeric {
		return fmt.Sprintf(delphiNumericRound1Template, question)
	}
	var opts string
	if len(options) > 0 {
		opts = "\nChoose one of: " + bullets(options) + "\n"
	}
	return fmt.Sprintf(delphiQualitativeRound1Template, question, opts)
}

const delphiFeedbackTemplate = `Delphi round %d.

Question:
%s

Your previous answer:
%s

Aggregate statistics of the whole panel's previous round (individual answers are never shown):
%s

Reconsider. You may keep or change your answer. Reply in the same format as before:

%s
CONFIDENCE: LOW or MEDIUM or HIGH`

// DelphiFeedback builds a panelist's round-N prompt: its own prior answer
// plus the panel's aggregate statistics, never peer answers.
func DelphiFeedback(round int, question, ownPrevious, statsSummary string, numeric bool) string {
	format := "ANSWER: <your answer>"
	if numeric {
		format = "ESTIMATE: <number>"
	}
	return fmt.Sprintf(delphiFeedbackTemplate, round, question, ownPrevious, statsSummary, format)
}

const delphiSynthesisTemplate = `You are the Delphi facilitator. The panel deliberated on:

%s

Final round statistics:
%s

Consensus value: %s
Converged: %t after %d round(s)

Write the panel's final report: the consensus answer, the spread of opinion, and how positions moved across rounds.`

// DelphiSynthesis builds the facilitator's closing report prompt.
func DelphiSynthesis(question, statsSummary, finalValue string, converged bool, rounds int) string {
	return fmt.Sprintf(delphiSynthesisTemplate, question, statsSummary, finalValue, converged, rounds)
}
