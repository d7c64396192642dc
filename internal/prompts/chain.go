package prompts

import "fmt"

const chainDraftTemplate = `Write the first draft for this request. A chain of later specialists will refine your draft, so aim for completeness over polish.

Request:
%s

Your mandate: %s`

const chainStepTemplate = `You are one step in a refinement chain for this request:

%s

Your mandate: %s

The previous step produced:
%s
%s
Apply your mandate to the text above and output the full improved version, not a commentary.`

// ChainStep builds the prompt for one chain step. The first step (previous
// output empty) gets the draft framing. deferred lists mandates of skipped
// failed steps for the next successful step to absorb.
func ChainStep(question, mandate, previous string, deferred []string) string {
	if previous == "" {
		return fmt.Sprintf(chainDraftTemplate, question, mandate)
	}
	var note string
	if len(deferred) > 0 {
		note = "\nEarlier steps failed, so also cover their deferred mandates:\n" + bullets(deferred) + "\n"
	}
	return fmt.Sprintf(chainStepTemplate, question, mandate, previous, note)
}
