package prompts

import (
	"fmt"
	"strings"
)

const confidenceAnswerTemplate = `Answer this question, then honestly assess how confident you are in your answer.

Question:
%s

End your reply with exactly one line:

CONFIDENCE: <0.0 to 1.0>`

// ConfidenceAnswer builds the answer-with-self-assessment prompt.
func ConfidenceAnswer(question string) string {
	return fmt.Sprintf(confidenceAnswerTemplate, question)
}

// WeightedAnswer is one model's answer with its computed softmax weight.
type WeightedAnswer struct {
	Label      string
	Content    string
	Confidence float64
	Weight     float64
	Outlier    bool
}

const confidenceSynthesisTemplate = `You are synthesizing answers whose authors self-assessed their confidence. Weights were computed server-side; treat outlier confidences skeptically.

Question:
%s

Answers, highest weight first:

%s

Reply in this format:

SYNTHESIS:
<the combined answer, leaning on the higher-weighted answers>

CONFIDENCE CALIBRATION NOTES:
<where the self-assessments looked miscalibrated>`

// ConfidenceSynthesis builds the synthesizer prompt over weight-sorted
// answers with outlier tags.
func ConfidenceSynthesis(question string, answers []WeightedAnswer) string {
	var b strings.Builder
	for _, a := range answers {
		tag := ""
		if a.Outlier {
			tag = " [OUTLIER]"
		}
		fmt.Fprintf(&b, "=== %s (confidence %.2f, weight %.0f%%)%s ===\n%s\n\n",
			a.Label, a.Confidence, a.Weight*100, tag, a.Content)
	}
	return fmt.Sprintf(confidenceSynthesisTemplate, question, strings.TrimRight(b.String(), "\n"))
}
