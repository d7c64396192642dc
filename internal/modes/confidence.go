package modes

import (
	"context"
	"sort"

	"github.com/Dicklesworthstone/quorum/internal/aggregate"
	"github.com/Dicklesworthstone/quorum/internal/labels"
	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["confidence"] = runConfidence }

// ConfidentAnswer is one model's answer with its self-assessment and
// computed weight.
type ConfidentAnswer struct {
	Model              string  `json:"model"`
	Response           string  `json:"response"`
	Confidence         float64 `json:"confidence"`
	ParsedSuccessfully bool    `json:"parsed_successfully"`
	Weight             float64 `json:"weight"`
	Outlier            bool    `json:"outlier"`
	ResponseTimeMS     int64   `json:"response_time_ms"`
}

// runConfidence collects self-assessed answers, softmax-weights them
// server-side, and synthesizes with outlier tags.
func runConfidence(ctx context.Context, r *Run) (string, error) {
	r.Start("")
	temperature := r.Config.Float("temperature", DefaultSoftmaxTemperature)

	r.Emit("answers_start", PhaseCounts{})
	responses := r.Collect(ctx, "answers", r.Models, r.Turns(prompts.ConfidenceAnswer(r.Question)))
	r.Emit("answers_complete", PhaseCounts{Succeeded: len(responses), Failed: len(r.Models) - len(responses)})
	if len(responses) == 0 {
		return "", r.Fatal("no model answered")
	}

	answers := make([]ConfidentAnswer, len(responses))
	for i, sr := range responses {
		conf, ok := parse.Confidence(sr.Response)
		answers[i] = ConfidentAnswer{
			Model:              sr.Model,
			Response:           sr.Response,
			Confidence:         conf,
			ParsedSuccessfully: ok,
			ResponseTimeMS:     sr.ResponseTimeMS,
		}
	}

	// Single survivor: no softmax, no synthesis, the answer stands alone.
	if len(answers) == 1 {
		answers[0].Weight = 1
		r.Emit("weights", answers)
		r.Record("synthesis", "", "", answers[0].Response, parse.Synthesis{
			Body:             answers[0].Response,
			CalibrationNotes: "Only one model answered; no cross-model calibration possible.",
		}, 0)
		r.Emit("synthesis_complete", map[string]any{"single": true})
		return answers[0].Response, nil
	}

	r.Emit("weights_start", PhaseCounts{})
	confidences := make([]float64, len(answers))
	for i, a := range answers {
		confidences[i] = a.Confidence
	}
	weights := aggregate.Softmax(confidences, temperature)
	for i := range answers {
		answers[i].Weight = weights[i].Weight
		answers[i].Outlier = weights[i].Outlier
	}
	sort.SliceStable(answers, func(i, j int) bool { return answers[i].Weight > answers[j].Weight })
	r.Emit("weights", answers)

	r.Emit("synthesis_start", PhaseCounts{})
	weighted := make([]prompts.WeightedAnswer, len(answers))
	for i, a := range answers {
		weighted[i] = prompts.WeightedAnswer{
			Label:      labels.Label(i),
			Content:    a.Response,
			Confidence: a.Confidence,
			Weight:     a.Weight,
			Outlier:    a.Outlier,
		}
	}
	synthesizer := r.Config.String("synthesizerModel", r.Models[0])
	res := r.GW.QueryOneWithMessages(ctx, synthesizer,
		r.Turns(prompts.ConfidenceSynthesis(r.Question, weighted)), r.Timeout)
	if res == nil {
		return "", r.Fatal("confidence-weighted synthesis failed")
	}
	synthesis := parse.ParseSynthesis(res.Content)
	r.Record("synthesis", synthesizer, "synthesizer", res.Content, synthesis, res.ResponseTimeMS)
	r.Emit("synthesis_complete", map[string]any{"calibration_notes": synthesis.CalibrationNotes != ""})

	return synthesis.Body, nil
}
