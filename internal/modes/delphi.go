package modes

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/aggregate"
	"github.com/Dicklesworthstone/quorum/internal/gateway"
	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["delphi"] = runDelphi }

// PanelAnswer is one panelist's answer in one Delphi round.
type PanelAnswer struct {
	Model      string  `json:"model"`
	Estimate   float64 `json:"estimate,omitempty"`
	Answer     string  `json:"answer,omitempty"`
	Confidence string  `json:"confidence"`
	Changed    bool    `json:"changed"`
}

// RoundStats is the aggregate a Delphi round feeds back to the panel.
type RoundStats struct {
	Round            int                   `json:"round"`
	Numeric          *aggregate.Summary    `json:"numeric,omitempty"`
	Qualitative      *aggregate.Distribution `json:"qualitative,omitempty"`
	ConfidenceCounts map[string]int        `json:"confidence_counts"`
	Answered         int                   `json:"answered"`
	Converged        bool                  `json:"converged"`
}

// runDelphi runs the anonymous multi-round estimation protocol: classify,
// iterate rounds with aggregate-only feedback, then synthesize.
func runDelphi(ctx context.Context, r *Run) (string, error) {
	r.Start("")
	facilitator := r.Config.String("facilitatorModel", r.Models[0])
	maxRounds := r.Config.Int("maxRounds", DefaultDelphiMaxRounds)
	numThreshold := r.Config.Float("numericThreshold", DefaultDelphiNumericThreshold)
	qualThreshold := r.Config.Float("qualitativeThreshold", DefaultDelphiQualitativeThreshold)

	r.Emit("classify_start", PhaseCounts{})
	classification := parse.Classification{Kind: parse.KindQualitative}
	if res := r.GW.QueryOne(ctx, facilitator, prompts.DelphiClassify(r.Question), r.Timeout); res != nil {
		classification = parse.Classify(res.Content)
		r.Record("classify", facilitator, "facilitator", res.Content, classification, res.ResponseTimeMS)
	}
	numeric := classification.Kind == parse.KindNumeric
	r.Emit("classify_complete", classification)

	answers := make(map[string]PanelAnswer)
	var lastStats RoundStats
	rounds := 0

	for round := 1; round <= maxRounds; round++ {
		rounds = round
		r.Emit("round_start", map[string]int{"round": round})

		var results map[string]PanelAnswer
		if round == 1 {
			prompt := prompts.DelphiRound1(r.Question, numeric, classification.Options)
			results = delphiQueryAll(ctx, r, round, prompt, numeric)
		} else {
			results = delphiQueryFeedback(ctx, r, round, answers, lastStats, numeric)
		}

		for model, pa := range results {
			prev, had := answers[model]
			pa.Changed = !had || prev.Estimate != pa.Estimate || prev.Answer != pa.Answer
			answers[model] = pa
		}
		// Panelists that failed this round keep their previous answer.
		if round > 1 {
			for model, pa := range answers {
				if _, ok := results[model]; !ok {
					pa.Changed = false
					answers[model] = pa
				}
			}
		}

		if round == 1 && len(answers) < 3 {
			return "", r.Fatal("fewer than 3 panelists answered the first round")
		}

		lastStats = delphiStats(round, answers, numeric)
		if numeric {
			lastStats.Converged = lastStats.Numeric != nil && lastStats.Numeric.CV < numThreshold
		} else {
			lastStats.Converged = lastStats.Qualitative != nil && lastStats.Qualitative.Agreement >= qualThreshold
		}
		r.Record("round_stats", "", "", statsSummary(lastStats, numeric), lastStats, 0)
		r.Emit("round_complete", lastStats)
		if lastStats.Converged {
			break
		}
	}

	finalValue := delphiFinalValue(lastStats, numeric)
	r.Emit("synthesis_start", PhaseCounts{})
	res := r.GW.QueryOne(ctx, facilitator,
		prompts.DelphiSynthesis(r.Question, statsSummary(lastStats, numeric), finalValue, lastStats.Converged, rounds), r.Timeout)
	if res == nil {
		return "", r.Fatal("facilitator synthesis failed")
	}
	r.Record("synthesis", facilitator, "facilitator", res.Content, map[string]any{
		"final_value": finalValue,
		"converged":   lastStats.Converged,
		"rounds":      rounds,
	}, res.ResponseTimeMS)
	r.Emit("synthesis_complete", map[string]any{"final_value": finalValue, "converged": lastStats.Converged})

	return res.Content, nil
}

// delphiQueryAll sends the identical round-1 prompt to every panelist.
func delphiQueryAll(ctx context.Context, r *Run, round int, prompt string, numeric bool) map[string]PanelAnswer {
	results := r.GW.QueryMany(ctx, r.Models, prompt, r.Timeout)
	return parsePanel(r, round, r.Models, results, numeric)
}

// delphiQueryFeedback sends each panelist its own prior answer plus the
// aggregate statistics. Individual peer answers are never included.
func delphiQueryFeedback(ctx context.Context, r *Run, round int, answers map[string]PanelAnswer, stats RoundStats, numeric bool) map[string]PanelAnswer {
	var calls []ModelCall
	var models []string
	for _, model := range r.Models {
		prev, ok := answers[model]
		if !ok {
			continue
		}
		own := prev.Answer
		if numeric {
			own = strconv.FormatFloat(prev.Estimate, 'f', -1, 64)
		}
		models = append(models, model)
		calls = append(calls, ModelCall{
			Key:    model,
			Model:  model,
			Prompt: prompts.DelphiFeedback(round, r.Question, own, statsSummary(stats, numeric), numeric),
		})
	}
	return parsePanel(r, round, models, r.FanOut(ctx, calls), numeric)
}

func parsePanel(r *Run, round int, models []string, results map[string]*gateway.Result, numeric bool) map[string]PanelAnswer {
	out := make(map[string]PanelAnswer)
	stage := fmt.Sprintf("round_%d", round)
	for _, model := range models {
		res := results[model]
		if res == nil {
			continue
		}
		pa := PanelAnswer{Model: model, Confidence: parse.ConfidenceLevel(res.Content)}
		if numeric {
			v, ok := parse.Estimate(res.Content)
			if !ok {
				// Excluded this round.
				r.Record(stage, model, "panelist", res.Content, nil, res.ResponseTimeMS)
				continue
			}
			pa.Estimate = v
		} else {
			a, ok := parse.Answer(res.Content)
			if !ok {
				r.Record(stage, model, "panelist", res.Content, nil, res.ResponseTimeMS)
				continue
			}
			pa.Answer = a
		}
		r.Record(stage, model, "panelist", res.Content, pa, res.ResponseTimeMS)
		out[model] = pa
	}
	return out
}

func delphiStats(round int, answers map[string]PanelAnswer, numeric bool) RoundStats {
	stats := RoundStats{Round: round, ConfidenceCounts: make(map[string]int), Answered: len(answers)}
	if numeric {
		var values []float64
		for _, pa := range answers {
			values = append(values, pa.Estimate)
			stats.ConfidenceCounts[pa.Confidence]++
		}
		s := aggregate.Summarize(values)
		stats.Numeric = &s
	} else {
		var values []string
		for _, pa := range answers {
			values = append(values, pa.Answer)
			stats.ConfidenceCounts[pa.Confidence]++
		}
		d := aggregate.Distribute(values)
		stats.Qualitative = &d
	}
	return stats
}

func delphiFinalValue(stats RoundStats, numeric bool) string {
	if numeric && stats.Numeric != nil {
		return strconv.FormatFloat(stats.Numeric.Median, 'f', -1, 64)
	}
	if stats.Qualitative != nil {
		return stats.Qualitative.Mode
	}
	return ""
}

func statsSummary(stats RoundStats, numeric bool) string {
	var b strings.Builder
	if numeric && stats.Numeric != nil {
		s := stats.Numeric
		fmt.Fprintf(&b, "mean %.2f, median %.2f, stddev %.2f, min %.2f, max %.2f, CV %.2f, %d panelist(s)",
			s.Mean, s.Median, s.StdDev, s.Min, s.Max, s.CV, stats.Answered)
	} else if stats.Qualitative != nil {
		d := stats.Qualitative
		fmt.Fprintf(&b, "most common answer %q with %.0f%% agreement over %d panelist(s); distribution:",
			d.Mode, d.Agreement, stats.Answered)
		for answer, count := range d.Counts {
			fmt.Fprintf(&b, " %q=%d", answer, count)
		}
	}
	if len(stats.ConfidenceCounts) > 0 {
		fmt.Fprintf(&b, "; confidence %d HIGH / %d MEDIUM / %d LOW",
			stats.ConfidenceCounts[parse.ConfidenceHigh],
			stats.ConfidenceCounts[parse.ConfidenceMedium],
			stats.ConfidenceCounts[parse.ConfidenceLow])
	}
	return b.String()
}
