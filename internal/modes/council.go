package modes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/aggregate"
	"github.com/Dicklesworthstone/quorum/internal/labels"
	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["council"] = runCouncil }

// AggregateRank is one model's mean ranking position across raters, lower
// is better.
type AggregateRank struct {
	Model       string  `json:"model"`
	AverageRank float64 `json:"average_rank"`
	Ratings     int     `json:"ratings"`
}

// runCouncil is the three-phase baseline: collect answers, peer-rank them
// anonymously, then have the chairman synthesize.
func runCouncil(ctx context.Context, r *Run) (string, error) {
	r.Start("")

	r.Emit("collect_start", PhaseCounts{})
	responses := r.Collect(ctx, "collect", r.Models, r.Turns(r.Question))
	r.Emit("collect_complete", PhaseCounts{Succeeded: len(responses), Failed: len(r.Models) - len(responses)})
	if len(responses) == 0 {
		return "", r.Fatal("no council model produced an answer")
	}

	r.Emit("rank_start", PhaseCounts{})
	ranks := rankResponses(ctx, r, responses)
	r.Emit("rank_complete", ranks)

	r.Emit("synthesize_start", PhaseCounts{})
	chairman := r.Config.String("chairmanModel", r.Models[0])
	synthesis := prompts.CouncilSynthesis(r.Question, anonymize(labels.New(modelsOf(responses)), responses), rankSummary(ranks))
	res := r.GW.QueryOneWithMessages(ctx, chairman, r.Turns(synthesis), r.Timeout)
	if res == nil {
		return "", r.Fatal("chairman synthesis failed")
	}
	r.Record("synthesize", chairman, "chairman", res.Content, nil, res.ResponseTimeMS)
	r.Emit("synthesize_complete", map[string]string{"model": chairman})

	return res.Content, nil
}

// rankResponses anonymizes the surviving answers, fans the ranking ballot to
// every council model, and aggregates mean positions.
func rankResponses(ctx context.Context, r *Run, responses []StageResponse) []AggregateRank {
	lm := labels.New(modelsOf(responses))
	prompt := prompts.Ranking(r.Question, anonymize(lm, responses))
	results := r.GW.QueryMany(ctx, r.Models, prompt, r.Timeout)

	// positions[label] accumulates 1-based positions across raters.
	positions := make(map[string][]float64)
	for _, rater := range r.Models {
		res := results[rater]
		if res == nil {
			continue
		}
		ranking := parse.Ranking(res.Content, lm.Has)
		r.Record("rank", rater, "", res.Content, ranking, res.ResponseTimeMS)
		for pos, label := range ranking {
			positions[label] = append(positions[label], float64(pos+1))
		}
	}

	ranks := make([]AggregateRank, 0, lm.Len())
	for _, label := range lm.Labels() {
		got := positions[label]
		if len(got) == 0 {
			continue
		}
		model, _ := lm.Model(label)
		ranks = append(ranks, AggregateRank{
			Model:       model,
			AverageRank: aggregate.Round(aggregate.Mean(got), 2),
			Ratings:     len(got),
		})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].AverageRank != ranks[j].AverageRank {
			return ranks[i].AverageRank < ranks[j].AverageRank
		}
		return ranks[i].Model < ranks[j].Model
	})
	return ranks
}

func modelsOf(responses []StageResponse) []string {
	out := make([]string, len(responses))
	for i, sr := range responses {
		out[i] = sr.Model
	}
	return out
}

// anonymize renders surviving responses under their labels, in label order.
func anonymize(lm *labels.Map, responses []StageResponse) []prompts.Labeled {
	byModel := make(map[string]string, len(responses))
	for _, sr := range responses {
		byModel[sr.Model] = sr.Response
	}
	out := make([]prompts.Labeled, 0, lm.Len())
	for _, label := range lm.Labels() {
		model, _ := lm.Model(label)
		out = append(out, prompts.Labeled{Label: label, Content: byModel[model]})
	}
	return out
}

func rankSummary(ranks []AggregateRank) string {
	if len(ranks) == 0 {
		return "No usable rankings were produced."
	}
	var b strings.Builder
	for i, ar := range ranks {
		fmt.Fprintf(&b, "%d. average position %.2f across %d rater(s)\n", i+1, ar.AverageRank, ar.Ratings)
	}
	return strings.TrimRight(b.String(), "\n")
}
