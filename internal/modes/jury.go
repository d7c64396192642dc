package modes

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/aggregate"
	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["jury"] = runJury }

// DimensionStats is the per-dimension aggregate over juror scorecards.
type DimensionStats struct {
	Dimension string  `json:"dimension"`
	Average   float64 `json:"average"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Scored    int     `json:"scored"`
}

// JuryTally is the computed aggregate the foreman sees.
type JuryTally struct {
	Dimensions      []DimensionStats `json:"dimensions"`
	VerdictCounts   map[string]int   `json:"verdict_counts"`
	MajorityVerdict string           `json:"majority_verdict"`
}

// runJury presents content, deliberates in parallel, and has the foreman
// deliver the verdict.
func runJury(ctx context.Context, r *Run) (string, error) {
	r.Start("")

	// Present: the content under deliberation is either supplied or produced
	// by the first model answering the question.
	r.Emit("present_start", PhaseCounts{})
	content := r.Config.String("content", "")
	if content == "" {
		defendant := r.Models[0]
		res := r.GW.QueryOne(ctx, defendant, r.Question, r.Timeout)
		if res == nil {
			return "", r.Fatal("no content to deliberate on")
		}
		content = res.Content
		r.Record("present", defendant, "defendant", content, nil, res.ResponseTimeMS)
	} else {
		r.Record("present", "", "", content, nil, 0)
	}
	r.Emit("present_complete", PhaseCounts{Succeeded: 1})

	r.Emit("deliberation_start", PhaseCounts{})
	prompt := prompts.JurorDeliberation(r.Question, content)
	results := r.GW.QueryMany(ctx, r.Models, prompt, r.Timeout)

	var cards []parse.JurorCard
	var texts []string
	for _, juror := range r.Models {
		res := results[juror]
		if res == nil {
			continue
		}
		card := parse.Juror(res.Content)
		r.Record("deliberation", juror, "juror", res.Content, card, res.ResponseTimeMS)
		cards = append(cards, card)
		texts = append(texts, res.Content)
	}
	r.Emit("deliberation_complete", PhaseCounts{Succeeded: len(cards), Failed: len(r.Models) - len(cards)})
	if len(cards) < 2 {
		return "", r.Fatal("fewer than 2 jurors deliberated")
	}

	tally := tallyJury(cards)
	r.Emit("tally", tally)

	r.Emit("verdict_start", PhaseCounts{})
	foreman := r.Config.String("foremanModel", r.Models[0])
	res := r.GW.QueryOne(ctx, foreman,
		prompts.ForemanSynthesis(r.Question, content, texts, tallySummary(tally), tally.MajorityVerdict), r.Timeout)
	if res == nil {
		return "", r.Fatal("foreman synthesis failed")
	}
	finalVerdict := parse.Juror(res.Content).Verdict
	if finalVerdict == "" {
		finalVerdict = tally.MajorityVerdict
	}
	r.Record("verdict", foreman, "foreman", res.Content, map[string]string{"verdict": finalVerdict}, res.ResponseTimeMS)
	r.Emit("verdict_complete", map[string]string{"verdict": finalVerdict})

	return res.Content, nil
}

func tallyJury(cards []parse.JurorCard) JuryTally {
	t := JuryTally{VerdictCounts: make(map[string]int)}
	for _, dim := range parse.JuryDimensions {
		var scores []float64
		for _, c := range cards {
			if s := c.Scores[dim]; s != nil {
				scores = append(scores, *s)
			}
		}
		if len(scores) == 0 {
			continue
		}
		sum := aggregate.Summarize(scores)
		t.Dimensions = append(t.Dimensions, DimensionStats{
			Dimension: dim,
			Average:   aggregate.Round(sum.Mean, 1),
			Min:       sum.Min,
			Max:       sum.Max,
			Scored:    len(scores),
		})
	}

	var verdicts []string
	for _, c := range cards {
		if c.Verdict != "" {
			t.VerdictCounts[c.Verdict]++
			verdicts = append(verdicts, c.Verdict)
		}
	}
	t.MajorityVerdict = aggregate.MajorityVerdict(verdicts)
	return t
}

func tallySummary(t JuryTally) string {
	var b strings.Builder
	for _, d := range t.Dimensions {
		fmt.Fprintf(&b, "%s: average %.1f (range %.0f-%.0f, %d juror(s))\n", d.Dimension, d.Average, d.Min, d.Max, d.Scored)
	}
	fmt.Fprintf(&b, "Verdicts: %d APPROVE, %d REVISE, %d REJECT",
		t.VerdictCounts[aggregate.VerdictApprove],
		t.VerdictCounts[aggregate.VerdictRevise],
		t.VerdictCounts[aggregate.VerdictReject])
	return b.String()
}
