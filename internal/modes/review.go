package modes

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/aggregate"
	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["review"] = runReview }

// CriterionConsensus is the cross-reviewer agreement on one criterion.
type CriterionConsensus struct {
	Criterion string  `json:"criterion"`
	Average   float64 `json:"average"`
	StdDev    float64 `json:"std_dev"`
	Agreement string  `json:"agreement"` // High, Medium, Low
	Reviewers int     `json:"reviewers"`
}

// runReview fans rubric-parameterized reviewers out in parallel and
// consolidates their reports.
func runReview(ctx context.Context, r *Run) (string, error) {
	r.Start("")
	rubric := resolveRubric(r.Config)
	content := r.Config.String("content", r.Question)

	r.Emit("reviewers_start", PhaseCounts{})
	prompt := prompts.Reviewer(rubric, content)
	results := r.GW.QueryMany(ctx, r.Models, prompt, r.Timeout)

	var reviews []parse.Review
	var labeled []prompts.Labeled
	for i, reviewer := range r.Models {
		res := results[reviewer]
		if res == nil {
			continue
		}
		review := parse.ParseReview(res.Content)
		r.Record("review", reviewer, "reviewer", res.Content, review, res.ResponseTimeMS)
		reviews = append(reviews, review)
		labeled = append(labeled, prompts.Labeled{Label: fmt.Sprintf("Reviewer %d", i+1), Content: res.Content})
	}
	r.Emit("reviewers_complete", PhaseCounts{Succeeded: len(reviews), Failed: len(r.Models) - len(reviews)})
	if len(reviews) < 2 {
		return "", r.Fatal("fewer than 2 reviewers reported")
	}

	consensus := criterionConsensus(rubric, reviews)
	r.Emit("consensus", consensus)

	r.Emit("consolidation_start", PhaseCounts{})
	consolidator := r.Config.String("consolidatorModel", r.Models[0])
	res := r.GW.QueryOne(ctx, consolidator,
		prompts.ReviewConsolidation(content, labeled, consensusSummary(consensus)), r.Timeout)
	if res == nil {
		return "", r.Fatal("review consolidation failed")
	}
	r.Record("consolidation", consolidator, "consolidator", res.Content, consensus, res.ResponseTimeMS)
	r.Emit("consolidation_complete", map[string]string{"model": consolidator})

	return res.Content, nil
}

// resolveRubric picks the predefined family from reviewType or builds a
// custom rubric from customRubric entries.
func resolveRubric(cfg Config) prompts.Rubric {
	if custom, ok := cfg["customRubric"].([]any); ok && len(custom) > 0 {
		rubric := prompts.Rubric{Name: "Custom Review"}
		for _, entry := range custom {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			c := Config(m)
			name := c.String("name", "")
			if name == "" {
				continue
			}
			rubric.Criteria = append(rubric.Criteria, prompts.RubricCriterion{
				Name:        name,
				Weight:      c.Float("weight", 0),
				Description: c.String("description", ""),
			})
		}
		if len(rubric.Criteria) > 0 {
			return rubric
		}
	}
	if rubric, ok := prompts.RubricLibrary[cfg.String("reviewType", "general")]; ok {
		return rubric
	}
	return prompts.RubricLibrary["general"]
}

// criterionConsensus aggregates per-criterion scores: average, population
// stddev, and the agreement band (<0.5 High, ≤1.5 Medium, >1.5 Low).
func criterionConsensus(rubric prompts.Rubric, reviews []parse.Review) []CriterionConsensus {
	var out []CriterionConsensus
	for _, criterion := range rubric.Criteria {
		var scores []float64
		for _, review := range reviews {
			for _, s := range review.Scores {
				if strings.EqualFold(s.Criterion, criterion.Name) {
					scores = append(scores, s.Score)
					break
				}
			}
		}
		if len(scores) == 0 {
			continue
		}
		sum := aggregate.Summarize(scores)
		agreement := "Low"
		switch {
		case sum.StdDev < 0.5:
			agreement = "High"
		case sum.StdDev <= 1.5:
			agreement = "Medium"
		}
		out = append(out, CriterionConsensus{
			Criterion: criterion.Name,
			Average:   aggregate.Round(sum.Mean, 1),
			StdDev:    aggregate.Round(sum.StdDev, 2),
			Agreement: agreement,
			Reviewers: len(scores),
		})
	}
	return out
}

func consensusSummary(consensus []CriterionConsensus) string {
	if len(consensus) == 0 {
		return "Reviewers produced no comparable criterion scores."
	}
	var b strings.Builder
	for _, c := range consensus {
		fmt.Fprintf(&b, "%s: average %.1f, stddev %.2f, %s agreement (%d reviewer(s))\n",
			c.Criterion, c.Average, c.StdDev, c.Agreement, c.Reviewers)
	}
	return strings.TrimRight(b.String(), "\n")
}
