package modes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/aggregate"
	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["brainstorm"] = runBrainstorm }

// ClusterRanking is one cluster's aggregate score.
type ClusterRanking struct {
	Cluster     parse.Cluster `json:"cluster"`
	Novelty     float64       `json:"novelty"`
	Feasibility float64       `json:"feasibility"`
	Impact      float64       `json:"impact"`
	Total       float64       `json:"total"`
	Scorers     int           `json:"scorers"`
}

// promiseScore ranks clusters when fewer than 2 scorers succeed.
var promiseScore = map[string]float64{"HIGH": 12, "MEDIUM": 8, "LOW": 4}

// runBrainstorm ideates in parallel, clusters through the curator, scores
// the clusters, and refines the winner.
func runBrainstorm(ctx context.Context, r *Run) (string, error) {
	r.Start("")
	curator := r.Config.String("curatorModel", r.Models[0])
	refiner := r.Config.String("refinerModel", r.Models[0])
	maxClusters := r.Config.Int("maxClusters", DefaultBrainstormMaxClusters)

	r.Emit("ideate_start", PhaseCounts{})
	ideas, ideators := collectIdeas(ctx, r)
	r.Emit("ideate_complete", map[string]any{"ideas": len(ideas), "models": ideators})
	if len(ideas) == 0 {
		return "", r.Fatal("no model produced any ideas")
	}

	// A thin idea pool gets fewer clusters.
	if len(ideas) < 10 {
		if lowered := max(3, len(ideas)/2); lowered < maxClusters {
			maxClusters = lowered
		}
	}

	r.Emit("cluster_start", PhaseCounts{})
	clusters := curateClusters(ctx, r, curator, ideas, maxClusters)
	r.Emit("cluster_complete", map[string]int{"clusters": len(clusters)})

	ideasByID := make(map[string]parse.Idea, len(ideas))
	for _, idea := range ideas {
		ideasByID[idea.ID] = idea
	}

	var winners []parse.Cluster
	if len(clusters) == 1 {
		// Single cluster: nothing to score.
		winners = clusters
		r.Emit("score_complete", map[string]string{"skipped": "single cluster"})
	} else {
		r.Emit("score_start", PhaseCounts{})
		rankings := scoreClusters(ctx, r, clusters, ideasByID)
		r.Emit("score_complete", rankings)
		winners = topClusters(rankings)
	}

	r.Emit("refine_start", PhaseCounts{})
	res := r.GW.QueryOne(ctx, refiner, prompts.BrainstormRefine(r.Question, winners, ideasByID), r.Timeout)
	if res == nil {
		// Fallback: name the winner and list its ideas.
		fallback := refineFallback(winners, ideasByID)
		r.Record("refine", "", "refiner", fallback, map[string]string{"fallback": "mechanical"}, 0)
		r.Emit("refine_complete", map[string]bool{"fallback": true})
		return fallback, nil
	}
	r.Record("refine", refiner, "refiner", res.Content, nil, res.ResponseTimeMS)
	r.Emit("refine_complete", map[string]bool{"fallback": false})
	return res.Content, nil
}

// collectIdeas fans the ideation prompt out and assigns deterministic ids by
// model position.
func collectIdeas(ctx context.Context, r *Run) ([]parse.Idea, int) {
	prompt := prompts.BrainstormIdeate(r.Question)
	results := r.GW.QueryMany(ctx, r.Models, prompt, r.Timeout)

	var all []parse.Idea
	ideators := 0
	for i, model := range r.Models {
		res := results[model]
		if res == nil {
			continue
		}
		ideas := parse.Ideas(res.Content, i)
		r.Record("ideate", model, "", res.Content, ideas, res.ResponseTimeMS)
		if len(ideas) > 0 {
			ideators++
			all = append(all, ideas...)
		}
	}
	return all, ideators
}

// curateClusters runs the curator, falling back to per-source pseudo
// clusters when nothing parses.
func curateClusters(ctx context.Context, r *Run, curator string, ideas []parse.Idea, maxClusters int) []parse.Cluster {
	known := make(map[string]bool, len(ideas))
	for _, idea := range ideas {
		known[idea.ID] = true
	}

	res := r.GW.QueryOne(ctx, curator, prompts.BrainstormCluster(r.Question, ideas, maxClusters), r.Timeout)
	if res != nil {
		clusters := parse.Clusters(res.Content, known)
		r.Record("cluster", curator, "curator", res.Content, clusters, res.ResponseTimeMS)
		if len(clusters) > 0 {
			return clusters
		}
	}

	// Pseudo clusters grouped by source model.
	r.Logger.Warn("curator produced no clusters, grouping by source model")
	byLabel := make(map[string][]string)
	var order []string
	for _, idea := range ideas {
		if _, ok := byLabel[idea.Label]; !ok {
			order = append(order, idea.Label)
		}
		byLabel[idea.Label] = append(byLabel[idea.Label], idea.ID)
	}
	clusters := make([]parse.Cluster, 0, len(order))
	for i, label := range order {
		clusters = append(clusters, parse.Cluster{
			Number:  i + 1,
			Name:    label + " ideas",
			Theme:   "grouped by source",
			Promise: "MEDIUM",
			IdeaIDs: byLabel[label],
		})
	}
	return clusters
}

// scoreClusters fans scoring out to every model and aggregates per-cluster
// means. Under 2 valid scorers, promise levels rank the clusters instead.
func scoreClusters(ctx context.Context, r *Run, clusters []parse.Cluster, ideasByID map[string]parse.Idea) []ClusterRanking {
	prompt := prompts.BrainstormScore(r.Question, clusters, ideasByID)
	results := r.GW.QueryMany(ctx, r.Models, prompt, r.Timeout)

	scoresByCluster := make(map[int][]parse.ClusterScore)
	validScorers := 0
	for _, scorer := range r.Models {
		res := results[scorer]
		if res == nil {
			continue
		}
		scores := parse.ClusterScores(res.Content)
		r.Record("score", scorer, "scorer", res.Content, scores, res.ResponseTimeMS)
		if len(scores) == 0 {
			continue
		}
		validScorers++
		for _, s := range scores {
			scoresByCluster[s.ClusterNumber] = append(scoresByCluster[s.ClusterNumber], s)
		}
	}

	rankings := make([]ClusterRanking, 0, len(clusters))
	for _, c := range clusters {
		ranking := ClusterRanking{Cluster: c}
		if validScorers < 2 {
			ranking.Total = promiseScore[c.Promise]
		} else {
			var novelty, feasibility, impact []float64
			for _, s := range scoresByCluster[c.Number] {
				novelty = append(novelty, s.Novelty)
				feasibility = append(feasibility, s.Feasibility)
				impact = append(impact, s.Impact)
			}
			ranking.Scorers = len(novelty)
			ranking.Novelty = aggregate.Round(aggregate.Mean(novelty), 2)
			ranking.Feasibility = aggregate.Round(aggregate.Mean(feasibility), 2)
			ranking.Impact = aggregate.Round(aggregate.Mean(impact), 2)
			ranking.Total = aggregate.Round(ranking.Novelty+ranking.Feasibility+ranking.Impact, 2)
		}
		rankings = append(rankings, ranking)
	}
	sort.SliceStable(rankings, func(i, j int) bool { return rankings[i].Total > rankings[j].Total })
	return rankings
}

// topClusters returns the winner plus up to two clusters tied with it.
func topClusters(rankings []ClusterRanking) []parse.Cluster {
	if len(rankings) == 0 {
		return nil
	}
	winners := []parse.Cluster{rankings[0].Cluster}
	for _, ranking := range rankings[1:] {
		if ranking.Total == rankings[0].Total && len(winners) < 3 {
			winners = append(winners, ranking.Cluster)
		}
	}
	return winners
}

func refineFallback(winners []parse.Cluster, ideasByID map[string]parse.Idea) string {
	var b strings.Builder
	for _, c := range winners {
		fmt.Fprintf(&b, "Winning direction: %s (%s)\n", c.Name, c.Theme)
		for _, id := range c.IdeaIDs {
			if idea, ok := ideasByID[id]; ok {
				fmt.Fprintf(&b, "- %s\n", idea.Title)
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
