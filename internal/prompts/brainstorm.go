package prompts

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/parse"
)

const ideateTemplate = `Brainstorm distinct ideas for this prompt:

%s

Produce 3 to 7 genuinely different ideas. Reply in exactly this format:

IDEA 1: <short title>
<one paragraph developing the idea>

IDEA 2: <short title>
...`

// BrainstormIdeate builds the parallel ideation prompt.
func BrainstormIdeate(question string) string {
	return fmt.Sprintf(ideateTemplate, question)
}

const clusterTemplate = `You are curating a brainstorm for:

%s

All ideas, with their ids:

%s

Group the ideas into at most %d thematic clusters. Every referenced id must come from the list above. Reply in exactly this format:

CLUSTER 1:
Name: <cluster name>
Theme: <what unites these ideas>
Promise: HIGH or MEDIUM or LOW
Ideas: id, id, id

CLUSTER 2: ...`

// BrainstormCluster builds the curator prompt over all collected ideas.
func BrainstormCluster(question string, ideas []parse.Idea, maxClusters int) string {
	var b strings.Builder
	for _, idea := range ideas {
		fmt.Fprintf(&b, "[%s] (%s) %s\n%s\n\n", idea.ID, idea.Label, idea.Title, idea.Body)
	}
	return fmt.Sprintf(clusterTemplate, question, strings.TrimRight(b.String(), "\n"), maxClusters)
}

const scoreTemplate = `Score each idea cluster below for the brainstorm prompt:

%s

Clusters:

%s

Rate every cluster 1-5 on each dimension, one line per cluster, in exactly this format:

CLUSTER 1: Novelty=n Feasibility=n Impact=n
CLUSTER 2: Novelty=n Feasibility=n Impact=n`

// BrainstormScore builds a scorer's prompt over the curated clusters.
func BrainstormScore(question string, clusters []parse.Cluster, ideasByID map[string]parse.Idea) string {
	var b strings.Builder
	for _, c := range clusters {
		fmt.Fprintf(&b, "CLUSTER %d: %s (%s)\n", c.Number, c.Name, c.Theme)
		for _, id := range c.IdeaIDs {
			if idea, ok := ideasByID[id]; ok {
				fmt.Fprintf(&b, "- %s\n", idea.Title)
			}
		}
		b.WriteString("\n")
	}
	return fmt.Sprintf(scoreTemplate, question, strings.TrimRight(b.String(), "\n"))
}

const refineTemplate = `You are refining the winning direction of a brainstorm for:

%s

Winning cluster(s):

%s

Develop the winning direction into a concrete, actionable proposal: what it is, why it wins, how to start, and the main risks.`

// BrainstormRefine builds the refiner prompt over the top cluster(s) and
// their member ideas.
func BrainstormRefine(question string, winners []parse.Cluster, ideasByID map[string]parse.Idea) string {
	var b strings.Builder
	for _, c := range winners {
		fmt.Fprintf(&b, "%s — %s (promise %s)\n", c.Name, c.Theme, c.Promise)
		for _, id := range c.IdeaIDs {
			if idea, ok := ideasByID[id]; ok {
				fmt.Fprintf(&b, "- %s: %s\n", idea.Title, idea.Body)
			}
		}
		b.WriteString("\n")
	}
	return fmt.Sprintf(refineTemplate, question, strings.TrimRight(b.String(), "\n"))
}
