package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdeas(t *testing.T) {
	text := `IDEA 1: Solar canopy parking
Cover the lot with panels.

IDEA 2: Battery swap stations
Standardized packs.`

	ideas := Ideas(text, 1)
	require.Len(t, ideas, 2)
	assert.Equal(t, "model_1_idea_1", ideas[0].ID)
	assert.Equal(t, "Model B", ideas[0].Label)
	assert.Equal(t, "Solar canopy parking", ideas[0].Title)
	assert.Contains(t, ideas[0].Body, "panels")
	assert.Equal(t, "model_1_idea_2", ideas[1].ID)
}

func TestLetters(t *testing.T) {
	assert.Equal(t, "A", letters(0))
	assert.Equal(t, "Z", letters(25))
	assert.Equal(t, "AA", letters(26))
}

func TestClusters(t *testing.T) {
	known := map[string]bool{
		"model_0_idea_1": true,
		"model_1_idea_1": true,
	}
	text := `CLUSTER 1:
Name: Infrastructure
Theme: Physical buildout
Promise: HIGH
Ideas: model_0_idea_1, model_1_idea_1, model_9_idea_9

CLUSTER 2:
Name: Ghosts
Ideas: model_9_idea_1`

	cs := Clusters(text, known)
	require.Len(t, cs, 1)
	assert.Equal(t, 1, cs[0].Number)
	assert.Equal(t, "Infrastructure", cs[0].Name)
	assert.Equal(t, "HIGH", cs[0].Promise)
	// Unknown ids drop; the all-unknown cluster drops entirely.
	assert.Equal(t, []string{"model_0_idea_1", "model_1_idea_1"}, cs[0].IdeaIDs)
}

func TestClusterScores(t *testing.T) {
	text := `CLUSTER 1: Novelty=4 Feasibility=3 Impact=5
CLUSTER 2: Novelty=9 Feasibility=0 Impact=2.5`

	scores := ClusterScores(text)
	require.Len(t, scores, 2)
	assert.Equal(t, 1, scores[0].ClusterNumber)
	assert.Equal(t, 4.0, scores[0].Novelty)
	// Out-of-range values clamp to 1-5.
	assert.Equal(t, 5.0, scores[1].Novelty)
	assert.Equal(t, 1.0, scores[1].Feasibility)
	assert.Equal(t, 2.5, scores[1].Impact)
}
