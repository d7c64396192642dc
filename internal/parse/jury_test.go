package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJurorTableForm(t *testing.T) {
	text := `| Dimension | Score |
|-----------|-------|
| Accuracy | 8 |
| Completeness | 7 |
| Clarity | 9 |
| Relevance | 8 |
| Actionability | 6 |

VERDICT: APPROVE`

	card := Juror(text)
	require.NotNil(t, card.Scores["Accuracy"])
	assert.Equal(t, 8.0, *card.Scores["Accuracy"])
	require.NotNil(t, card.Scores["Actionability"])
	assert.Equal(t, 6.0, *card.Scores["Actionability"])
	assert.Equal(t, 7.6, card.Average)
	assert.Equal(t, "APPROVE", card.Verdict)
}

func TestJurorLineForm(t *testing.T) {
	text := `Accuracy: 9/10
**Completeness: 8**
Clarity - 7
Relevance: 15
VERDICT: revise`

	card := Juror(text)
	require.NotNil(t, card.Scores["Accuracy"])
	assert.Equal(t, 9.0, *card.Scores["Accuracy"])
	require.NotNil(t, card.Scores["Completeness"])
	assert.Equal(t, 8.0, *card.Scores["Completeness"])
	require.NotNil(t, card.Scores["Clarity"])
	assert.Equal(t, 7.0, *card.Scores["Clarity"])

	// Out of range and missing dimensions stay nil.
	assert.Nil(t, card.Scores["Relevance"])
	assert.Nil(t, card.Scores["Actionability"])

	assert.Equal(t, 8.0, card.Average)
	assert.Equal(t, "REVISE", card.Verdict)
}

func TestJurorEmpty(t *testing.T) {
	card := Juror("I cannot score this.")
	for _, dim := range JuryDimensions {
		assert.Nil(t, card.Scores[dim], dim)
	}
	assert.Zero(t, card.Average)
	assert.Empty(t, card.Verdict)
}
