package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReview(t *testing.T) {
	text := `| Criterion | Score | Weight | Justification |
|-----------|-------|--------|---------------|
| Correctness | 8 | 40% | Mostly right |
| Clarity | 6/10 | 0.3 | Dense prose |
| Style | 9 | 30% | Clean |

FINDING 1 (MAJOR): Off-by-one in the loop bound.
FINDING 2:
Severity: suggestion
Consider a clearer name.`

	r := ParseReview(text)
	require.Len(t, r.Scores, 3)
	assert.Equal(t, "Correctness", r.Scores[0].Criterion)
	assert.Equal(t, 8.0, r.Scores[0].Score)
	assert.InDelta(t, 0.4, r.Scores[0].Weight, 1e-9)
	assert.Equal(t, "Mostly right", r.Scores[0].Justification)
	assert.InDelta(t, 0.3, r.Scores[1].Weight, 1e-9)

	// 8*0.4 + 6*0.3 + 9*0.3 = 7.7
	assert.Equal(t, 7.7, r.Overall)

	require.Len(t, r.Findings, 2)
	assert.Equal(t, "MAJOR", r.Findings[0].Severity)
	assert.Equal(t, "SUGGESTION", r.Findings[1].Severity)
}

func TestParseReviewUnweighted(t *testing.T) {
	text := `| Correctness | 8 | 0 | |
| Clarity | 6 | 0 | |`

	r := ParseReview(text)
	require.Len(t, r.Scores, 2)
	// Zero weights fall back to an unweighted mean.
	assert.Equal(t, 7.0, r.Overall)
}

func TestParseReviewOutOfRangeScores(t *testing.T) {
	r := ParseReview("| Correctness | 14 | 50% | too good |")
	assert.Empty(t, r.Scores)
	assert.Zero(t, r.Overall)
}
