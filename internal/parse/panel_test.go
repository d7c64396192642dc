package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecialist(t *testing.T) {
	text := `Assessment from the security perspective.

| Criterion | Score |
|-----------|-------|
| Threat model | 7 |
| Input validation | 4/10 |

TOP RECOMMENDATIONS:
1. Add server-side validation.
2. Rotate the signing keys.
3. Enable audit logging.
4. This fourth one is dropped.

KEY FINDINGS:
- Tokens never expire.
- Admin routes lack authz checks.`

	r := Specialist(text)
	require.Len(t, r.Criteria, 2)
	assert.Equal(t, "Threat model", r.Criteria[0].Criterion)
	assert.Equal(t, 7.0, r.Criteria[0].Score)
	assert.Equal(t, 4.0, r.Criteria[1].Score)

	require.Len(t, r.Recommendations, 3)
	assert.Equal(t, "Add server-side validation.", r.Recommendations[0])

	require.Len(t, r.KeyFindings, 2)
	assert.Equal(t, "Tokens never expire.", r.KeyFindings[0])
}

func TestSpecialistUnstructured(t *testing.T) {
	r := Specialist("Free-form prose with no table or lists.")
	assert.Empty(t, r.Criteria)
	assert.Empty(t, r.Recommendations)
	assert.Empty(t, r.KeyFindings)
}
