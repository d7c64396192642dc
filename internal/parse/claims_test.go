package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaims(t *testing.T) {
	text := `CLAIM 1: GDP grew 3.2% in 2024.
Context: opening paragraph
Type: STATISTIC

CLAIM 2: The library was released in 2019.
Type: DATE

CLAIM 3: GDP grew 3.2% in 2024.
Type: STATISTIC

CLAIM 4: Something something.
Type: GIBBERISH`

	cs := Claims(text)
	require.Len(t, cs, 3) // exact duplicate text deduped

	assert.Equal(t, "GDP grew 3.2% in 2024.", cs[0].Text)
	assert.Equal(t, "opening paragraph", cs[0].Context)
	assert.Equal(t, "STATISTIC", cs[0].Type)
	assert.Equal(t, "DATE", cs[1].Type)
	// Unknown type coerces to TECHNICAL.
	assert.Equal(t, "TECHNICAL", cs[2].Type)
}

func TestVerifications(t *testing.T) {
	text := `VERIFICATION claim_1: VERIFIED
Evidence: Matches the published figures.
Correction: N/A
Confidence: HIGH

VERIFICATION claim_2: DISPUTED
Evidence: Release was 2020, not 2019.
Correction: The library was released in 2020.

VERIFICATION claim_3:
I could not find anything either way.`

	vs := Verifications(text)
	require.Len(t, vs, 3)

	assert.Equal(t, 1, vs[0].ClaimNumber)
	assert.Equal(t, "VERIFIED", vs[0].Verdict)
	assert.Empty(t, vs[0].Correction) // N/A dropped
	assert.Equal(t, ConfidenceHigh, vs[0].Confidence)

	assert.Equal(t, "DISPUTED", vs[1].Verdict)
	assert.Equal(t, "The library was released in 2020.", vs[1].Correction)
	assert.Equal(t, ConfidenceMedium, vs[1].Confidence)

	// No verdict parses as UNVERIFIABLE.
	assert.Equal(t, "UNVERIFIABLE", vs[2].Verdict)
}

func TestReliabilityScore(t *testing.T) {
	v, ok := ReliabilityScore("Summary...\nReliability Score: 85/100")
	require.True(t, ok)
	assert.Equal(t, 85.0, v)

	v, ok = ReliabilityScore("**Reliability Score: 140**")
	require.True(t, ok)
	assert.Equal(t, 100.0, v)

	_, ok = ReliabilityScore("no score given")
	assert.False(t, ok)
}
