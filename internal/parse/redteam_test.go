package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindings(t *testing.T) {
	text := `FINDING 1 (CRITICAL): The auth check is bypassable.
Details about the bypass.

FINDING 2:
Severity: high
Rate limiting is absent.

FINDING 3 (BOGUS): Something vague.`

	fs := Findings(text)
	require.Len(t, fs, 3)

	assert.Equal(t, 1, fs[0].Number)
	assert.Equal(t, "CRITICAL", fs[0].Severity)
	assert.Contains(t, fs[0].Body, "bypassable")

	assert.Equal(t, "HIGH", fs[1].Severity)

	// Unknown severity coerces to MEDIUM.
	assert.Equal(t, "MEDIUM", fs[2].Severity)
}

func TestDefenses(t *testing.T) {
	text := `RESPONSE TO FINDING 1:
VERDICT: ACCEPT
Revised: The check now validates the session token server-side.

RESPONSE TO FINDING 2:
VERDICT: REBUT
The rate limiter exists at the gateway layer.

RESPONSE TO FINDING 3:
I disagree but forgot the verdict line.`

	ds := Defenses(text)
	require.Len(t, ds, 3)

	assert.Equal(t, DefenseAccept, ds[0].Verdict)
	assert.Contains(t, ds[0].Revised, "session token")

	assert.Equal(t, DefenseRebut, ds[1].Verdict)
	assert.Empty(t, ds[1].Revised)

	// Missing verdict defaults to REBUT.
	assert.Equal(t, DefenseRebut, ds[2].Verdict)
}

func TestSeverityRank(t *testing.T) {
	assert.Equal(t, 0, SeverityRank("CRITICAL"))
	assert.Equal(t, 0, SeverityRank("critical"))
	assert.Equal(t, 3, SeverityRank("LOW"))
	assert.Equal(t, 4, SeverityRank("WHATEVER"))
}
