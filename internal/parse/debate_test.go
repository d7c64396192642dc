package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRevision(t *testing.T) {
	t.Run("revise with body", func(t *testing.T) {
		r := ParseRevision("DECISION: REVISE\n\nHere is my improved answer.")
		assert.True(t, r.ParseSuccess)
		assert.Equal(t, DecisionRevise, r.Decision)
		assert.Equal(t, "Here is my improved answer.", r.Body)
	})

	t.Run("bold stand", func(t *testing.T) {
		r := ParseRevision("**DECISION: STAND**\nMy original holds.")
		assert.True(t, r.ParseSuccess)
		assert.Equal(t, DecisionStand, r.Decision)
	})

	t.Run("merge lowercase", func(t *testing.T) {
		r := ParseRevision("decision: merge\nCombined version follows.")
		assert.True(t, r.ParseSuccess)
		assert.Equal(t, DecisionMerge, r.Decision)
		assert.Equal(t, "Combined version follows.", r.Body)
	})

	t.Run("missing decision", func(t *testing.T) {
		r := ParseRevision("I just rewrote everything without a header.")
		assert.False(t, r.ParseSuccess)
		assert.Empty(t, r.Decision)
		assert.Equal(t, "I just rewrote everything without a header.", r.Body)
	})
}
