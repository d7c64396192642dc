package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutline(t *testing.T) {
	text := `DOCUMENT TITLE: Migration Playbook

SECTION 1: Overview
Description: What the migration covers and why.
Key Topics: scope, timeline
Length: Short

SECTION 2: Cutover Plan
Description: Step-by-step cutover.
Key Topics:
- DNS switch
- rollback criteria
Length: Long
Source Coverage: runbook sections 3-5

SECTION 3: Appendix
Description: Reference material.`

	o := ParseOutline(text)
	assert.Equal(t, "Migration Playbook", o.Title)
	require.Len(t, o.Sections, 3)

	assert.Equal(t, "Overview", o.Sections[0].Name)
	assert.Equal(t, []string{"scope", "timeline"}, o.Sections[0].KeyTopics)
	assert.Equal(t, "Short", o.Sections[0].Length)

	assert.Equal(t, []string{"DNS switch", "rollback criteria"}, o.Sections[1].KeyTopics)
	assert.Equal(t, "Long", o.Sections[1].Length)
	assert.Equal(t, "runbook sections 3-5", o.Sections[1].Coverage)

	// Missing length defaults to Medium.
	assert.Equal(t, "Medium", o.Sections[2].Length)
}

func TestParseOutlineNoSections(t *testing.T) {
	o := ParseOutline("Here is a rambling plan with no structure.")
	assert.Empty(t, o.Sections)
	assert.Empty(t, o.Title)
}
