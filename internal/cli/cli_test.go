package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/quorum/internal/events"
	"github.com/Dicklesworthstone/quorum/internal/modes"
	"github.com/Dicklesworthstone/quorum/internal/state"
)

func TestLoadPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: redteam
models:
  - m1
  - m2
config:
  rounds: 3
`), 0o644))

	p, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, "redteam", p.Mode)

	cfg := p.ModeConfig()
	assert.Equal(t, []string{"m1", "m2"}, cfg.Models())
	assert.Equal(t, 3, cfg.Int("rounds", 0))
}

func TestLoadPresetRejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: seance\n"), 0o644))

	_, err := LoadPreset(path)
	assert.ErrorContains(t, err, "unknown mode")
}

func TestPresetModelsWinOverConfigKey(t *testing.T) {
	p := &Preset{
		Models: []string{"a"},
		Config: map[string]any{"models": []any{"b"}},
	}
	assert.Equal(t, []string{"a"}, p.ModeConfig().Models())
}

func TestProgressEmitterFormatsEvents(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressEmitter(&buf, false)

	require.NoError(t, p.Emit(events.Event{Type: "council_start"}))
	require.NoError(t, p.Emit(events.Event{Type: "initial_responses_complete"}))
	require.NoError(t, p.Emit(events.Event{Type: events.TypeTitleComplete}))
	require.NoError(t, p.Emit(events.Event{Type: events.TypeError, Message: "boom"}))
	require.NoError(t, p.Emit(events.Event{Type: events.TypeComplete}))

	out := buf.String()
	assert.Contains(t, out, "• council")
	assert.Contains(t, out, "initial responses complete")
	assert.NotContains(t, out, "title")
	assert.Contains(t, out, "✗ boom")
	assert.Contains(t, out, "✓ done")
}

func TestPadCellIsWidthAware(t *testing.T) {
	assert.Equal(t, "ab  ", padCell("ab", 4))
	// CJK characters occupy two cells each.
	assert.Equal(t, "日本", padCell("日本", 4))
	assert.Equal(t, "ab", padCell("ab", 1))
}

func TestModesTableListsEveryMode(t *testing.T) {
	out := modesTable(modes.Registry, false)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, len(modes.Registry)+1)
	assert.Contains(t, lines[0], "MODE")
	assert.Contains(t, out, "council")
	assert.Contains(t, out, "factcheck")
	assert.Contains(t, out, "2-16") // tournament bounds
}

func TestConversationsTableTruncatesTitles(t *testing.T) {
	list := []state.Conversation{{
		ID:        "c1",
		Title:     strings.Repeat("x", 60),
		Mode:      "vote",
		UpdatedAt: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
	}}
	out := conversationsTable(list, false)
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, strings.Repeat("x", 41))
	assert.Contains(t, out, "2026-08-24 12:00")
}

func TestPhaseName(t *testing.T) {
	assert.Equal(t, "initial responses", phaseName("initial_responses_start"))
	assert.Equal(t, "round", phaseName("round_complete"))
	assert.Equal(t, "winner", phaseName("winner"))
}
