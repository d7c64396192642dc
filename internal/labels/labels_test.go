package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssignsInOrder(t *testing.T) {
	m := New([]string{"gpt", "claude", "gemini"})
	require.Equal(t, 3, m.Len())

	model, ok := m.Model("Response A")
	require.True(t, ok)
	assert.Equal(t, "gpt", model)

	label, ok := m.LabelFor("gemini")
	require.True(t, ok)
	assert.Equal(t, "Response C", label)

	assert.Equal(t, []string{"Response A", "Response B", "Response C"}, m.Labels())
	require.NoError(t, m.Validate())
}

func TestLabelBeyondZ(t *testing.T) {
	assert.Equal(t, "Response A", Label(0))
	assert.Equal(t, "Response Z", Label(25))
	assert.Equal(t, "Response AA", Label(26))
	assert.Equal(t, "Response AB", Label(27))
}

func TestNewShuffledIsBijection(t *testing.T) {
	models := []string{"m1", "m2", "m3", "m4", "m5"}
	m := NewShuffled(models)
	require.NoError(t, m.Validate())
	assert.ElementsMatch(t, models, m.Models())
	assert.Equal(t, len(models), m.Len())
}

func TestNewShuffledVariesOrder(t *testing.T) {
	models := []string{"m1", "m2", "m3", "m4", "m5", "m6"}
	varied := false
	for i := 0; i < 100 && !varied; i++ {
		m := NewShuffled(models)
		for j, got := range m.Models() {
			if got != models[j] {
				varied = true
				break
			}
		}
	}
	assert.True(t, varied, "shuffled map never deviated from input order")
}

func TestHasAndMissing(t *testing.T) {
	m := New([]string{"only"})
	assert.True(t, m.Has("Response A"))
	assert.False(t, m.Has("Response B"))
	_, ok := m.Model("Response Q")
	assert.False(t, ok)
}
