package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValue(t *testing.T) {
	tests := []struct {
		line string
		key  string
		want string
		ok   bool
	}{
		{"Title: Hello", "Title", "Hello", true},
		{"- Title: Hello", "Title", "Hello", true},
		{"title:   spaced  ", "Title", "spaced", true},
		{"Titles: nope", "Title", "", false},
		{"Title Hello", "Title", "", false},
		{"", "Title", "", false},
	}
	for _, tt := range tests {
		got, ok := fieldValue(tt.line, tt.key)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestFirstNumber(t *testing.T) {
	v, ok := firstNumber("around -3.5 or so")
	require.True(t, ok)
	assert.Equal(t, -3.5, v)

	_, ok = firstNumber("no digits here")
	assert.False(t, ok)
}

func TestStripBold(t *testing.T) {
	assert.Equal(t, "VOTE: Response A", stripBold("**VOTE:** Response A"))
	assert.Equal(t, "plain", stripBold("plain"))
}

func TestRanking(t *testing.T) {
	valid := map[string]bool{"Response A": true, "Response B": true, "Response C": true}
	isValid := func(l string) bool { return valid[l] }

	t.Run("numbered list after marker", func(t *testing.T) {
		text := "Thinking about Response C first...\n\nFINAL RANKING:\n1. Response B\n2. Response A\n3. Response C\n"
		assert.Equal(t, []string{"Response B", "Response A", "Response C"}, Ranking(text, isValid))
	})

	t.Run("fallback tokens with dedupe", func(t *testing.T) {
		text := "I prefer Response A over Response B. Response A is clearer."
		assert.Equal(t, []string{"Response A", "Response B"}, Ranking(text, isValid))
	})

	t.Run("invalid labels dropped", func(t *testing.T) {
		text := "FINAL RANKING: Response Z, Response A"
		assert.Equal(t, []string{"Response A"}, Ranking(text, isValid))
	})

	t.Run("empty on no labels", func(t *testing.T) {
		assert.Empty(t, Ranking("nothing useful", isValid))
	})
}

func TestVote(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"primary", "Reasoning...\nVOTE: Response B", "Response B"},
		{"bold primary", "**VOTE: Response C**", "Response C"},
		{"last vote wins", "VOTE: Response A\nActually, VOTE: Response B", "Response B"},
		{"fallback last token", "Response A is weaker than Response B overall.", "Response B"},
		{"double letter", "VOTE: Response AB", "Response AB"},
		{"nothing", "I abstain.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Vote(tt.text))
		})
	}
}

func TestMatchupWinner(t *testing.T) {
	label, ok := MatchupWinner("Both are fine.\nWINNER: Response B")
	require.True(t, ok)
	assert.Equal(t, "Response B", label)

	label, ok = MatchupWinner("Response A edges it out.")
	require.True(t, ok)
	assert.Equal(t, "Response A", label)

	_, ok = MatchupWinner("no preference stated")
	assert.False(t, ok)
}
