package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShufflePreservesElements(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e"}
	out := Shuffle(in)
	require.Len(t, out, len(in))
	assert.ElementsMatch(t, in, out)
	// Input untouched.
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, in)
}

func TestShuffleEventuallyPermutes(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6}
	moved := false
	for i := 0; i < 100 && !moved; i++ {
		out := Shuffle(in)
		for j := range in {
			if out[j] != in[j] {
				moved = true
				break
			}
		}
	}
	assert.True(t, moved, "100 shuffles of 6 elements never produced a non-identity permutation")
}

func TestShuffleEmpty(t *testing.T) {
	assert.Empty(t, Shuffle([]string{}))
}
