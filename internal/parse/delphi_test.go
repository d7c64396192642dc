package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := Classify("TYPE: NUMERIC\nUnit: dollars")
	assert.Equal(t, KindNumeric, c.Kind)

	c = Classify("**TYPE: QUALITATIVE**\nOptions: Buy, Hold, Sell")
	assert.Equal(t, KindQualitative, c.Kind)
	assert.Equal(t, []string{"Buy", "Hold", "Sell"}, c.Options)

	// Garbage defaults to qualitative.
	c = Classify("I am not sure what kind of question this is.")
	assert.Equal(t, KindQualitative, c.Kind)
	assert.Empty(t, c.Options)
}

func TestEstimate(t *testing.T) {
	v, ok := Estimate("Reasoning...\nESTIMATE: 42000\nCONFIDENCE: HIGH")
	require.True(t, ok)
	assert.Equal(t, 42000.0, v)

	v, ok = Estimate("**ESTIMATE:** around 3.5 million")
	require.True(t, ok)
	assert.Equal(t, 3.5, v)

	// Fallback: first number anywhere.
	v, ok = Estimate("I'd guess somewhere near 120 units.")
	require.True(t, ok)
	assert.Equal(t, 120.0, v)

	_, ok = Estimate("no idea whatsoever")
	assert.False(t, ok)
}

func TestAnswer(t *testing.T) {
	a, ok := Answer("ANSWER: Hold\nCONFIDENCE: LOW")
	require.True(t, ok)
	assert.Equal(t, "Hold", a)

	_, ok = Answer("I decline to answer.")
	assert.False(t, ok)
}

func TestConfidenceLevel(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ConfidenceLevel("CONFIDENCE: high"))
	assert.Equal(t, ConfidenceLow, ConfidenceLevel("**CONFIDENCE: LOW**"))
	assert.Equal(t, ConfidenceMedium, ConfidenceLevel("no line at all"))
}
