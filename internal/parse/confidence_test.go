package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
		ok   bool
	}{
		{"decimal", "CONFIDENCE: 0.82", 0.82, true},
		{"bare percent", "CONFIDENCE: 82%", 0.82, true},
		{"whole number", "CONFIDENCE: 82", 0.82, true},
		{"leading dot", "CONFIDENCE: .82", 0.82, true},
		{"bold", "**CONFIDENCE: 0.5**", 0.5, true},
		{"one", "CONFIDENCE: 1.0", 1.0, true},
		{"zero", "CONFIDENCE: 0", 0.0, true},
		{"missing", "no confidence given", 0.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Confidence(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, v, 1e-9)
		})
	}
}

func TestParseSynthesis(t *testing.T) {
	s := ParseSynthesis("SYNTHESIS:\nThe combined answer.\n\nCONFIDENCE CALIBRATION NOTES:\nModel two overclaims.")
	assert.Equal(t, "The combined answer.", s.Body)
	assert.Equal(t, "Model two overclaims.", s.CalibrationNotes)

	s = ParseSynthesis("Just a flat answer with no headers.")
	assert.Equal(t, "Just a flat answer with no headers.", s.Body)
	assert.Empty(t, s.CalibrationNotes)
}

func TestParseTasksNormalization(t *testing.T) {
	text := `TASK task_1:
Title: Schema design
Description: Define the tables.
Dependencies: none
Complexity: LOW
Expertise: databases

TASK 2:
Title: API layer
Dependencies: task_1, task_2, task_99
Complexity: bogus`

	tasks := ParseTasks(text)
	require.Len(t, tasks, 2)

	assert.Equal(t, "task_1", tasks[0].ID)
	assert.Equal(t, "Schema design", tasks[0].Title)
	assert.Empty(t, tasks[0].Dependencies)
	assert.Equal(t, "LOW", tasks[0].Complexity)
	assert.Equal(t, "databases", tasks[0].Expertise)

	// Bare numeric id normalizes; self and unknown deps drop; bad
	// complexity coerces to MEDIUM.
	assert.Equal(t, "task_2", tasks[1].ID)
	assert.Equal(t, []string{"task_1"}, tasks[1].Dependencies)
	assert.Equal(t, "MEDIUM", tasks[1].Complexity)
}

func TestCleanDependenciesAfterTruncationNormalization(t *testing.T) {
	tasks := []Task{
		{ID: "task_1"},
		{ID: "task_2", Dependencies: []string{"task_1", "task_3"}},
	}
	tasks = CleanDependencies(tasks)
	assert.Equal(t, []string{"task_1"}, tasks[1].Dependencies)
}
