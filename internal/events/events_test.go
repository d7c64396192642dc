package events

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEWriterFraming(t *testing.T) {
	var buf bytes.Buffer
	w := NewSSEWriter(&buf)

	require.NoError(t, w.Emit(Event{Type: "council_start", Data: map[string]string{"mode": "council"}}))
	require.NoError(t, w.Emit(Event{Type: "error", Message: "model count out of range"}))

	frames := strings.Split(strings.TrimSuffix(buf.String(), "\n\n"), "\n\n")
	require.Len(t, frames, 2)

	for _, frame := range frames {
		assert.True(t, strings.HasPrefix(frame, "data: "), "frame %q", frame)
	}

	var first Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[0], "data: ")), &first))
	assert.Equal(t, "council_start", first.Type)

	var second Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[1], "data: ")), &second))
	assert.Equal(t, "error", second.Type)
	assert.Equal(t, "model count out of range", second.Message)
}

func TestSSEWriterOneLinePerFrame(t *testing.T) {
	var buf bytes.Buffer
	w := NewSSEWriter(&buf)
	require.NoError(t, w.Emit(Event{Type: "x", Data: map[string]string{"text": "line1\nline2"}}))

	scanner := bufio.NewScanner(&buf)
	var dataLines int
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		dataLines++
		assert.True(t, strings.HasPrefix(line, "data: "))
	}
	assert.Equal(t, 1, dataLines, "JSON escaping must keep each frame on one line")
}

func TestRecorderOrder(t *testing.T) {
	r := &Recorder{}
	for _, typ := range []string{"vote_start", "collect_start", "collect_complete", "complete"} {
		require.NoError(t, r.Emit(Event{Type: typ}))
	}
	assert.Equal(t, []string{"vote_start", "collect_start", "collect_complete", "complete"}, r.Types())
}

func TestTee(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	tee := &Tee{Emitters: []Emitter{a, b}}
	require.NoError(t, tee.Emit(Event{Type: "complete"}))
	assert.Equal(t, []string{"complete"}, a.Types())
	assert.Equal(t, []string{"complete"}, b.Types())
}
