// Package events carries the streamed event protocol: every pipeline phase
// reports progress as an ordered sequence of typed events, serialized as
// SSE frames (`data: {json}\n\n`) at the wire boundary.
package events

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// Event is one streamed protocol event. Data is a per-type payload struct;
// Message is set only on error events.
type Event struct {
	Type    string `json:"type"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Shared terminal event types. Mode-specific types are built by the runners
// (`<mode>_start`, `<phase>_start`, `<phase>_complete`, ...).
const (
	TypeTitleComplete = "title_complete"
	TypeComplete      = "complete"
	TypeError         = "error"
)

// Emitter delivers events, in order, to the stream consumer.
type Emitter interface {
	Emit(Event) error
}

// SSEWriter writes events as server-sent-event frames to an http response.
// Writes are serialized; every frame is flushed immediately so the caller
// sees phases as they happen.
type SSEWriter struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
}

// NewSSEWriter wraps a response writer. Flushing is best-effort: if w does
// not implement http.Flusher, frames still go out on handler return.
func NewSSEWriter(w io.Writer) *SSEWriter {
	s := &SSEWriter{w: w}
	if f, ok := w.(http.Flusher); ok {
		s.flusher = f
	}
	return s
}

// Emit writes one `data: {json}\n\n` frame.
func (s *SSEWriter) Emit(e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.Type, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write event %s: %w", e.Type, err)
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// Recorder is an Emitter that accumulates events for inspection in tests
// and for the CLI, which renders events after the fact.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends the event.
func (r *Recorder) Emit(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of the accumulated events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the event type sequence, for order assertions.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Tee fans each event out to several emitters, stopping on the first error.
type Tee struct {
	Emitters []Emitter
}

// Emit sends e to every underlying emitter.
func (t *Tee) Emit(e Event) error {
	for _, em := range t.Emitters {
		if err := em.Emit(e); err != nil {
			return err
		}
	}
	return nil
}
