package events

import "sync"

// RecordingSink is an in-memory Sink, useful for tests and for running the
// server without a configured SQL retention store.
type RecordingSink struct {
	mu     sync.Mutex
	events []*GameEvent
}

// NewRecordingSink creates an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Record appends evt to the in-memory log.
func (s *RecordingSink) Record(evt *GameEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

// Events returns a snapshot of every event recorded so far.
func (s *RecordingSink) Events() []*GameEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*GameEvent, len(s.events))
	copy(out, s.events)
	return out
}
