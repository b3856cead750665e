package trace

import "sync"

// Memory collects events in arrival order.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

// NewMemory creates an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{events: make([]Event, 0)}
}

// Record appends an event.
func (m *Memory) Record(tick uint64, actorKind string, actorID int, kind EventKind, payload Payload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{
		Tick:      tick,
		ActorKind: actorKind,
		ActorID:   actorID,
		Kind:      kind,
		Payload:   payload,
	})
}

// Events returns a copy of all recorded events.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Filter returns the recorded events of the given kind.
func (m *Memory) Filter(kind EventKind) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(uint64, string, int, EventKind, Payload) {}

type multi []Recorder

func (m multi) Record(tick uint64, actorKind string, actorID int, kind EventKind, payload Payload) {
	for _, r := range m {
		r.Record(tick, actorKind, actorID, kind, payload)
	}
}

// Multi fans every event out to all non-nil recorders in order.
func Multi(recorders ...Recorder) Recorder {
	out := make(multi, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
