// Package trace provides event recording for farm simulation runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// EventKind names a simulation event.
type EventKind string

const (
	EventDelivery   EventKind = "animal_delivery"
	EventCollected  EventKind = "collected_animals"
	EventStocked    EventKind = "stocked"
	EventReturned   EventKind = "returned_to_enclosure"
	EventBreakStart EventKind = "break_start"
	EventBreakEnd   EventKind = "break_end"
	EventBought     EventKind = "bought"
)

// Actor kinds used as the actorKind argument of Record.
const (
	ActorDelivery = "delivery"
	ActorFarmer   = "farmer"
	ActorBuyer    = "buyer"
)

// Well-known payload keys.
const (
	KeyWaitedTicks = "waited_ticks"
	KeyField       = "field"
	KeyCount       = "count"
	KeyLeft        = "left"
	KeyTotal       = "total"
	KeyWorkTicks   = "work_ticks"
)

// Payload carries event-specific values. Category counts are keyed by category name.
type Payload map[string]any

// Event is a single recorded simulation event.
type Event struct {
	Tick      uint64
	ActorKind string
	ActorID   int
	Kind      EventKind
	Payload   Payload
}

// Recorder receives simulation events. Implementations MUST be safe for
// concurrent use and MUST NOT block callers for longer than a write.
type Recorder interface {
	Record(tick uint64, actorKind string, actorID int, kind EventKind, payload Payload)
}
