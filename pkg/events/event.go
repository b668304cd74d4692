package events

import "time"

// Event is anything published on the turn event bus.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TURN_RECORDED").
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// Keyed events carry an idempotency key. Brokers that deduplicate use it so
// a redelivered event is stored once.
type Keyed interface {
	EventKey() string
}
