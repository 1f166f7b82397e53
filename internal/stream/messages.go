package stream

// MessageType tags every message sent to watchers.
type MessageType string

// Message types.
const (
	MessageTypeHello    MessageType = "hello"
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeEvent    MessageType = "event"
	MessageTypeReport   MessageType = "report"
)

// Message is the envelope for everything on the wire.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// HelloMessage greets a new watcher with the latest snapshot, if any.
type HelloMessage struct {
	RunID    string      `json:"run_id"`
	Snapshot interface{} `json:"snapshot,omitempty"`
}

// EventMessage reports a notable agent event.
type EventMessage struct {
	RunID   string `json:"run_id"`
	Kind    string `json:"kind"`
	Agent   int    `json:"agent"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Battery int    `json:"battery"`
}
