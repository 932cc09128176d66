package events

import "time"

// Type names the kind of state change carried by an Event.
type Type string

const (
	TypeReading  Type = "reading"
	TypeAlert    Type = "alert"
	TypeStatus   Type = "status"
	TypeWatering Type = "watering"
)

// Event is what subscribers receive. Data is JSON-serialisable.
type Event struct {
	Type Type      `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"timestamp"`
}

// New stamps the event with the current time.
func New(typ Type, data any) Event {
	return NewAt(typ, data, time.Now())
}

// NewAt stamps the event with at, normally the time the change was persisted.
func NewAt(typ Type, data any, at time.Time) Event {
	return Event{Type: typ, Data: data, At: at.UTC()}
}
