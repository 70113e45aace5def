package chat

import "github.com/ragbase-ai/go-ragbase/pkg/middleware/retrieval"

// EventType tags the variants of a turn's event stream.
type EventType int

const (
	// EventSources carries the retrieved documents for the turn. Emitted
	// at most once, always before the first delta.
	EventSources EventType = iota
	// EventDelta carries one text fragment of the generated answer.
	EventDelta
	// EventError is the single terminal error event of a failed turn.
	EventError
)

// String returns the event type name for logging.
func (t EventType) String() string {
	switch t {
	case EventSources:
		return "sources"
	case EventDelta:
		return "delta"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one element of a turn's stream.
//
// Exactly one payload field is meaningful, selected by Type.
type Event struct {
	Type      EventType
	Documents []retrieval.Document // EventSources payload
	Delta     string               // EventDelta payload
	Err       error                // EventError payload
}

// EmitFunc receives events in order during a turn. Returning an error
// aborts the turn; the pipeline stops producing further events.
type EmitFunc func(Event) error
