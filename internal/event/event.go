package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/markupeditor/internal/event/topic"
)

// Event is a typed notification. Events are immutable once created.
type Event[T any] struct {
	// Type is the hierarchical event type (e.g., "editor.state.changed").
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the editor session that published the event.
	Source string

	// CausationID links to the event that caused this one.
	CausationID string
}

// NewEvent creates an event with the given type and payload.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// EventMetadata returns the event's metadata for type-erased handling.
func (e Event[T]) EventMetadata() Metadata {
	return e.Metadata
}

// WithCausation returns a copy of the event with a causation ID set.
func (e Event[T]) WithCausation(causationID string) Event[T] {
	e.Metadata.CausationID = causationID
	return e
}

// EventPayload returns the payload for type-erased handling.
func (e Event[T]) EventPayload() any {
	return e.Payload
}

// TopicProvider is implemented by types that can provide their topic.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// MetadataProvider is implemented by types that can provide their metadata.
type MetadataProvider interface {
	EventMetadata() Metadata
}

// PayloadProvider is implemented by types that can provide their payload.
type PayloadProvider interface {
	EventPayload() any
}

// Payload extracts the typed payload from a type-erased event.
func Payload[T any](ev any) (T, bool) {
	if e, ok := ev.(Event[T]); ok {
		return e.Payload, true
	}
	var zero T
	return zero, false
}
