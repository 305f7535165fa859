package event

import "context"

// Priority determines handler execution order. Lower values execute first.
type Priority int

const (
	// PriorityCritical runs before everything else, e.g. the focused
	// editor registry.
	PriorityCritical Priority = 0

	// PriorityHigh is for host view handlers.
	PriorityHigh Priority = 100

	// PriorityNormal is the default priority.
	PriorityNormal Priority = 200

	// PriorityLow is for logging handlers that run last.
	PriorityLow Priority = 300
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Handler is the interface for event handlers.
type Handler interface {
	// Handle processes an event. The event is type-erased; handlers
	// type-assert or use Payload.
	Handle(ctx context.Context, event any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// TypedHandlerFunc handles events of one payload type.
type TypedHandlerFunc[T any] func(ctx context.Context, event Event[T]) error

// AsHandler converts a TypedHandlerFunc to a Handler. Events with another
// payload type are skipped.
func AsHandler[T any](fn TypedHandlerFunc[T]) Handler {
	return HandlerFunc(func(ctx context.Context, event any) error {
		if e, ok := event.(Event[T]); ok {
			return fn(ctx, e)
		}
		return nil
	})
}

// FilterFunc is a predicate for filtering events.
type FilterFunc func(event any) bool

// Stats contains event bus statistics.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

// ErrorHandler receives errors returned or panics raised by handlers.
// Handler failures never reach the publisher.
type ErrorHandler func(event any, err error)
