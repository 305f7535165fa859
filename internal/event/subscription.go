package event

import (
	"sync/atomic"

	"github.com/dshills/markupeditor/internal/event/topic"
)

// SubscriptionState represents the state of a subscription.
type SubscriptionState int32

const (
	// SubscriptionStateActive means the subscription is receiving events.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStatePaused means the subscription is temporarily not receiving events.
	SubscriptionStatePaused

	// SubscriptionStateCancelled means the subscription has been permanently cancelled.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStatePaused:
		return "paused"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Subscription is a handle on a registered handler.
type Subscription interface {
	ID() string
	Topic() topic.Topic
	State() SubscriptionState
	IsActive() bool

	// Pause temporarily stops delivery to this subscription.
	Pause()

	// Resume restarts delivery after a pause.
	Resume()

	// Cancel permanently cancels the subscription.
	Cancel()
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Priority determines execution order (lower values execute first).
	Priority Priority

	// Filter, when set, must return true for an event to be delivered.
	Filter FilterFunc

	// Once cancels the subscription after its first delivery.
	Once bool
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithFilter adds a filter predicate. Every filter given must pass.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		if prev := c.Filter; prev != nil {
			c.Filter = func(ev any) bool { return prev(ev) && f(ev) }
			return
		}
		c.Filter = f
	}
}

// WithSource only delivers events published by the given source.
func WithSource(source string) SubscriptionOption {
	return WithFilter(func(ev any) bool {
		mp, ok := ev.(MetadataProvider)
		return ok && mp.EventMetadata().Source == source
	})
}

// WithOnce cancels the subscription after the first event.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

type subscription struct {
	id      string
	topic   topic.Topic
	handler Handler
	config  SubscriptionConfig
	state   atomic.Int32
}

func newSubscription(id string, t topic.Topic, h Handler, opts ...SubscriptionOption) *subscription {
	config := SubscriptionConfig{Priority: PriorityNormal}
	for _, opt := range opts {
		opt(&config)
	}
	s := &subscription{id: id, topic: t, handler: h, config: config}
	s.state.Store(int32(SubscriptionStateActive))
	return s
}

func (s *subscription) ID() string         { return s.id }
func (s *subscription) Topic() topic.Topic { return s.topic }

func (s *subscription) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

func (s *subscription) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

func (s *subscription) Pause() {
	s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStatePaused))
}

func (s *subscription) Resume() {
	s.state.CompareAndSwap(int32(SubscriptionStatePaused), int32(SubscriptionStateActive))
}

func (s *subscription) Cancel() {
	s.state.Store(int32(SubscriptionStateCancelled))
}

func (s *subscription) shouldDeliver(t topic.Topic, event any) bool {
	if !s.IsActive() || !t.Matches(s.topic) {
		return false
	}
	return s.config.Filter == nil || s.config.Filter(event)
}
