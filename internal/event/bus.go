package event

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/markupeditor/internal/event/topic"
)

// Bus delivers events synchronously to subscribed handlers in priority
// order. Publish returns after every matching handler has run.
type Bus interface {
	Publish(ctx context.Context, event any) error
	Subscribe(topicPattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error)
	SubscribeFunc(topicPattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)
	Unsubscribe(sub Subscription) error
	Stats() Stats
}

// BusOption configures a Bus.
type BusOption func(*bus)

// WithErrorHandler sets the callback for handler errors and panics.
func WithErrorHandler(h ErrorHandler) BusOption {
	return func(b *bus) {
		if h != nil {
			b.onError = h
		}
	}
}

type bus struct {
	mu   sync.RWMutex
	subs []*subscription

	onError ErrorHandler

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
}

// NewBus creates an event bus.
func NewBus(opts ...BusOption) Bus {
	b := &bus{onError: func(any, error) {}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers event to every active matching subscription. Handler
// failures are reported to the error handler and do not stop delivery.
func (b *bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok || tp.EventTopic() == "" {
		return ErrInvalidEvent
	}
	t := tp.EventTopic()
	b.eventsPublished.Add(1)

	// Snapshot so handlers may subscribe or unsubscribe while running.
	b.mu.RLock()
	subs := make([]*subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !sub.shouldDeliver(t, event) {
			continue
		}
		if sub.config.Once {
			sub.Cancel()
			b.remove(sub.id)
		}
		if err := b.deliver(ctx, sub, t, event); err != nil {
			b.onError(event, err)
			continue
		}
		b.eventsDelivered.Add(1)
	}
	return nil
}

func (b *bus) deliver(ctx context.Context, sub *subscription, t topic.Topic, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			err = &PanicError{SubscriptionID: sub.id, Topic: string(t), Value: r}
		}
	}()
	if herr := sub.handler.Handle(ctx, event); herr != nil {
		b.handlerErrors.Add(1)
		return &HandlerError{SubscriptionID: sub.id, Topic: string(t), Err: herr}
	}
	return nil
}

// Subscribe registers handler for topics matching topicPattern.
func (b *bus) Subscribe(topicPattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !topicPattern.IsValid() {
		return nil, ErrInvalidTopic
	}
	sub := newSubscription(uuid.NewString(), topicPattern, handler, opts...)

	b.mu.Lock()
	defer b.mu.Unlock()
	i := sort.Search(len(b.subs), func(i int) bool {
		return b.subs[i].config.Priority > sub.config.Priority
	})
	b.subs = append(b.subs, nil)
	copy(b.subs[i+1:], b.subs[i:])
	b.subs[i] = sub
	return sub, nil
}

// SubscribeFunc subscribes a function handler.
func (b *bus) SubscribeFunc(topicPattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(topicPattern, fn, opts...)
}

// Unsubscribe cancels and removes a subscription.
func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()
	if !b.remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (b *bus) remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Stats returns current bus statistics.
func (b *bus) Stats() Stats {
	b.mu.RLock()
	active := 0
	for _, s := range b.subs {
		if s.IsActive() {
			active++
		}
	}
	b.mu.RUnlock()
	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: active,
	}
}
