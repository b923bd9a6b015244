// Package events carries the in-process event bus the contexts use to react
// to each other's writes without importing each other.
package events

import (
	"context"
	"time"
)

// Event is implemented by every published event. EventName doubles as the
// subscription key.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// Bus publishes events to subscribed handlers.
type Bus interface {
	// Publish fans the event out to handlers without waiting on them.
	Publish(ctx context.Context, event Event)

	// PublishSync waits for every handler and returns the first failure.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under an EventName.
	Subscribe(eventName string, handler Handler)
}

// Handler processes one event type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// BaseEvent supplies the timestamp shared by all concrete events. Embed it
// and implement EventName on the concrete type.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps the event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}
