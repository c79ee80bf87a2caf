package shared

import "context"

// EventHandler processes domain events
type EventHandler interface {
	// Handle processes a single event
	Handle(ctx context.Context, event DomainEvent) error

	// EventTypes returns the event types this handler subscribes to
	EventTypes() []string
}

// EventBus publishes domain events to subscribed handlers
type EventBus interface {
	// Publish delivers events to all registered handlers. Handler failures
	// are logged, never propagated to the publisher.
	Publish(ctx context.Context, events ...DomainEvent) error

	// Subscribe registers a handler. When no explicit event types are
	// given, the handler's own EventTypes() are used.
	Subscribe(handler EventHandler, eventTypes ...string)
}
