package services

import (
	"context"

	"todoapi/internal/logging"
)

// Routing keys of the domain events published after successful writes.
const (
	EventUserCreated = "user.created"
	EventUserDeleted = "user.deleted"
	EventTodoCreated = "todo.created"
	EventTodoUpdated = "todo.updated"
	EventTodoDeleted = "todo.deleted"
)

// EventPublisher sends domain events to a message broker. It is satisfied by
// *rabbitmq.Client.
type EventPublisher interface {
	PublishEvent(eventType string, data any) error
}

// publish sends the event when a publisher is configured. Failures are logged
// and never fail the request that triggered them.
func publish(ctx context.Context, p EventPublisher, logger logging.Logger, eventType string, data any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(eventType, data); err != nil {
		logger.Warn(ctx, "failed to publish event", "event", eventType, "error", err)
		return
	}
	logger.Debug(ctx, "event published", "event", eventType)
}
