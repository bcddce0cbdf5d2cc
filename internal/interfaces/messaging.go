package interfaces

import (
	"context"
	"time"
)

type EntityKind string

const (
	EntityOrder       EntityKind = "order"
	EntityReservation EntityKind = "reservation"
)

// RabbitMQ messages
type StatusUpdateMessage struct {
	Entity    EntityKind `json:"entity"`
	EntityID  int64      `json:"entity_id"`
	Reference string     `json:"reference"`
	CompanyID int64      `json:"company_id"`
	OldStatus string     `json:"old_status,omitempty"`
	NewStatus string     `json:"new_status"`
	ChangedBy *int64     `json:"changed_by,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Messaging interfaces (adapter/rabbitmq)
type MessagePublisher interface {
	PublishStatusUpdate(ctx context.Context, msg StatusUpdateMessage) error
}

type MessageConsumer interface {
	ConsumeNotifications(ctx context.Context, handler NotificationHandler) error
}

type NotificationHandler func(ctx context.Context, body []byte) error

// NopPublisher drops every message. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishStatusUpdate(context.Context, StatusUpdateMessage) error { return nil }
