// Package notify hands notifications and domain events from committed state
// transitions to external channels. Delivery is asynchronous and best effort:
// a failed delivery is logged and never affects the transition that caused it.
package notify

import (
	"context"
	"time"
)

type Kind string

const (
	KindPurchaseConfirmation Kind = "purchase_confirmation"
	KindTransferRequest      Kind = "transfer_request"
	KindTransferAccepted     Kind = "transfer_accepted"
	KindTransferRejected     Kind = "transfer_rejected"
	KindTransferCancelled    Kind = "transfer_cancelled"
	KindTransferExpired      Kind = "transfer_expired"
)

// Notification is a message for one recipient, addressed by email.
type Notification struct {
	Recipient string            `json:"recipient"`
	Kind      Kind              `json:"kind"`
	Payload   map[string]string `json:"payload"`
}

type EventKind string

const (
	EventPurchaseCompleted EventKind = "purchase.completed"
	EventTransferRequested EventKind = "transfer.requested"
	EventTransferAccepted  EventKind = "transfer.accepted"
	EventTransferRejected  EventKind = "transfer.rejected"
	EventTransferCancelled EventKind = "transfer.cancelled"
	EventTransferExpired   EventKind = "transfer.expired"
)

type DomainEvent struct {
	Kind       EventKind         `json:"kind"`
	Payload    map[string]string `json:"payload"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type EventBus interface {
	Publish(ctx context.Context, e DomainEvent) error
}

// Sink accepts work without blocking the caller.
type Sink interface {
	Notify(n Notification)
	Publish(e DomainEvent)
}
