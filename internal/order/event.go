package order

import (
	"context"
	"time"
)

// StatusEvent is published whenever an order's status changes.
type StatusEvent struct {
	OrderID        string    `json:"orderId"`
	OwnerID        int       `json:"ownerId"`
	PreviousStatus Status    `json:"previousStatus,omitempty"`
	NewStatus      Status    `json:"newStatus"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Notifier hands events to the outbound email channel. Notify must not
// block on delivery; it reports whether the event was accepted.
type Notifier interface {
	Notify(ctx context.Context, ev StatusEvent) bool
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, StatusEvent) bool { return false }
