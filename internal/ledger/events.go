package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/supplysathi/marketplace/internal/logging"
)

const (
	EventOrderPlaced      = "order_placed"
	EventOrderConfirmed   = "order_confirmed"
	EventOrderRejected    = "order_rejected"
	EventOrderInTransit   = "order_in_transit"
	EventOrderDelivered   = "order_delivered"
	EventPaymentSucceeded = "payment_succeeded"
	EventPaymentFailed    = "payment_failed"
)

// EventPublisher is satisfied by mykafka.Producer. Publishing is
// best-effort: a nil publisher or a publish error never fails the
// operation that produced the event.
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event map[string]any) error
}

func (s *Service) publish(ctx context.Context, eventType string, orderID uuid.UUID, fields map[string]any) {
	if s.Events == nil {
		return
	}

	event := map[string]any{
		"event_id":    uuid.NewString(),
		"type":        eventType,
		"order_id":    orderID.String(),
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		event[k] = v
	}

	// key by order ID so every event of one order keeps its ordering
	if err := s.Events.PublishEvent(ctx, orderID.String(), event); err != nil {
		logging.FromContext(ctx).Error("event publish failed", "type", eventType, "order_id", orderID, "error", err)
	}
}
