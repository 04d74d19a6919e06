package event

import (
	"context"
	"encoding/json"
	"time"
)

const (
	OrderCreated   = "order.created"
	OrderPaid      = "order.paid"
	OrderCancelled = "order.cancelled"
	OrderCompleted = "order.completed"
	ReturnUpdated  = "return.updated"

	Version = 1
	Source  = "zawawiya-store"
)

type Envelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	EventVersion  int             `json:"eventVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderPayload struct {
	OrderID       uint   `json:"orderId"`
	UserID        uint   `json:"userId"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	Total         int64  `json:"total"`
}

type ReturnPayload struct {
	ReturnID uint   `json:"returnId"`
	OrderID  uint   `json:"orderId"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
}

// Publisher hands domain events to the outside world. Implementations must
// not block the caller on broker availability.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any)
}

type Noop struct{}

func (Noop) Publish(context.Context, string, string, any) {}

type correlationKey struct{}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
