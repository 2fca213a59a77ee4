package payments

import (
	"encoding/json"
	"time"
)

const (
	TopicPaymentInitiated = "payment.initiated"
	TopicPaymentSettled   = "payment.settled"
)

const (
	EventPaymentInitiated = "PaymentInitiated"
	EventPaymentSettled   = "PaymentSettled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type PaymentInitiatedPayload struct {
	OrderID     string `json:"order_id"`
	UserID      int64  `json:"user_id"`
	PaymentID   string `json:"payment_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

type PaymentSettledPayload struct {
	OrderID     string    `json:"order_id"`
	UserID      int64     `json:"user_id"`
	PaymentID   string    `json:"payment_id"`
	FinalStatus string    `json:"final_status"` // SUCCESS | FAILED
	AmountCents int64     `json:"amount_cents"`
	Items       []ItemQty `json:"items,omitempty"`
}

// PartitionKey keeps every event for one order on the same partition.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
