package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/arkandha/go-cart-payments/internal/kafka"
	"github.com/arkandha/go-cart-payments/internal/redisx"
)

// webhookBody is the provider's status notification. Only the fields this
// system acts on are decoded; the signature covers the raw bytes regardless.
type webhookBody struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

type Reconciler struct {
	Secret   []byte
	Orders   OrderStore
	Redis    *redis.Client
	Producer Publisher
	Service  string
}

// Reconcile verifies an inbound status notification and settles the matching
// order. body must be the exact bytes the provider sent. Redelivery of an
// already-applied notification succeeds without touching anything.
func (r *Reconciler) Reconcile(ctx context.Context, body []byte, signature string) (*Order, error) {
	if err := VerifySignature(r.Secret, body, signature); err != nil {
		return nil, err
	}

	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}
	if wb.PaymentID == "" {
		return nil, fmt.Errorf("malformed webhook payload: missing payment_id")
	}

	// Case-sensitive match per the provider contract; anything that is not
	// exactly SUCCESS settles as FAILED.
	target := StatusFailed
	if wb.Status == string(StatusSuccess) {
		target = StatusSuccess
	}

	// Fast path for redelivered notifications. Best effort: a cold or
	// unreachable redis just falls through to the row-locked settle.
	dedupKey := fmt.Sprintf(redisx.KeyWebhookDedup, wb.PaymentID, target)
	if r.Redis != nil {
		if seen, err := redisx.Exists(ctx, r.Redis, dedupKey); err == nil && seen {
			return r.Orders.FindByPaymentID(ctx, wb.PaymentID)
		}
	}

	order, changed, err := r.Orders.Settle(ctx, wb.PaymentID, target)
	if err != nil {
		return nil, err
	}

	if r.Redis != nil {
		_ = r.Redis.Set(ctx, dedupKey, "1", redisx.TTLWebhookDedup).Err()
	}

	if changed && r.Producer != nil {
		// The settle already committed; a failed item read must not fail the
		// webhook, it only means the event carries no item list.
		items, err := r.Orders.Items(ctx, order.ID)
		if err != nil {
			items = nil
		}
		evItems := make([]ItemQty, 0, len(items))
		for _, it := range items {
			evItems = append(evItems, ItemQty{ProductID: it.ProductID.String(), Qty: it.Quantity})
		}
		ev := Envelope{
			EventID:       uuid.NewString(),
			EventType:     EventPaymentSettled,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      r.Service,
			CorrelationID: order.ID.String(),
			Payload: kafkax.MustMarshal(PaymentSettledPayload{
				OrderID:     order.ID.String(),
				UserID:      order.UserID,
				PaymentID:   order.PaymentID,
				FinalStatus: string(order.Status),
				AmountCents: order.TotalCents,
				Items:       evItems,
			}),
		}
		r.Producer.Publish(PartitionKey(order.ID.String()), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(EventPaymentSettled)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	return order, nil
}
