package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/arkandha/go-cart-payments/internal/cart"
	kafkax "github.com/arkandha/go-cart-payments/internal/kafka"
	"github.com/arkandha/go-cart-payments/internal/money"
)

type CartReader interface {
	Lines(ctx context.Context, userID int64) ([]cart.PricedLine, error)
}

type OrderStore interface {
	Create(ctx context.Context, o *Order, items []OrderItem) error
	FindByPaymentID(ctx context.Context, paymentID string) (*Order, error)
	Settle(ctx context.Context, paymentID string, target Status) (*Order, bool, error)
	Items(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error)
}

type Gateway interface {
	CreateOrder(ctx context.Context, o GatewayOrder) (*GatewayResult, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// InitiationResult pairs the persisted order with the provider's raw
// response, which goes back to the client as-is.
type InitiationResult struct {
	Order *Order
	Raw   []byte
}

type Initiator struct {
	Carts    CartReader
	Orders   OrderStore
	Gateway  Gateway
	Producer Publisher
	Service  string

	Currency      string
	CustomerEmail string
	CustomerPhone string
}

// Initiate freezes the user's cart total, submits an order-create request to
// the provider, and persists a Pending order carrying the provider's payment
// id. A failed provider call leaves no order behind; the caller re-initiates.
func (s *Initiator) Initiate(ctx context.Context, userID int64) (*InitiationResult, error) {
	lines, err := s.Carts.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := cart.TotalCents(lines)
	if err != nil {
		return nil, err
	}

	// Opaque random reference: collision-safe under concurrent initiations
	// for the same user.
	ref := uuid.NewString()

	res, err := s.Gateway.CreateOrder(ctx, GatewayOrder{
		OrderID:       ref,
		OrderAmount:   money.String(total),
		OrderCurrency: s.Currency,
		CustomerEmail: s.CustomerEmail,
		CustomerPhone: s.CustomerPhone,
	})
	if err != nil {
		return nil, err
	}

	order := &Order{
		ID:         uuid.New(),
		UserID:     userID,
		TotalCents: total,
		Status:     StatusPending,
		PaymentID:  res.PaymentID,
		OrderRef:   ref,
	}
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderItem{
			OrderID:    order.ID,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			PriceCents: l.PriceCents,
		})
	}
	if err := s.Orders.Create(ctx, order, items); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if s.Producer != nil {
		ev := Envelope{
			EventID:       uuid.NewString(),
			EventType:     EventPaymentInitiated,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      s.Service,
			CorrelationID: order.ID.String(),
			Payload: kafkax.MustMarshal(PaymentInitiatedPayload{
				OrderID:     order.ID.String(),
				UserID:      userID,
				PaymentID:   order.PaymentID,
				AmountCents: total,
				Currency:    s.Currency,
			}),
		}
		s.Producer.Publish(PartitionKey(order.ID.String()), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(EventPaymentInitiated)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	return &InitiationResult{Order: order, Raw: res.Raw}, nil
}
