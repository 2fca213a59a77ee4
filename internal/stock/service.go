// Package stock consumes payment.settled events and applies sold quantities
// to the catalog once an order's payment has actually succeeded.
package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/arkandha/go-cart-payments/internal/payments"
	"github.com/arkandha/go-cart-payments/internal/redisx"
)

type CatalogStore interface {
	SettleStock(ctx context.Context, items map[uuid.UUID]int) error
}

type Service struct {
	Catalog CatalogStore
	Redis   *redis.Client
	Name    string
}

// HandlePaymentSettled runs as a kafka consumer handler. Failed settlements
// carry no stock impact and are skipped; successful ones decrement stock for
// every snapshotted order item.
func (s *Service) HandlePaymentSettled(ctx context.Context, m kafkago.Message) error {
	var env payments.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != payments.EventPaymentSettled {
		return nil
	}

	// event-id dedup so a redelivered message never double-decrements
	dkey := fmt.Sprintf(redisx.KeyDedup, s.Name, env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}

	var p payments.PaymentSettledPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return err
	}
	if p.FinalStatus != string(payments.StatusSuccess) {
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
		return nil
	}

	items := make(map[uuid.UUID]int, len(p.Items))
	for _, it := range p.Items {
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			log.Printf("stock: bad product id %q in event %s", it.ProductID, env.EventID)
			continue
		}
		items[id] += it.Qty
	}
	if len(items) == 0 {
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
		return nil
	}

	if err := s.Catalog.SettleStock(ctx, items); err != nil {
		return err
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	log.Printf("stock settled for order %s (%d products)", p.OrderID, len(items))
	return nil
}
