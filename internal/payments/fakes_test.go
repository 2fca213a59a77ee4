package payments

import (
	"context"
	"sync"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/arkandha/go-cart-payments/internal/cart"
)

type fakeCart struct {
	lines []cart.PricedLine
	err   error
}

func (f *fakeCart) Lines(ctx context.Context, userID int64) ([]cart.PricedLine, error) {
	return f.lines, f.err
}

// memOrders mimics the Postgres repo's settle semantics in memory.
type memOrders struct {
	mu        sync.Mutex
	byPayment map[string]*Order
	items     map[uuid.UUID][]OrderItem
	createErr error
}

func newMemOrders() *memOrders {
	return &memOrders{
		byPayment: map[string]*Order{},
		items:     map[uuid.UUID][]OrderItem{},
	}
}

func (m *memOrders) Create(ctx context.Context, o *Order, items []OrderItem) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.byPayment[o.PaymentID] = &cp
	m.items[o.ID] = items
	return nil
}

func (m *memOrders) FindByPaymentID(ctx context.Context, paymentID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byPayment[paymentID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) Settle(ctx context.Context, paymentID string, target Status) (*Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byPayment[paymentID]
	if !ok {
		return nil, false, ErrOrderNotFound
	}
	if o.Status == target {
		cp := *o
		return &cp, false, nil
	}
	if !CanTransition(o.Status, target) {
		return nil, false, ErrAlreadySettled
	}
	o.Status = target
	cp := *o
	return &cp, true, nil
}

func (m *memOrders) Items(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[orderID], nil
}

func (m *memOrders) get(paymentID string) *Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byPayment[paymentID]
}

type fakeGateway struct {
	res *GatewayResult
	err error
	got []GatewayOrder
}

func (f *fakeGateway) CreateOrder(ctx context.Context, o GatewayOrder) (*GatewayResult, error) {
	f.got = append(f.got, o)
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	values [][]byte
}

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = append(f.values, value)
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.values)
}
