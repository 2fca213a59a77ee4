package httpx

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/arkandha/go-cart-payments/internal/cart"
	"github.com/arkandha/go-cart-payments/internal/catalog"
	"github.com/arkandha/go-cart-payments/internal/payments"
)

// memStore is an in-memory catalog + cart used by handler tests. It honours
// the same contracts as the pgx repos: one line per (user, product), adds
// merge quantities, absent pairs report cart.ErrLineNotFound.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product
	lines    map[int64]map[uuid.UUID]*cart.Line
}

func newMemStore() *memStore {
	return &memStore{
		products: map[uuid.UUID]catalog.Product{},
		lines:    map[int64]map[uuid.UUID]*cart.Line{},
	}
}

func (m *memStore) Create(ctx context.Context, name string, priceCents int64, stock int) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := catalog.Product{ID: uuid.New(), Name: name, PriceCents: priceCents, Stock: stock}
	m.products[p.ID] = p
	return &p, nil
}

func (m *memStore) List(ctx context.Context) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) Add(ctx context.Context, userID int64, productID uuid.UUID, quantity int) (*cart.Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[productID]; !ok {
		return nil, cart.ErrProductUnknown
	}
	if m.lines[userID] == nil {
		m.lines[userID] = map[uuid.UUID]*cart.Line{}
	}
	if l, ok := m.lines[userID][productID]; ok {
		l.Quantity += quantity
		cp := *l
		return &cp, nil
	}
	l := &cart.Line{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: quantity}
	m.lines[userID][productID] = l
	cp := *l
	return &cp, nil
}

func (m *memStore) Lines(ctx context.Context, userID int64) ([]cart.PricedLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []cart.PricedLine
	for pid, l := range m.lines[userID] {
		p, ok := m.products[pid]
		out = append(out, cart.PricedLine{
			ProductID:  pid,
			Name:       p.Name,
			PriceCents: p.PriceCents,
			Quantity:   l.Quantity,
			Known:      ok,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) UpdateQuantity(ctx context.Context, userID int64, productID uuid.UUID, quantity int) (*cart.Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lines[userID][productID]
	if !ok {
		return nil, cart.ErrLineNotFound
	}
	l.Quantity = quantity
	cp := *l
	return &cp, nil
}

func (m *memStore) Remove(ctx context.Context, userID int64, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lines[userID][productID]; !ok {
		return cart.ErrLineNotFound
	}
	delete(m.lines[userID], productID)
	return nil
}

// memOrders backs the payments Initiator/Reconciler in handler tests.
type memOrders struct {
	mu        sync.Mutex
	byPayment map[string]*payments.Order
	items     map[uuid.UUID][]payments.OrderItem
}

func newMemOrders() *memOrders {
	return &memOrders{
		byPayment: map[string]*payments.Order{},
		items:     map[uuid.UUID][]payments.OrderItem{},
	}
}

func (m *memOrders) Create(ctx context.Context, o *payments.Order, items []payments.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.byPayment[o.PaymentID] = &cp
	m.items[o.ID] = items
	return nil
}

func (m *memOrders) FindByPaymentID(ctx context.Context, paymentID string) (*payments.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byPayment[paymentID]
	if !ok {
		return nil, payments.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) Settle(ctx context.Context, paymentID string, target payments.Status) (*payments.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byPayment[paymentID]
	if !ok {
		return nil, false, payments.ErrOrderNotFound
	}
	if o.Status == target {
		cp := *o
		return &cp, false, nil
	}
	if !payments.CanTransition(o.Status, target) {
		return nil, false, payments.ErrAlreadySettled
	}
	o.Status = target
	cp := *o
	return &cp, true, nil
}

func (m *memOrders) Items(ctx context.Context, orderID uuid.UUID) ([]payments.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[orderID], nil
}

func (m *memOrders) get(paymentID string) *payments.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byPayment[paymentID]
}
