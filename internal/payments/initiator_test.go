package payments

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arkandha/go-cart-payments/internal/cart"
)

func newInitiator(carts CartReader, orders OrderStore, gw Gateway, pub Publisher) *Initiator {
	return &Initiator{
		Carts:         carts,
		Orders:        orders,
		Gateway:       gw,
		Producer:      pub,
		Service:       "cart-api-test",
		Currency:      "INR",
		CustomerEmail: "user@example.com",
		CustomerPhone: "9876543210",
	}
}

func TestInitiateCreatesPendingOrder(t *testing.T) {
	pa, pb := uuid.New(), uuid.New()
	carts := &fakeCart{lines: []cart.PricedLine{
		{ProductID: pa, Name: "productA", PriceCents: 1000, Quantity: 2, Known: true},
		{ProductID: pb, Name: "productB", PriceCents: 550, Quantity: 1, Known: true},
	}}
	orders := newMemOrders()
	gw := &fakeGateway{res: &GatewayResult{PaymentID: "pay_123", Raw: []byte(`{"payment_id":"pay_123"}`)}}
	pub := &fakePublisher{}

	res, err := newInitiator(carts, orders, gw, pub).Initiate(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, []byte(`{"payment_id":"pay_123"}`), res.Raw)
	require.Equal(t, int64(2550), res.Order.TotalCents)
	require.Equal(t, StatusPending, res.Order.Status)
	require.Equal(t, "pay_123", res.Order.PaymentID)

	// the gateway saw the decimal rendering of the frozen total
	require.Len(t, gw.got, 1)
	require.Equal(t, "25.50", gw.got[0].OrderAmount)
	require.Equal(t, "INR", gw.got[0].OrderCurrency)
	require.NotEmpty(t, gw.got[0].OrderID)

	// persisted with the item snapshot
	stored := orders.get("pay_123")
	require.NotNil(t, stored)
	items, err := orders.Items(context.Background(), stored.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, 1, pub.count())
	var env Envelope
	require.NoError(t, json.Unmarshal(pub.values[0], &env))
	require.Equal(t, EventPaymentInitiated, env.EventType)
}

func TestInitiateEmptyCart(t *testing.T) {
	orders := newMemOrders()
	gw := &fakeGateway{res: &GatewayResult{PaymentID: "pay_0", Raw: []byte(`{"payment_id":"pay_0"}`)}}

	res, err := newInitiator(&fakeCart{}, orders, gw, nil).Initiate(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(0), res.Order.TotalCents)
	require.Equal(t, "0.00", gw.got[0].OrderAmount)
}

func TestInitiateUnknownProductSkipsGateway(t *testing.T) {
	carts := &fakeCart{lines: []cart.PricedLine{
		{ProductID: uuid.New(), Quantity: 1, Known: false},
	}}
	gw := &fakeGateway{}
	orders := newMemOrders()

	_, err := newInitiator(carts, orders, gw, nil).Initiate(context.Background(), 1)
	require.ErrorIs(t, err, cart.ErrProductUnknown)
	require.Empty(t, gw.got)
	require.Empty(t, orders.byPayment)
}

func TestInitiateGatewayFailureLeavesNoOrder(t *testing.T) {
	carts := &fakeCart{lines: []cart.PricedLine{
		{ProductID: uuid.New(), PriceCents: 100, Quantity: 1, Known: true},
	}}
	gw := &fakeGateway{err: ErrGatewayDeclined}
	orders := newMemOrders()
	pub := &fakePublisher{}

	_, err := newInitiator(carts, orders, gw, pub).Initiate(context.Background(), 1)
	require.ErrorIs(t, err, ErrGatewayDeclined)
	require.Empty(t, orders.byPayment)
	require.Zero(t, pub.count())
}

func TestInitiateDistinctReferences(t *testing.T) {
	carts := &fakeCart{lines: []cart.PricedLine{
		{ProductID: uuid.New(), PriceCents: 100, Quantity: 1, Known: true},
	}}
	orders := newMemOrders()

	refs := map[string]bool{}
	for i := 0; i < 10; i++ {
		gw := &fakeGateway{res: &GatewayResult{PaymentID: uuid.NewString(), Raw: []byte(`{}`)}}
		res, err := newInitiator(carts, orders, gw, nil).Initiate(context.Background(), 1)
		require.NoError(t, err)
		require.False(t, refs[res.Order.OrderRef], "order reference reused")
		refs[res.Order.OrderRef] = true
	}
}

func TestInitiatePersistFailurePropagates(t *testing.T) {
	carts := &fakeCart{lines: []cart.PricedLine{
		{ProductID: uuid.New(), PriceCents: 100, Quantity: 1, Known: true},
	}}
	orders := newMemOrders()
	orders.createErr = errors.New("db down")
	gw := &fakeGateway{res: &GatewayResult{PaymentID: "pay_x", Raw: []byte(`{}`)}}

	_, err := newInitiator(carts, orders, gw, nil).Initiate(context.Background(), 1)
	require.Error(t, err)
}
