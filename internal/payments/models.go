package payments

import (
	"time"

	"github.com/google/uuid"
)

// Order is this system's record of a payment attempt. TotalCents is frozen
// at initiation time and never recomputed from the cart afterwards.
type Order struct {
	ID         uuid.UUID
	UserID     int64
	TotalCents int64
	Status     Status
	PaymentID  string // assigned by the provider
	OrderRef   string // opaque reference we hand to the provider
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem snapshots a cart line (with its price at purchase time) onto the
// order so later settlement does not depend on the live cart or catalog.
type OrderItem struct {
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
	PriceCents int64
}
