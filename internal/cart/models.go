package cart

import (
	"time"

	"github.com/google/uuid"
)

type Line struct {
	ID        uuid.UUID
	UserID    int64
	ProductID uuid.UUID
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PricedLine is a cart line joined with its product. Known is false when the
// referenced product no longer exists.
type PricedLine struct {
	ProductID  uuid.UUID
	Name       string
	PriceCents int64
	Quantity   int
	Known      bool
}
