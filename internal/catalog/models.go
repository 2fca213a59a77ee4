package catalog

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID         uuid.UUID
	Name       string
	PriceCents int64
	Stock      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
