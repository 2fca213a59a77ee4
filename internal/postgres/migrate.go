package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent so every service binary can run this at startup.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id          UUID PRIMARY KEY,
			name        TEXT NOT NULL,
			price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
			stock       INT NOT NULL CHECK (stock >= 0),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			id         UUID PRIMARY KEY,
			user_id    BIGINT NOT NULL,
			product_id UUID NOT NULL REFERENCES products(id),
			quantity   INT NOT NULL CHECK (quantity > 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id             UUID PRIMARY KEY,
			user_id        BIGINT NOT NULL,
			total_cents    BIGINT NOT NULL CHECK (total_cents >= 0),
			payment_status TEXT NOT NULL DEFAULT 'Pending',
			payment_id     TEXT NOT NULL UNIQUE,
			order_ref      TEXT NOT NULL UNIQUE,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id    UUID NOT NULL REFERENCES orders(id),
			product_id  UUID NOT NULL,
			quantity    INT NOT NULL,
			price_cents BIGINT NOT NULL,
			PRIMARY KEY (order_id, product_id)
		)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
