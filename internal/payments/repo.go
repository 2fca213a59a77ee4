package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrAlreadySettled = errors.New("order already settled")
)

type Repo struct{ DB *pgxpool.Pool }

// Create persists the order and its item snapshot atomically.
func (r *Repo) Create(ctx context.Context, o *Order, items []OrderItem) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, total_cents, payment_status, payment_id, order_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.TotalCents, o.Status, o.PaymentID, o.OrderRef,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4)`,
			o.ID, it.ProductID, it.Quantity, it.PriceCents,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repo) FindByPaymentID(ctx context.Context, paymentID string) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, total_cents, payment_status, payment_id, order_ref, created_at, updated_at
		FROM orders WHERE payment_id=$1`, paymentID,
	).Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Status, &o.PaymentID, &o.OrderRef, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Settle moves the order identified by the provider's payment id to target.
// The row is locked for the duration of the check-then-update so concurrent
// deliveries serialize. Re-applying the status an order already has is a
// no-op (changed=false); flipping between terminal states is rejected.
func (r *Repo) Settle(ctx context.Context, paymentID string, target Status) (*Order, bool, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	var o Order
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, total_cents, payment_status, payment_id, order_ref, created_at, updated_at
		FROM orders WHERE payment_id=$1 FOR UPDATE`, paymentID,
	).Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Status, &o.PaymentID, &o.OrderRef, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, ErrOrderNotFound
	}
	if err != nil {
		return nil, false, err
	}

	if o.Status == target {
		return &o, false, nil
	}
	if !CanTransition(o.Status, target) {
		return nil, false, ErrAlreadySettled
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET payment_status=$2, updated_at=now() WHERE id=$1`,
		o.ID, target,
	); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	o.Status = target
	return &o, true, nil
}

func (r *Repo) Items(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT order_id, product_id, quantity, price_cents
		FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.OrderID, &it.ProductID, &it.Quantity, &it.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
