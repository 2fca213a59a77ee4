package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrLineNotFound = errors.New("item not found in cart")

	// ErrProductUnknown covers both adding a product that does not exist and
	// a stale line whose product has since been deleted.
	ErrProductUnknown = errors.New("product not found")
)

type Repo struct{ DB *pgxpool.Pool }

// Add inserts a cart line, merging quantities when the (user, product) pair
// already has one. One row per pair; POST accumulates, PUT replaces.
func (r *Repo) Add(ctx context.Context, userID int64, productID uuid.UUID, quantity int) (*Line, error) {
	l := Line{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: quantity}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO cart_items(id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id, quantity, created_at, updated_at`,
		l.ID, l.UserID, l.ProductID, l.Quantity,
	).Scan(&l.ID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt)
	if isForeignKeyViolation(err) {
		return nil, ErrProductUnknown
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Lines returns the user's cart joined with product data. A LEFT JOIN keeps
// lines whose product has disappeared so callers can surface that instead of
// pricing them at zero.
func (r *Repo) Lines(ctx context.Context, userID int64) ([]PricedLine, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT ci.product_id, COALESCE(p.name, ''), COALESCE(p.price_cents, 0),
		       ci.quantity, p.id IS NOT NULL
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PricedLine
	for rows.Next() {
		var l PricedLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.PriceCents, &l.Quantity, &l.Known); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateQuantity replaces the quantity of an existing line. Absent pairs
// return ErrLineNotFound and leave storage unchanged.
func (r *Repo) UpdateQuantity(ctx context.Context, userID int64, productID uuid.UUID, quantity int) (*Line, error) {
	l := Line{UserID: userID, ProductID: productID}
	err := r.DB.QueryRow(ctx, `
		UPDATE cart_items SET quantity = $3, updated_at = now()
		WHERE user_id = $1 AND product_id = $2
		RETURNING id, quantity, created_at, updated_at`,
		userID, productID, quantity,
	).Scan(&l.ID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) Remove(ctx context.Context, userID int64, productID uuid.UUID) error {
	ct, err := r.DB.Exec(ctx, `
		DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
