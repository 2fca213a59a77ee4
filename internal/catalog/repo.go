package catalog

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, name string, priceCents int64, stock int) (*Product, error) {
	p := Product{ID: uuid.New(), Name: name, PriceCents: priceCents, Stock: stock}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, price_cents, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.PriceCents, p.Stock,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, price_cents, stock, created_at, updated_at
		FROM products WHERE id=$1`, id,
	).Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, price_cents, stock, created_at, updated_at
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SettleStock decrements stock for every sold item inside one transaction,
// row-locking each product. A product with less stock than was sold is
// logged and left untouched rather than driven negative.
func (r *Repo) SettleStock(ctx context.Context, items map[uuid.UUID]int) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for id, qty := range items {
		var stock int
		err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, id).Scan(&stock)
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("settle stock: product %s no longer exists, skipping", id)
			continue
		}
		if err != nil {
			return err
		}
		if stock < qty {
			log.Printf("settle stock: product %s oversold (stock=%d sold=%d), skipping", id, stock, qty)
			continue
		}
		if _, err := tx.Exec(ctx, `
			UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`,
			id, qty,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
