package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
)

// Postgres serves the store catalog from the stores and products tables.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres wraps a pool. A nil logger discards repository logs.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) *Postgres {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Postgres{pool: pool, logger: logger}
}

// Stores lists every store ordered by name.
func (r *Postgres) Stores(ctx context.Context) ([]catalog.Store, error) {
	const q = `
SELECT id, name, phone, payment_account
FROM stores
ORDER BY name
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("catalog repo: list stores error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Store
	for rows.Next() {
		var s catalog.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.PaymentAccount); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("catalog repo: list stores rows error=%v", err)
		return nil, err
	}
	return result, nil
}

// FindStore returns one store or catalog.ErrStoreNotFound.
func (r *Postgres) FindStore(ctx context.Context, storeID string) (catalog.Store, error) {
	const q = `
SELECT id, name, phone, payment_account
FROM stores
WHERE id = $1
`
	var s catalog.Store
	err := r.pool.QueryRow(ctx, q, storeID).Scan(&s.ID, &s.Name, &s.Phone, &s.PaymentAccount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Store{}, fmt.Errorf("%w: %s", catalog.ErrStoreNotFound, storeID)
		}
		r.logger.Printf("catalog repo: get store id=%s error=%v", storeID, err)
		return catalog.Store{}, err
	}
	return s, nil
}

// Products lists the products of a store, hidden ones included; callers
// filter with catalog.EntriesFrom.
func (r *Postgres) Products(ctx context.Context, storeID string) ([]catalog.Product, error) {
	if _, err := r.FindStore(ctx, storeID); err != nil {
		return nil, err
	}

	const q = `
SELECT id, store_id, name, price, stock, category, status, COALESCE(description, '')
FROM products
WHERE store_id = $1
ORDER BY name
`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		r.logger.Printf("catalog repo: list products store_id=%s error=%v", storeID, err)
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.StoreID, &p.Name, &p.Price, &p.Stock, &p.Category, &p.Status, &p.Description); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("catalog repo: list products rows store_id=%s error=%v", storeID, err)
		return nil, err
	}
	r.logger.Printf("catalog repo: list products store_id=%s count=%d", storeID, len(result))
	return result, nil
}

// Seed upserts stores and products in one transaction.
func (r *Postgres) Seed(ctx context.Context, stores []catalog.Store, products []catalog.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx)

	const storeQ = `
INSERT INTO stores (id, name, phone, payment_account)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    phone = EXCLUDED.phone,
    payment_account = EXCLUDED.payment_account
`
	for _, s := range stores {
		if _, err := tx.Exec(ctx, storeQ, s.ID, s.Name, s.Phone, s.PaymentAccount); err != nil {
			return fmt.Errorf("upsert store %s: %w", s.ID, err)
		}
	}

	const productQ = `
INSERT INTO products (id, store_id, name, price, stock, category, status, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
ON CONFLICT (id) DO UPDATE SET
    store_id = EXCLUDED.store_id,
    name = EXCLUDED.name,
    price = EXCLUDED.price,
    stock = EXCLUDED.stock,
    category = EXCLUDED.category,
    status = EXCLUDED.status,
    description = EXCLUDED.description
`
	for _, p := range products {
		if _, err := tx.Exec(ctx, productQ, p.ID, p.StoreID, p.Name, p.Price, p.Stock, p.Category, p.Status, p.Description); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	r.logger.Printf("catalog repo: seeded stores=%d products=%d", len(stores), len(products))
	return nil
}
