package catalog

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/curugbadak/pasar-desa/backend/internal/migrate"
	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
)

func TestPostgresSeedAndSnapshot(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	if err := repo.Seed(ctx, catalog.SeedStores(), catalog.SeedProducts()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	// Seeding twice is an upsert.
	if err := repo.Seed(ctx, catalog.SeedStores(), catalog.SeedProducts()); err != nil {
		t.Fatalf("Seed again: %v", err)
	}

	stores, err := repo.Stores(ctx)
	if err != nil {
		t.Fatalf("Stores: %v", err)
	}
	if len(stores) != len(catalog.SeedStores()) {
		t.Fatalf("expected %d stores, got %d", len(catalog.SeedStores()), len(stores))
	}

	entries, err := catalog.Snapshot(ctx, repo, "kopi-curug")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	entry, ok := entries.Lookup("kopi bubuk robusta")
	if !ok || entry.Price != 25000 || entry.Stock != 20 {
		t.Fatalf("unexpected entry %+v ok=%v", entry, ok)
	}

	if _, err := repo.FindStore(ctx, "missing"); !errors.Is(err, catalog.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
	if _, err := repo.Products(ctx, "missing"); !errors.Is(err, catalog.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound for products, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE products, stores CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
