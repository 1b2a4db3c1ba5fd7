package catalog

import (
	"context"
	"errors"
)

// ErrStoreNotFound is returned when a store id is unknown.
var ErrStoreNotFound = errors.New("store not found")

// Provider exposes read-only catalog data scoped by store.
type Provider interface {
	Stores(ctx context.Context) ([]Store, error)
	FindStore(ctx context.Context, storeID string) (Store, error)
	Products(ctx context.Context, storeID string) ([]Product, error)
}

// Snapshot loads the protocol view of a store's catalog.
func Snapshot(ctx context.Context, p Provider, storeID string) (Entries, error) {
	products, err := p.Products(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return EntriesFrom(products), nil
}

// MemoryProvider implements Provider with in-memory slices, suitable for the
// seeded village marketplace.
type MemoryProvider struct {
	stores   []Store
	products []Product
}

// NewMemoryProvider returns a MemoryProvider preloaded with the supplied data.
func NewMemoryProvider(stores []Store, products []Product) *MemoryProvider {
	return &MemoryProvider{
		stores:   append([]Store(nil), stores...),
		products: append([]Product(nil), products...),
	}
}

// Stores returns every registered store.
func (m *MemoryProvider) Stores(_ context.Context) ([]Store, error) {
	return append([]Store(nil), m.stores...), nil
}

// FindStore looks up a store by identifier.
func (m *MemoryProvider) FindStore(_ context.Context, storeID string) (Store, error) {
	for _, s := range m.stores {
		if s.ID == storeID {
			return s, nil
		}
	}
	return Store{}, ErrStoreNotFound
}

// Products returns the store's products in seed order.
func (m *MemoryProvider) Products(ctx context.Context, storeID string) ([]Product, error) {
	if _, err := m.FindStore(ctx, storeID); err != nil {
		return nil, err
	}
	out := make([]Product, 0, 4)
	for _, p := range m.products {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}
