package catalog

import (
	"fmt"
	"strings"
)

// Product status values as shown on the UMKM product screen.
const (
	StatusActive  = "Aktif"
	StatusSoldOut = "Habis"
	StatusHidden  = "Disembunyikan"
)

// Store is a village micro-enterprise (UMKM) that sells on the marketplace.
type Store struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone,omitempty"`
	PaymentAccount string `json:"paymentAccount,omitempty"`
}

// CashOnDeliveryOnly reports whether the store accepts no bank transfers.
func (s Store) CashOnDeliveryOnly() bool {
	return strings.EqualFold(strings.TrimSpace(s.PaymentAccount), "COD ONLY")
}

// Product is a sellable item owned by a store.
type Product struct {
	ID          string `json:"id"`
	StoreID     string `json:"storeId"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
}

// Visible reports whether buyers may see the product at all.
func (p Product) Visible() bool {
	return p.Status != StatusHidden
}

// Entry is the read-only view of a product handed to the order protocol.
type Entry struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

// String renders the entry the way it is listed to the assistant.
func (e Entry) String() string {
	return fmt.Sprintf("- %s: Rp%d (Stok: %d)", e.Name, e.Price, e.Stock)
}

// Entries is a store-scoped catalog snapshot.
type Entries []Entry

// Lookup finds an entry by name, ignoring case and repeated whitespace.
func (es Entries) Lookup(name string) (Entry, bool) {
	key := NormalizeName(name)
	if key == "" {
		return Entry{}, false
	}
	for _, e := range es {
		if NormalizeName(e.Name) == key {
			return e, true
		}
	}
	return Entry{}, false
}

// NormalizeName folds case and collapses whitespace in a product name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// EntriesFrom converts products into a snapshot, dropping hidden ones.
// Sold-out products stay in the listing with zero stock.
func EntriesFrom(products []Product) Entries {
	entries := make(Entries, 0, len(products))
	for _, p := range products {
		if !p.Visible() {
			continue
		}
		stock := p.Stock
		if p.Status == StatusSoldOut || stock < 0 {
			stock = 0
		}
		entries = append(entries, Entry{Name: p.Name, Price: p.Price, Stock: stock})
	}
	return entries
}
