package order

import (
	"errors"
	"fmt"

	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
)

var (
	ErrUnknownItem       = errors.New("order item not in catalog")
	ErrInsufficientStock = errors.New("order quantity exceeds stock")
)

// Correction records a line whose proposed price was replaced by the
// catalog price.
type Correction struct {
	Name     string
	Proposed int64
	Catalog  int64
}

// Reconcile checks a decoded proposal against catalog truth. Item names are
// canonicalized, prices are taken from the catalog, and repeated lines for
// the same product are merged before the stock check. Items missing from the
// catalog or exceeding stock reject the whole proposal.
func Reconcile(p *chat.OrderProposal, entries catalog.Entries) (*chat.OrderProposal, []Correction, error) {
	if p == nil || len(p.Items) == 0 {
		return nil, nil, fmt.Errorf("%w: empty proposal", ErrMalformedPayload)
	}

	var corrections []Correction
	merged := make([]chat.LineItem, 0, len(p.Items))
	index := make(map[string]int, len(p.Items))

	for _, item := range p.Items {
		entry, ok := entries.Lookup(item.Name)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownItem, item.Name)
		}
		if item.UnitPrice != entry.Price {
			corrections = append(corrections, Correction{Name: entry.Name, Proposed: item.UnitPrice, Catalog: entry.Price})
		}

		if item.Quantity < 1 {
			return nil, nil, fmt.Errorf("%w: %q quantity %d", ErrMalformedPayload, item.Name, item.Quantity)
		}

		key := catalog.NormalizeName(entry.Name)
		i, seen := index[key]
		if !seen {
			i = len(merged)
			index[key] = i
			merged = append(merged, chat.LineItem{Name: entry.Name, UnitPrice: entry.Price})
		}
		// Compared against the remaining stock so the running sum never overflows.
		if item.Quantity > entry.Stock-merged[i].Quantity {
			return nil, nil, fmt.Errorf("%w: %q wants %d more, stock %d", ErrInsufficientStock, entry.Name, item.Quantity, entry.Stock)
		}
		merged[i].Quantity += item.Quantity
	}

	if _, ok := chat.CheckedSum(merged); !ok {
		return nil, nil, fmt.Errorf("%w: total out of range", ErrMalformedPayload)
	}
	return chat.NewOrderProposal(merged), corrections, nil
}
