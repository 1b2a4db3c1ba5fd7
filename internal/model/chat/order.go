package chat

import "math"

// LineItem is one priced row of an order proposal. Prices are whole rupiah.
type LineItem struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// Subtotal returns unit price times quantity.
func (l LineItem) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// CheckedSubtotal is Subtotal that reports false when the line is negative
// or the product does not fit in int64.
func (l LineItem) CheckedSubtotal() (int64, bool) {
	if l.UnitPrice < 0 || l.Quantity < 0 {
		return 0, false
	}
	if l.Quantity != 0 && l.UnitPrice > math.MaxInt64/int64(l.Quantity) {
		return 0, false
	}
	return l.Subtotal(), true
}

// OrderProposal is a candidate purchase extracted from an assistant turn.
// Build it with NewOrderProposal so the total always matches the lines.
type OrderProposal struct {
	Items []LineItem `json:"items"`
	Total int64      `json:"total"`
}

// NewOrderProposal copies the lines and computes the total from them.
func NewOrderProposal(items []LineItem) *OrderProposal {
	copied := append([]LineItem(nil), items...)
	return &OrderProposal{Items: copied, Total: SumLines(copied)}
}

// SumLines adds up the subtotals of the given lines.
func SumLines(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// CheckedSum is SumLines that reports false when any line or the running
// total overflows.
func CheckedSum(items []LineItem) (int64, bool) {
	var total int64
	for _, item := range items {
		sub, ok := item.CheckedSubtotal()
		if !ok || total > math.MaxInt64-sub {
			return 0, false
		}
		total += sub
	}
	return total, true
}

// Consistent reports whether the stored total equals the sum of the lines.
func (p *OrderProposal) Consistent() bool {
	return p != nil && p.Total == SumLines(p.Items)
}
