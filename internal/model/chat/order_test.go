package chat

import (
	"math"
	"testing"
	"testing/quick"
)

func TestNewOrderProposalTotalMatchesLines(t *testing.T) {
	property := func(prices []uint16, qtys []uint8) bool {
		n := len(prices)
		if len(qtys) < n {
			n = len(qtys)
		}
		items := make([]LineItem, 0, n)
		var want int64
		for i := 0; i < n; i++ {
			item := LineItem{Name: "barang", UnitPrice: int64(prices[i]) * 100, Quantity: int(qtys[i]) + 1}
			want += item.UnitPrice * int64(item.Quantity)
			items = append(items, item)
		}
		p := NewOrderProposal(items)
		return p.Total == want && p.Consistent()
	}

	if err := quick.Check(property, nil); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderProposalCopiesLines(t *testing.T) {
	items := []LineItem{{Name: "Kopi Bubuk", UnitPrice: 25000, Quantity: 2}}
	p := NewOrderProposal(items)
	items[0].Quantity = 9

	if p.Items[0].Quantity != 2 || p.Total != 50000 {
		t.Fatalf("proposal mutated through caller slice: %+v", p)
	}
}

func TestConsistentDetectsTamperedTotal(t *testing.T) {
	p := NewOrderProposal([]LineItem{{Name: "Kopi Bubuk", UnitPrice: 25000, Quantity: 2}})
	p.Total = 10
	if p.Consistent() {
		t.Fatal("expected tampered total to be inconsistent")
	}
	var nilProposal *OrderProposal
	if nilProposal.Consistent() {
		t.Fatal("nil proposal is never consistent")
	}
}

func TestCheckedSumDetectsOverflow(t *testing.T) {
	if total, ok := CheckedSum([]LineItem{{UnitPrice: 25000, Quantity: 2}, {UnitPrice: 5000, Quantity: 1}}); !ok || total != 55000 {
		t.Fatalf("unexpected sum %d ok=%v", total, ok)
	}
	if _, ok := CheckedSum([]LineItem{{UnitPrice: math.MaxInt64 / 2, Quantity: 3}}); ok {
		t.Fatal("expected subtotal overflow")
	}
	if _, ok := CheckedSum([]LineItem{{UnitPrice: math.MaxInt64 / 2, Quantity: 1}, {UnitPrice: math.MaxInt64 / 2, Quantity: 1}, {UnitPrice: 2, Quantity: 1}}); ok {
		t.Fatal("expected running total overflow")
	}
	if _, ok := CheckedSum([]LineItem{{UnitPrice: 1, Quantity: -1}}); ok {
		t.Fatal("expected negative line rejected")
	}
}
