package order

import (
	"errors"
	"math"
	"testing"

	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
)

var kopiCatalog = catalog.Entries{
	{Name: "Kopi Bubuk", Price: 25000, Stock: 20},
	{Name: "Jahe Merah Instan", Price: 20000, Stock: 3},
}

func TestReconcileUsesCatalogPrices(t *testing.T) {
	proposed := chat.NewOrderProposal([]chat.LineItem{{Name: "kopi bubuk", UnitPrice: 1000, Quantity: 2}})

	got, corrections, err := Reconcile(proposed, kopiCatalog)
	if err != nil {
		t.Fatalf("Reconcile err: %v", err)
	}
	if got.Total != 50000 || got.Items[0].Name != "Kopi Bubuk" {
		t.Fatalf("unexpected reconciled proposal %+v", got)
	}
	if len(corrections) != 1 || corrections[0].Proposed != 1000 || corrections[0].Catalog != 25000 {
		t.Fatalf("unexpected corrections %+v", corrections)
	}
}

func TestReconcileMergesRepeatedLines(t *testing.T) {
	proposed := chat.NewOrderProposal([]chat.LineItem{
		{Name: "Jahe Merah Instan", UnitPrice: 20000, Quantity: 2},
		{Name: "JAHE MERAH INSTAN", UnitPrice: 20000, Quantity: 2},
	})

	if _, _, err := Reconcile(proposed, kopiCatalog); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected merged quantity to exceed stock, got %v", err)
	}
}

func TestReconcileRejectsUnknownItem(t *testing.T) {
	proposed := chat.NewOrderProposal([]chat.LineItem{{Name: "Emas Batangan", UnitPrice: 1, Quantity: 1}})

	if _, _, err := Reconcile(proposed, kopiCatalog); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
}

func TestReconcileRejectsEmptyProposal(t *testing.T) {
	if _, _, err := Reconcile(nil, kopiCatalog); err == nil {
		t.Fatal("expected error for nil proposal")
	}
}

func TestExtractAndReconcileNeverCommitNegativeCart(t *testing.T) {
	raw := StartMarker + `[{"name":"Kopi Bubuk","qty":9223372036854775807,"price":25000},` +
		`{"name":"kopi bubuk","qty":9223372036854775807,"price":25000}]` + EndMarker

	got := Extract(raw)
	if got.Proposal != nil {
		p, _, err := Reconcile(got.Proposal, kopiCatalog)
		t.Fatalf("expected rejection, got proposal=%+v err=%v", p, err)
	}
	if !errors.Is(got.Err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", got.Err)
	}
}

func TestReconcileChecksEachLineAgainstStock(t *testing.T) {
	proposed := &chat.OrderProposal{Items: []chat.LineItem{
		{Name: "Kopi Bubuk", UnitPrice: 25000, Quantity: math.MaxInt},
		{Name: "Kopi Bubuk", UnitPrice: 25000, Quantity: math.MaxInt},
	}}

	if _, _, err := Reconcile(proposed, kopiCatalog); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestReconcileRejectsNonPositiveQuantity(t *testing.T) {
	proposed := &chat.OrderProposal{Items: []chat.LineItem{
		{Name: "Kopi Bubuk", UnitPrice: 25000, Quantity: 3},
		{Name: "Kopi Bubuk", UnitPrice: 25000, Quantity: -2},
	}}

	if _, _, err := Reconcile(proposed, kopiCatalog); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestReconcileRejectsTotalOverflow(t *testing.T) {
	huge := catalog.Entries{{Name: "Tanah Kas Desa", Price: 1 << 62, Stock: 10}}
	proposed := chat.NewOrderProposal([]chat.LineItem{{Name: "Tanah Kas Desa", UnitPrice: 1, Quantity: 4}})

	if _, _, err := Reconcile(proposed, huge); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}
