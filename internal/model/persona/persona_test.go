package persona

import "testing"

func TestSeedHasOneAssistantPerKind(t *testing.T) {
	store := NewMemoryStore(Seed())

	seller, ok := store.FindByID("penjual")
	if !ok {
		t.Fatal("expected seller persona")
	}
	if !seller.Commerce() {
		t.Fatal("seller persona must run the order protocol")
	}
	if seller.Acknowledgment == "" || seller.FallbackText == "" {
		t.Fatal("seller persona needs fixed acknowledgment and fallback texts")
	}

	helpdesk, ok := store.FindByID("asisten-desa")
	if !ok {
		t.Fatal("expected helpdesk persona")
	}
	if helpdesk.Commerce() {
		t.Fatal("helpdesk persona must not propose orders")
	}
}

func TestGreetingForFillsStoreName(t *testing.T) {
	p := Persona{Greeting: "Selamat datang di {store}!"}
	if got := p.GreetingFor("Kopi Curug"); got != "Selamat datang di Kopi Curug!" {
		t.Fatalf("unexpected greeting %q", got)
	}
}

func TestMemoryStoreListByKindAndLookup(t *testing.T) {
	store := NewMemoryStore(Seed())

	sellers := store.ListByKind(KindStore)
	if len(sellers) != 1 || sellers[0].ID != "penjual" {
		t.Fatalf("unexpected store assistants %+v", sellers)
	}
	helpdesks := store.ListByKind(KindHelpdesk)
	if len(helpdesks) != 1 || helpdesks[0].ID != "asisten-desa" {
		t.Fatalf("unexpected helpdesk assistants %+v", helpdesks)
	}
	if got := store.ListByKind("lainnya"); len(got) != 0 {
		t.Fatalf("unknown kind should list nothing, got %+v", got)
	}

	if p, ok := store.FindByID("  Penjual "); !ok || p.ID != "penjual" {
		t.Fatalf("expected case-insensitive lookup, got %+v ok=%v", p, ok)
	}
}

func TestMemoryStoreDuplicateIDReplaces(t *testing.T) {
	store := NewMemoryStore([]Persona{
		{ID: "penjual", Name: "Lama", Kind: KindStore},
		{ID: "PENJUAL", Name: "Baru", Kind: KindStore},
	})

	if got := store.List(); len(got) != 1 || got[0].Name != "Baru" {
		t.Fatalf("expected the later entry to win, got %+v", got)
	}
}
