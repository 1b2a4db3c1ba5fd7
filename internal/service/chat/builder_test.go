package chat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
	"github.com/curugbadak/pasar-desa/backend/internal/service/ai"
)

func makeHistory(n int) []chat.Turn {
	turns := make([]chat.Turn, 0, n)
	for i := 0; i < n; i++ {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleAssistant
		}
		turns = append(turns, chat.Turn{Role: role, Text: fmt.Sprintf("turn-%d", i)})
	}
	return turns
}

func TestBuildNeverExceedsWindow(t *testing.T) {
	b := NewContextBuilder(10)
	p := seedPersona(t, "penjual")

	for _, n := range []int{0, 1, 9, 10, 11, 40} {
		req := b.Build(p, nil, nil, makeHistory(n), chat.Turn{Role: chat.RoleUser, Text: "latest"})
		want := n
		if want > 10 {
			want = 10
		}
		if len(req.History) != want {
			t.Fatalf("history %d: expected %d turns, got %d", n, want, len(req.History))
		}
		if n > 0 && req.History[len(req.History)-1].Text != fmt.Sprintf("turn-%d", n-1) {
			t.Fatalf("history %d: window must keep the most recent turns", n)
		}
	}
}

func TestBuildSubstitutesAttachmentsAndSkipsFallbacks(t *testing.T) {
	b := NewContextBuilder(10)
	history := []chat.Turn{
		{Role: chat.RoleAssistant, Text: "Halo kak!"},
		{Role: chat.RoleUser, Text: ProofPlaceholder, Attachment: true},
		{Role: chat.RoleAssistant, Text: "Waduh, sinyal lagi jelek", Fallback: true},
	}

	req := b.Build(seedPersona(t, "penjual"), nil, nil, history, chat.Turn{Role: chat.RoleUser, Text: ProofPlaceholder, Attachment: true})

	if len(req.History) != 2 {
		t.Fatalf("expected fallback turn dropped, got %+v", req.History)
	}
	if req.History[1].Text != ai.ProofSentinel {
		t.Fatalf("attachment placeholder sent literally: %q", req.History[1].Text)
	}
	if req.Message != ai.ProofSentinel {
		t.Fatalf("latest proof turn not substituted: %q", req.Message)
	}
	if history[1].Text != ProofPlaceholder {
		t.Fatal("Build must not modify the caller's turns")
	}
}

func TestBuildRendersCatalogAndInstruction(t *testing.T) {
	b := NewContextBuilder(0)
	if b.Window != DefaultHistoryWindow {
		t.Fatalf("expected default window, got %d", b.Window)
	}

	store := catalog.Store{ID: "kopi", Name: "Kopi Curug", PaymentAccount: "MANDIRI 1111-2222-33"}
	entries := catalog.Entries{{Name: "Kopi Bubuk", Price: 25000, Stock: 20}, {Name: "Jahe Merah", Price: 20000, Stock: 0}}

	req := b.Build(seedPersona(t, "penjual"), &store, entries, nil, chat.Turn{Role: chat.RoleUser, Text: "saya mau beli kopi 2"})

	if req.CatalogText != "- Kopi Bubuk: Rp25000 (Stok: 20)\n- Jahe Merah: Rp20000 (Stok: 0)" {
		t.Fatalf("unexpected catalog text %q", req.CatalogText)
	}
	if !strings.Contains(req.Instruction, "Kopi Curug") || !strings.Contains(req.Instruction, "memesan") {
		t.Fatalf("instruction missing store or purchase hint:\n%s", req.Instruction)
	}
}
