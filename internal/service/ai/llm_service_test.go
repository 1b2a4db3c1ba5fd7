package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/curugbadak/pasar-desa/backend/internal/config"
	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
)

type fakeChatModel struct {
	reply     string
	chunks    []string
	err       error
	lastInput []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	msgs := make([]*schema.Message, 0, len(f.chunks))
	for _, c := range f.chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

func newTestService(t *testing.T, fake *fakeChatModel, stream bool) *Service {
	t.Helper()
	svc, err := NewServiceWithModel(context.Background(), fake, config.AIConfig{StreamResponse: stream})
	if err != nil {
		t.Fatalf("NewServiceWithModel err: %v", err)
	}
	return svc
}

func sampleRequest() chat.CompletionRequest {
	return chat.CompletionRequest{
		Instruction: "Anda adalah penjual di Kopi Curug.",
		CatalogText: "- Kopi Bubuk Robusta: Rp25000 (Stok: 20)",
		History: []chat.Turn{
			{Role: chat.RoleAssistant, Text: "Halo kak!"},
			{Role: chat.RoleUser, Text: "ada kopi?"},
		},
		Message: "beli 2 kopi",
	}
}

func TestCompleteBuildsPromptFromRequest(t *testing.T) {
	fake := &fakeChatModel{reply: "Siap kak"}
	svc := newTestService(t, fake, false)

	got, err := svc.Complete(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if got != "Siap kak" {
		t.Fatalf("unexpected reply %q", got)
	}

	if len(fake.lastInput) != 4 {
		t.Fatalf("expected system + 2 history + user, got %d messages", len(fake.lastInput))
	}
	system := fake.lastInput[0]
	if system.Role != schema.System || !strings.Contains(system.Content, "DATA PRODUK:\n- Kopi Bubuk Robusta") {
		t.Fatalf("unexpected system message %+v", system)
	}
	if fake.lastInput[1].Role != schema.Assistant || fake.lastInput[2].Role != schema.User {
		t.Fatalf("history roles not preserved: %s, %s", fake.lastInput[1].Role, fake.lastInput[2].Role)
	}
	if last := fake.lastInput[3]; last.Role != schema.User || last.Content != "beli 2 kopi" {
		t.Fatalf("unexpected user message %+v", last)
	}
}

func TestCompleteWrapsProviderError(t *testing.T) {
	boom := errors.New("dial tcp: timeout")
	svc := newTestService(t, &fakeChatModel{err: boom}, false)

	_, err := svc.Complete(context.Background(), sampleRequest())
	if !errors.Is(err, ErrCompletion) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped completion error, got %v", err)
	}
}

func TestCompleteRejectsEmptyReply(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{reply: "  "}, false)

	_, err := svc.Complete(context.Background(), sampleRequest())
	if !errors.Is(err, ErrEmptyCompletion) || !errors.Is(err, ErrCompletion) {
		t.Fatalf("expected empty completion error, got %v", err)
	}
}

func TestCompleteStreamRelaysDeltas(t *testing.T) {
	fake := &fakeChatModel{chunks: []string{"Siap ", "kak, ", "ditunggu"}}
	svc := newTestService(t, fake, true)

	var deltas []string
	got, err := svc.CompleteStream(context.Background(), sampleRequest(), func(d string) {
		deltas = append(deltas, d)
	})
	if err != nil {
		t.Fatalf("CompleteStream err: %v", err)
	}
	if got != "Siap kak, ditunggu" {
		t.Fatalf("unexpected concatenated reply %q", got)
	}
	if len(deltas) != 3 {
		t.Fatalf("expected 3 deltas, got %v", deltas)
	}
}

func TestCompleteStreamFallsBackWhenDisabled(t *testing.T) {
	fake := &fakeChatModel{reply: "utuh", chunks: []string{"pot", "ongan"}}
	svc := newTestService(t, fake, false)

	called := false
	got, err := svc.CompleteStream(context.Background(), sampleRequest(), func(string) { called = true })
	if err != nil {
		t.Fatalf("CompleteStream err: %v", err)
	}
	if got != "utuh" || called {
		t.Fatalf("expected non-streaming path, got %q called=%v", got, called)
	}
}

func TestHistoryOmittedWhenEmpty(t *testing.T) {
	fake := &fakeChatModel{reply: "Halo"}
	svc := newTestService(t, fake, false)

	req := chat.CompletionRequest{Instruction: "helpdesk", Message: "halo"}
	if _, err := svc.Complete(context.Background(), req); err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if len(fake.lastInput) != 2 {
		t.Fatalf("expected system + user only, got %d", len(fake.lastInput))
	}
	if fake.lastInput[0].Content != "helpdesk" {
		t.Fatalf("catalog section must be omitted without entries, got %q", fake.lastInput[0].Content)
	}
}
