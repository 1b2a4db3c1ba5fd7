package chat

import (
	"strings"

	"github.com/curugbadak/pasar-desa/backend/internal/analysis/intent"
	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
	"github.com/curugbadak/pasar-desa/backend/internal/model/persona"
	"github.com/curugbadak/pasar-desa/backend/internal/service/ai"
)

// DefaultHistoryWindow is the number of prior turns sent with each request.
const DefaultHistoryWindow = 10

// ContextBuilder assembles the bounded input of one completion call.
type ContextBuilder struct {
	Window  int
	Prompts *ai.PersonaPromptManager
}

// NewContextBuilder returns a builder with the given window; values below 1
// fall back to DefaultHistoryWindow.
func NewContextBuilder(window int) *ContextBuilder {
	if window < 1 {
		window = DefaultHistoryWindow
	}
	return &ContextBuilder{Window: window, Prompts: ai.NewPersonaPromptManager()}
}

// Build renders the instruction and catalog and keeps at most Window turns
// of history before latest. Fallback turns are left out. Attachment turns
// are replaced by the proof sentinel.
func (b *ContextBuilder) Build(p persona.Persona, store *catalog.Store, entries catalog.Entries, history []chat.Turn, latest chat.Turn) chat.CompletionRequest {
	hint := ""
	if p.Commerce() && !latest.Attachment {
		hint = intent.Hint(intent.Analyze(latest.Text))
	}

	return chat.CompletionRequest{
		Instruction: b.Prompts.BuildSystemPrompt(p, store, hint),
		CatalogText: catalogText(entries),
		History:     b.window(history),
		Message:     promptText(latest),
	}
}

func (b *ContextBuilder) window(history []chat.Turn) []chat.Turn {
	kept := make([]chat.Turn, 0, len(history))
	for _, turn := range history {
		if turn.Fallback {
			continue
		}
		turn.Text = promptText(turn)
		kept = append(kept, turn)
	}

	if len(kept) > b.Window {
		kept = kept[len(kept)-b.Window:]
	}
	return kept
}

func promptText(turn chat.Turn) string {
	if turn.Attachment {
		return ai.ProofSentinel
	}
	return turn.Text
}

func catalogText(entries catalog.Entries) string {
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.String())
	}
	return strings.Join(lines, "\n")
}
