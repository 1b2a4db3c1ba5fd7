package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
	"github.com/curugbadak/pasar-desa/backend/internal/model/persona"
	"github.com/curugbadak/pasar-desa/backend/internal/service/order"
)

// DefaultCompletionTimeout bounds a provider call when none is configured.
const DefaultCompletionTimeout = 15 * time.Second

// ProofPlaceholder is the transcript text of a payment-proof upload.
const ProofPlaceholder = "Mengirim bukti transfer..."

var (
	ErrEmptyInput    = errors.New("message text is empty")
	ErrBusy          = errors.New("a reply is still pending for this session")
	ErrSessionClosed = errors.New("session is closed")
	ErrDiscarded     = errors.New("reply discarded because the session was reset")
)

// Completer sends one bounded request to a language model.
type Completer interface {
	Complete(ctx context.Context, req chat.CompletionRequest) (string, error)
}

// StreamingCompleter can relay partial text while the reply is generated.
type StreamingCompleter interface {
	Completer
	CompleteStream(ctx context.Context, req chat.CompletionRequest, onDelta func(string)) (string, error)
}

// Outcome reports what one user action changed.
type Outcome struct {
	Turns          []chat.Turn         `json:"turns"`
	State          chat.State          `json:"state"`
	Affordance     chat.Affordance     `json:"affordance"`
	Proposal       *chat.OrderProposal `json:"proposal,omitempty"`
	PaymentAccount string              `json:"paymentAccount,omitempty"`
}

// SessionOptions wires the collaborators of a session.
type SessionOptions struct {
	Persona   persona.Persona
	Store     *catalog.Store
	Catalog   catalog.Provider
	Completer Completer
	Builder   *ContextBuilder
	Timeout   time.Duration
	// OnAppend observes every appended turn. It runs outside the session lock.
	OnAppend func(chat.Turn)
}

// Session runs the order protocol for one conversation. All methods are safe
// for concurrent use; at most one completion is in flight at a time.
type Session struct {
	mu sync.Mutex

	id        string
	persona   persona.Persona
	store     *catalog.Store
	catalog   catalog.Provider
	completer Completer
	builder   *ContextBuilder
	timeout   time.Duration
	onAppend  func(chat.Turn)
	createdAt time.Time

	state    chat.State
	proposal *chat.OrderProposal
	turns    []chat.Turn
	inFlight bool
	epoch    uint64
	cancel   context.CancelFunc
	closed   bool
}

// NewSession creates a session in Browsing and appends the persona greeting.
func NewSession(id string, opts SessionOptions) *Session {
	if opts.Builder == nil {
		opts.Builder = NewContextBuilder(DefaultHistoryWindow)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultCompletionTimeout
	}

	s := &Session{
		id:        id,
		persona:   opts.Persona,
		store:     opts.Store,
		catalog:   opts.Catalog,
		completer: opts.Completer,
		builder:   opts.Builder,
		timeout:   opts.Timeout,
		onAppend:  opts.OnAppend,
		createdAt: time.Now().UTC(),
		state:     chat.StateBrowsing,
		turns:     make([]chat.Turn, 0, 16),
	}

	storeName := ""
	if s.store != nil {
		storeName = s.store.Name
	}
	if greeting := s.persona.GreetingFor(storeName); greeting != "" {
		s.mu.Lock()
		turn := s.appendLocked(chat.RoleAssistant, greeting)
		s.mu.Unlock()
		s.notify(turn)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Send submits a user message and waits for the assistant reply.
func (s *Session) Send(ctx context.Context, text string) (Outcome, error) {
	return s.SendStream(ctx, text, nil)
}

// SendStream is Send with partial reply text relayed to onDelta when the
// completer streams. Order blocks are hidden from the deltas.
func (s *Session) SendStream(ctx context.Context, text string, onDelta func(string)) (Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return Outcome{}, ErrEmptyInput
	}
	return s.exchange(ctx, chat.Turn{Role: chat.RoleUser, Text: text}, onDelta)
}

// SubmitProof signals that the buyer attached proof of payment. With an
// active proposal the acknowledgment is emitted locally and the session
// enters AwaitingManualConfirmation; otherwise the signal is forwarded to
// the model like a message.
func (s *Session) SubmitProof(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if err := s.admitLocked(); err != nil {
		s.mu.Unlock()
		return Outcome{}, err
	}
	if s.state != chat.StateOrderProposed {
		s.mu.Unlock()
		return s.exchange(ctx, chat.Turn{Role: chat.RoleUser, Text: ProofPlaceholder, Attachment: true}, nil)
	}

	proof := s.appendTurnLocked(chat.Turn{Role: chat.RoleUser, Text: ProofPlaceholder, Attachment: true})
	s.state = chat.StateProofSubmitted
	ack := s.appendLocked(chat.RoleAssistant, s.acknowledgment())
	s.state = chat.StateAwaitingManualConfirmation
	out := Outcome{
		Turns:      []chat.Turn{proof, ack},
		State:      s.state,
		Affordance: chat.AffordancePendingConfirmation,
		Proposal:   s.proposal,
	}
	s.mu.Unlock()

	log.Printf("[chat] session=%s proof submitted, awaiting manual confirmation", s.id)
	s.notify(proof, ack)
	return out, nil
}

// Clear drops the history and any proposal and returns to Browsing. A reply
// still in flight is discarded when it arrives.
func (s *Session) Clear() (Outcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Outcome{}, ErrSessionClosed
	}
	s.resetLocked()
	s.turns = make([]chat.Turn, 0, 16)
	s.state = chat.StateBrowsing
	s.proposal = nil

	out := Outcome{State: s.state, Affordance: chat.AffordanceNone}
	if s.persona.ClearedGreeting != "" {
		out.Turns = append(out.Turns, s.appendLocked(chat.RoleAssistant, s.persona.ClearedGreeting))
	}
	s.mu.Unlock()

	log.Printf("[chat] session=%s history cleared", s.id)
	s.notify(out.Turns...)
	return out, nil
}

// Close tears the session down. Later calls fail with ErrSessionClosed and a
// reply still in flight is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.resetLocked()
	log.Printf("[chat] session=%s closed", s.id)
}

// Snapshot returns the externally visible session state.
func (s *Session) Snapshot() chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := chat.Session{
		ID:             s.id,
		PersonaID:      s.persona.ID,
		State:          s.state,
		ActiveProposal: s.proposal,
		InFlight:       s.inFlight,
		CreatedAt:      s.createdAt,
	}
	if s.store != nil {
		snap.StoreID = s.store.ID
	}
	return snap
}

// Transcript returns a copy of the turns in send order.
func (s *Session) Transcript() []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]chat.Turn, len(s.turns))
	copy(copied, s.turns)
	return copied
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) exchange(ctx context.Context, userTurn chat.Turn, onDelta func(string)) (Outcome, error) {
	s.mu.Lock()
	if err := s.admitLocked(); err != nil {
		s.mu.Unlock()
		return Outcome{}, err
	}

	history := make([]chat.Turn, len(s.turns))
	copy(history, s.turns)
	userTurn = s.appendTurnLocked(userTurn)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	s.inFlight = true
	s.cancel = cancel
	epoch := s.epoch
	s.mu.Unlock()
	defer cancel()

	s.notify(userTurn)

	raw, entries, err := s.complete(callCtx, history, userTurn, onDelta)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		log.Printf("[chat] session=%s discarded late reply", s.id)
		return Outcome{}, ErrDiscarded
	}
	s.inFlight = false
	s.cancel = nil

	if err != nil {
		fallback := s.appendTurnLocked(chat.Turn{Role: chat.RoleAssistant, Text: s.fallbackText(), Fallback: true})
		out := Outcome{
			Turns:      []chat.Turn{userTurn, fallback},
			State:      s.state,
			Affordance: chat.AffordanceNone,
			Proposal:   s.proposal,
		}
		s.mu.Unlock()

		log.Printf("[chat] session=%s completion failed, fallback sent: %v", s.id, err)
		s.notify(fallback)
		return out, nil
	}

	text, proposal := s.interpret(raw, entries)
	reply := s.appendTurnLocked(chat.Turn{Role: chat.RoleAssistant, Text: text, Order: proposal})
	out := Outcome{Turns: []chat.Turn{userTurn, reply}, Affordance: chat.AffordanceNone}

	switch {
	case s.state.Terminal():
		// The order is with the seller; replies no longer move the protocol.
	case proposal != nil:
		s.state = chat.StateOrderProposed
		s.proposal = proposal
		out.Affordance = chat.AffordanceCartSummary
		if s.store != nil {
			out.PaymentAccount = s.store.PaymentAccount
		}
	default:
		s.state = chat.StateBrowsing
		s.proposal = nil
	}
	out.State = s.state
	out.Proposal = s.proposal
	s.mu.Unlock()

	s.notify(reply)
	return out, nil
}

func (s *Session) complete(ctx context.Context, history []chat.Turn, latest chat.Turn, onDelta func(string)) (string, catalog.Entries, error) {
	if s.completer == nil {
		return "", nil, fmt.Errorf("no completion provider configured")
	}

	var entries catalog.Entries
	if s.persona.Commerce() && s.store != nil && s.catalog != nil {
		snap, err := catalog.Snapshot(ctx, s.catalog, s.store.ID)
		if err != nil {
			return "", nil, fmt.Errorf("load catalog: %w", err)
		}
		entries = snap
	}

	req := s.builder.Build(s.persona, s.store, entries, history, latest)

	streamer, ok := s.completer.(StreamingCompleter)
	if !ok || onDelta == nil {
		raw, err := s.completer.Complete(ctx, req)
		return raw, entries, err
	}

	var filter order.StreamFilter
	raw, err := streamer.CompleteStream(ctx, req, func(delta string) {
		if visible := filter.Write(delta); visible != "" {
			onDelta(visible)
		}
	})
	if err == nil {
		if rest := filter.Flush(); rest != "" {
			onDelta(rest)
		}
	}
	return raw, entries, err
}

// interpret strips the order block and returns the proposal worth keeping.
func (s *Session) interpret(raw string, entries catalog.Entries) (string, *chat.OrderProposal) {
	result := order.Extract(raw)
	if !result.Found() {
		return result.DisplayText, nil
	}
	if result.Blocks > 1 {
		log.Printf("[order] session=%s reply carried %d blocks, only the first was read", s.id, result.Blocks)
	}
	if result.Err != nil {
		log.Printf("[order] session=%s rejected order block: %v", s.id, result.Err)
		return result.DisplayText, nil
	}
	if !s.persona.Commerce() {
		log.Printf("[order] session=%s persona %s does not take orders, block dropped", s.id, s.persona.ID)
		return result.DisplayText, nil
	}

	proposal, corrections, err := order.Reconcile(result.Proposal, entries)
	if err != nil {
		log.Printf("[order] session=%s proposal does not match catalog: %v", s.id, err)
		return result.DisplayText, nil
	}
	for _, c := range corrections {
		log.Printf("[order] session=%s price of %q corrected from %d to %d", s.id, c.Name, c.Proposed, c.Catalog)
	}
	log.Printf("[order] session=%s proposal accepted, lines=%d, total=%d", s.id, len(proposal.Items), proposal.Total)
	return result.DisplayText, proposal
}

func (s *Session) admitLocked() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.inFlight {
		return ErrBusy
	}
	return nil
}

// resetLocked makes any in-flight reply stale.
func (s *Session) resetLocked() {
	s.epoch++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.inFlight = false
}

func (s *Session) appendLocked(role chat.Role, text string) chat.Turn {
	return s.appendTurnLocked(chat.Turn{Role: role, Text: text})
}

func (s *Session) appendTurnLocked(turn chat.Turn) chat.Turn {
	turn.ID = uuid.NewString()
	turn.SessionID = s.id
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	s.turns = append(s.turns, turn)
	return turn
}

func (s *Session) notify(turns ...chat.Turn) {
	if s.onAppend == nil {
		return
	}
	for _, turn := range turns {
		s.onAppend(turn)
	}
}

func (s *Session) fallbackText() string {
	if s.persona.FallbackText != "" {
		return s.persona.FallbackText
	}
	return "Maaf, terjadi gangguan. Silakan coba lagi."
}

func (s *Session) acknowledgment() string {
	if s.persona.Acknowledgment != "" {
		return s.persona.Acknowledgment
	}
	return "Terima kasih, bukti pembayaran sudah diterima. Mohon ditunggu konfirmasi penjual."
}
