package chat

import "time"

// State is the order protocol position of a session.
type State string

const (
	StateBrowsing                   State = "browsing"
	StateOrderProposed              State = "order_proposed"
	StateProofSubmitted             State = "proof_submitted"
	StateAwaitingManualConfirmation State = "awaiting_manual_confirmation"
)

// Terminal reports whether no automated transition can leave the state.
func (s State) Terminal() bool {
	return s == StateAwaitingManualConfirmation
}

// Affordance is the UI element a transition asks the client to render.
type Affordance string

const (
	AffordanceNone                Affordance = "none"
	AffordanceCartSummary         Affordance = "cart_summary"
	AffordancePendingConfirmation Affordance = "pending_confirmation"
)

// Session captures the externally visible state of a conversation.
type Session struct {
	ID             string         `json:"id"`
	PersonaID      string         `json:"personaId"`
	StoreID        string         `json:"storeId,omitempty"`
	State          State          `json:"state"`
	ActiveProposal *OrderProposal `json:"activeProposal,omitempty"`
	InFlight       bool           `json:"inFlight"`
	CreatedAt      time.Time      `json:"createdAt"`
}
