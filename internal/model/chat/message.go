package chat

import "time"

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a chat session. Turns are immutable once appended.
type Turn struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"sessionId"`
	Role       Role           `json:"role"`
	Text       string         `json:"text"`
	Attachment bool           `json:"attachment,omitempty"`
	Fallback   bool           `json:"fallback,omitempty"`
	Order      *OrderProposal `json:"order,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
