package chat

import "time"

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the two known speakers.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is a single message in the conversation transcript. Order within the
// persisted sequence is significant: it defines both the display order and
// the sliding context window sent to the model.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Emotion   string    `json:"emotion,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Valid reports whether the turn is well formed. Malformed turns are dropped
// by the integrity repair pass, never silently kept.
func (t Turn) Valid() bool {
	return t.Role.Valid() && t.Content != ""
}
