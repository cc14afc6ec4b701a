// Package conversation owns the per-restaurant chat transcript: the
// provider-facing turn history and the UI-facing message list, persisted as
// one record per restaurant in the device key-value store.
package conversation

import "time"

// Role tags a turn as coming from the diner or the assistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one provider-facing history entry. The ordered turn slice is sent
// verbatim on every follow-up call.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Message is the UI rendering of a turn plus a synthetic id and timestamp.
// The seeded welcome message exists only here, never in the turn history.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Record is the persisted conversation state for one restaurant.
type Record struct {
	History   []Turn    `json:"history"`
	Messages  []Message `json:"messages"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy, so a record handed to the async persistence
// path cannot observe later in-memory appends.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := &Record{UpdatedAt: r.UpdatedAt}
	cp.History = append([]Turn(nil), r.History...)
	cp.Messages = append([]Message(nil), r.Messages...)
	return cp
}
