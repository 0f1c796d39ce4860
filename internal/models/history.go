package models

import "errors"

// ErrTurnOrder is returned when a message would break the user/assistant alternation.
var ErrTurnOrder = errors.New("history: user and assistant messages must alternate")

// History is the ordered, append-only message log of one conversation.
// An optional system message is always first; after it, user and assistant
// messages alternate.
type History struct {
	messages    []Message
	pendingUser bool
}

// NewHistory starts an empty history.
func NewHistory() *History {
	return &History{}
}

// NewHistoryWithSystem starts a history seeded with one system message.
// content may be empty.
func NewHistoryWithSystem(content string) *History {
	return &History{
		messages: []Message{{Role: RoleSystem, Content: content}},
	}
}

// AppendUser records a user turn. It fails while a previous user turn is
// still waiting for its reply.
func (h *History) AppendUser(content string) error {
	if h.pendingUser {
		return ErrTurnOrder
	}
	h.messages = append(h.messages, Message{Role: RoleUser, Content: content})
	h.pendingUser = true
	return nil
}

// AppendAssistant records the reply to the pending user turn.
func (h *History) AppendAssistant(content string) error {
	if !h.pendingUser {
		return ErrTurnOrder
	}
	h.messages = append(h.messages, Message{Role: RoleAssistant, Content: content})
	h.pendingUser = false
	return nil
}

// Messages returns a copy of the history in insertion order.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len reports the number of messages.
func (h *History) Len() int {
	return len(h.messages)
}
