package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry of a conversation. Once pushed into a store a message
// (including its Parts and Metadata) must be treated as immutable; producers
// publish changes by building a new Message value.
type Message struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Parts     []Part         `json:"parts"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewID generates a new unique identifier for messages and chats.
func NewID() string { return uuid.NewString() }

// NewMessage creates a message with a fresh id and the given parts.
func NewMessage(role Role, parts ...Part) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Parts:     parts,
		CreatedAt: time.Now().UTC(),
	}
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, TextPart{Text: strings.TrimSpace(text)})
}

// NewAssistantMessage creates an assistant text message.
func NewAssistantMessage(text string) Message {
	return NewMessage(RoleAssistant, TextPart{Text: text})
}

// NewSystemMessage creates a system text message.
func NewSystemMessage(text string) Message {
	return NewMessage(RoleSystem, TextPart{Text: text})
}

// Text concatenates all text parts.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// ToolCalls returns the tool call parts in their original order.
func (m Message) ToolCalls() []ToolCallPart {
	var calls []ToolCallPart
	for _, p := range m.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}

// ToolResults returns the tool result parts in their original order.
func (m Message) ToolResults() []ToolResultPart {
	var results []ToolResultPart
	for _, p := range m.Parts {
		if tr, ok := p.(ToolResultPart); ok {
			results = append(results, tr)
		}
	}
	return results
}

// PendingToolCalls returns tool calls of the message that have no matching
// result part yet.
func (m Message) PendingToolCalls() []ToolCallPart {
	answered := map[string]bool{}
	for _, tr := range m.ToolResults() {
		answered[tr.ToolCallID] = true
	}
	var pending []ToolCallPart
	for _, tc := range m.ToolCalls() {
		if !answered[tc.ToolCallID] {
			pending = append(pending, tc)
		}
	}
	return pending
}

// WithParts returns a copy of the message with parts appended. The receiver's
// slice is never written to.
func (m Message) WithParts(parts ...Part) Message {
	next := make([]Part, 0, len(m.Parts)+len(parts))
	next = append(next, m.Parts...)
	next = append(next, parts...)
	m.Parts = next
	return m
}
