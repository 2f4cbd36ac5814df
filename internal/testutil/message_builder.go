package testutil

import (
	"time"

	"github.com/hupe1980/chatstore/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().Assistant().Text("hello").Meta("model", "mock").Build()
type MessageBuilder struct {
	id        string
	role      core.Role
	parts     []core.Part
	metadata  map[string]any
	createdAt time.Time
}

// NewMessageBuilder creates a builder for a user message.
func NewMessageBuilder() *MessageBuilder { return &MessageBuilder{role: core.RoleUser} }

// ID overrides the generated message id (chainable).
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// User sets the role to user (chainable).
func (b *MessageBuilder) User() *MessageBuilder { b.role = core.RoleUser; return b }

// Assistant sets the role to assistant (chainable).
func (b *MessageBuilder) Assistant() *MessageBuilder { b.role = core.RoleAssistant; return b }

// System sets the role to system (chainable).
func (b *MessageBuilder) System() *MessageBuilder { b.role = core.RoleSystem; return b }

// Text appends a text part (chainable).
func (b *MessageBuilder) Text(t string) *MessageBuilder {
	b.parts = append(b.parts, core.TextPart{Text: t})
	return b
}

// ToolCall appends a tool call part with JSON arguments (chainable).
func (b *MessageBuilder) ToolCall(id, name, args string) *MessageBuilder {
	b.parts = append(b.parts, core.ToolCallPart{ToolCallID: id, ToolName: name, Arguments: args})
	return b
}

// ToolResult appends a tool result part (chainable).
func (b *MessageBuilder) ToolResult(id, name string, output any, err error) *MessageBuilder {
	p := core.ToolResultPart{ToolCallID: id, ToolName: name, Output: output}
	if err != nil {
		p.Error = err.Error()
	}
	b.parts = append(b.parts, p)
	return b
}

// Part appends a custom part (chainable).
func (b *MessageBuilder) Part(p core.Part) *MessageBuilder {
	b.parts = append(b.parts, p)
	return b
}

// Meta sets a metadata key (chainable).
func (b *MessageBuilder) Meta(k string, v any) *MessageBuilder {
	if b.metadata == nil {
		b.metadata = make(map[string]any)
	}
	b.metadata[k] = v
	return b
}

// At sets the creation time (chainable).
func (b *MessageBuilder) At(t time.Time) *MessageBuilder { b.createdAt = t; return b }

// Build constructs the core.Message value.
func (b *MessageBuilder) Build() core.Message {
	m := core.NewMessage(b.role, append([]core.Part(nil), b.parts...)...)
	if b.id != "" {
		m.ID = b.id
	}
	if !b.createdAt.IsZero() {
		m.CreatedAt = b.createdAt
	}
	if len(b.metadata) > 0 {
		m.Metadata = make(map[string]any, len(b.metadata))
		for k, v := range b.metadata {
			m.Metadata[k] = v
		}
	}
	return m
}
