package testutil

import (
	"github.com/hupe1980/chatstore/core"
)

// StateBuilder offers a fluent API to build chat states for tests.
type StateBuilder struct {
	state core.ChatState
}

// NewStateBuilder starts from core.IdleState().
func NewStateBuilder() *StateBuilder { return &StateBuilder{state: core.IdleState()} }

// ID sets the session id (chainable).
func (b *StateBuilder) ID(id string) *StateBuilder { b.state.ID = id; return b }

// Status sets the status (chainable).
func (b *StateBuilder) Status(s core.Status) *StateBuilder { b.state.Status = s; return b }

// Error sets the error and status error (chainable).
func (b *StateBuilder) Error(err error) *StateBuilder {
	b.state.Error = err
	b.state.Status = core.StatusError
	return b
}

// Messages appends messages (chainable). The resulting slice is never shared
// with a previously built state.
func (b *StateBuilder) Messages(msgs ...core.Message) *StateBuilder {
	next := make([]core.Message, 0, len(b.state.Messages)+len(msgs))
	next = append(next, b.state.Messages...)
	b.state.Messages = append(next, msgs...)
	return b
}

// Actions sets the action bindings (chainable).
func (b *StateBuilder) Actions(a core.Actions) *StateBuilder { b.state.Actions = a; return b }

// Build returns the built state.
func (b *StateBuilder) Build() core.ChatState { return b.state }
