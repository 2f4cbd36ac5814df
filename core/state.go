package core

import "context"

// Status is the lifecycle phase of a chat.
type Status string

const (
	// StatusSubmitted means a message was sent and no response chunk arrived yet.
	StatusSubmitted Status = "submitted"
	// StatusStreaming means response chunks are arriving.
	StatusStreaming Status = "streaming"
	// StatusReady means the chat is idle and accepts new messages.
	StatusReady Status = "ready"
	// StatusError means the last request failed; see ChatState.Error.
	StatusError Status = "error"
)

// IsLoading reports whether a request is in flight.
func (s Status) IsLoading() bool { return s == StatusSubmitted || s == StatusStreaming }

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusStreaming, StatusReady, StatusError:
		return true
	}
	return false
}

// Actions are the operations a producer exposes. Stores keep references to
// the latest bindings and never interpret them.
type Actions struct {
	SendMessage   func(ctx context.Context, msg Message) error
	Regenerate    func(ctx context.Context) error
	Stop          func() error
	ResumeStream  func(ctx context.Context) error
	AddToolResult func(ctx context.Context, result ToolResult) error
	SetMessages   func(messages []Message)
	ClearError    func()
}

// NoopActions returns bindings that succeed without doing anything. They are
// installed in freshly created stores until a producer is synced in.
func NoopActions() Actions {
	return Actions{
		SendMessage:   noopSend,
		Regenerate:    noopCtx,
		Stop:          noopStop,
		ResumeStream:  noopCtx,
		AddToolResult: noopToolResult,
		SetMessages:   noopSetMessages,
		ClearError:    noopClearError,
	}
}

func noopSend(context.Context, Message) error          { return nil }
func noopCtx(context.Context) error                    { return nil }
func noopStop() error                                  { return nil }
func noopToolResult(context.Context, ToolResult) error { return nil }
func noopSetMessages([]Message)                        {}
func noopClearError()                                  {}

// ChatState is the snapshot held by a store: the session id, the ordered
// conversation, the current status, the last error and the producer's action
// bindings.
type ChatState struct {
	ID       string
	Messages []Message
	Status   Status
	Error    error
	Actions
}

// IdleState returns the defaults of a store that has not been synced yet.
func IdleState() ChatState {
	return ChatState{
		ID:       "",
		Messages: []Message{},
		Status:   StatusReady,
		Actions:  NoopActions(),
	}
}
