package selector

import (
	"context"
	"strings"

	"github.com/hupe1980/chatstore/core"
)

// ID returns the session id.
func ID(s core.ChatState) string { return s.ID }

// Messages returns the conversation.
func Messages(s core.ChatState) []core.Message { return s.Messages }

// Status returns the lifecycle status.
func Status(s core.ChatState) core.Status { return s.Status }

// Error returns the last producer error.
func Error(s core.ChatState) error { return s.Error }

// SendMessage returns the send binding.
func SendMessage(s core.ChatState) func(ctx context.Context, msg core.Message) error {
	return s.SendMessage
}

// Actions returns the seven action bindings as one bundle.
func Actions(s core.ChatState) core.Actions { return s.Actions }

// MessageCount returns the number of messages.
func MessageCount(s core.ChatState) int { return len(s.Messages) }

// HasMessages reports whether the conversation is non-empty.
func HasMessages(s core.ChatState) bool { return len(s.Messages) > 0 }

// IsLoading reports whether the status is submitted or streaming.
func IsLoading(s core.ChatState) bool { return s.Status.IsLoading() }

// LatestMessage returns the last message, or nil for an empty conversation.
func LatestMessage(s core.ChatState) *core.Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// MessagesByRole returns a selector for the messages authored by role, in
// conversation order.
func MessagesByRole(role core.Role) Func[[]core.Message] {
	return func(s core.ChatState) []core.Message {
		var out []core.Message
		for _, m := range s.Messages {
			if m.Role == role {
				out = append(out, m)
			}
		}
		return out
	}
}

// StatusSummary is the fixed bundle returned by StatusInfo.
type StatusSummary struct {
	Status       core.Status
	IsLoading    bool
	HasError     bool
	Error        error
	MessageCount int
}

// StatusInfo summarizes status, loading, error and message count.
func StatusInfo(s core.ChatState) StatusSummary {
	return StatusSummary{
		Status:       s.Status,
		IsLoading:    s.Status.IsLoading(),
		HasError:     s.Error != nil,
		Error:        s.Error,
		MessageCount: len(s.Messages),
	}
}

// ToolCallCount counts tool parts across all messages. Tool results are not
// counted separately from the call they answer.
func ToolCallCount(s core.ChatState) int {
	n := 0
	for _, m := range s.Messages {
		for _, p := range m.Parts {
			t := p.Type()
			if strings.HasPrefix(t, "tool-") && t != core.PartTypeToolResult {
				n++
			}
		}
	}
	return n
}

// MessagesWithMetadata returns the messages carrying at least one metadata key.
func MessagesWithMetadata(s core.ChatState) []core.Message {
	var out []core.Message
	for _, m := range s.Messages {
		if len(m.Metadata) > 0 {
			out = append(out, m)
		}
	}
	return out
}
