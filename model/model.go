package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/chatstore/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input assembled by the chat engine.
type Request struct {
	Instructions string           `json:"instructions"`
	Messages     []core.Message   `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model. Partial chunks
// carry text deltas; the final chunk carries the complete parts of the turn.
type Response struct {
	ID           string      `json:"id"`
	Partial      bool        `json:"partial"`
	Parts        []core.Part `json:"parts"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Text concatenates the text parts of the chunk.
func (r Response) Text() string {
	var b strings.Builder
	for _, p := range r.Parts {
		if tp, ok := p.(core.TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by the chat engine to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Segment is one model round trip inside a message: the text and tool calls
// the model produced, followed by the results answering those calls.
type Segment struct {
	Text    string
	Calls   []core.ToolCallPart
	Results []core.ToolResultPart
}

// Segments splits an assistant message into round trips. A text or tool call
// part following tool results starts a new segment.
func Segments(m core.Message) []Segment {
	var (
		out []Segment
		cur Segment
		b   strings.Builder
	)

	flush := func() {
		cur.Text = b.String()
		if cur.Text != "" || len(cur.Calls) > 0 || len(cur.Results) > 0 {
			out = append(out, cur)
		}
		cur = Segment{}
		b.Reset()
	}

	for _, p := range m.Parts {
		switch part := p.(type) {
		case core.TextPart:
			if len(cur.Results) > 0 {
				flush()
			}
			b.WriteString(part.Text)
		case core.ToolCallPart:
			if len(cur.Results) > 0 {
				flush()
			}
			cur.Calls = append(cur.Calls, part)
		case core.ToolResultPart:
			cur.Results = append(cur.Results, part)
		}
	}
	flush()

	return out
}

// ResultText renders a tool result as the string handed back to providers.
func ResultText(r core.ToolResultPart) string {
	if r.Error != "" {
		return r.Error
	}
	switch v := r.Output.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Canned turns are matched against the text of the last user message; a turn
// may request tool calls, in which case the follow-up request (carrying the
// tool results) receives FollowUp.
type MockModel struct {
	info Info

	mu    sync.Mutex
	turns map[string]MockTurn
	calls int
}

// MockTurn is a canned reply of the MockModel.
type MockTurn struct {
	Text      string
	ToolCalls []core.ToolCallPart
	FollowUp  string
	Err       error
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		turns: make(map[string]MockTurn),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.AddTurn(prompt, MockTurn{Text: response})
}

// AddTurn registers a canned turn for an input prompt.
func (m *MockModel) AddTurn(prompt string, turn MockTurn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[prompt] = turn
}

// Calls returns the number of Generate invocations so far.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model; emits optional streaming rune chunks then the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		prompt, answered, ok := lastPrompt(req.Messages)
		if !ok {
			errCh <- fmt.Errorf("no user message provided")
			return
		}

		m.mu.Lock()
		turn, found := m.turns[prompt]
		m.mu.Unlock()

		if turn.Err != nil {
			errCh <- turn.Err
			return
		}

		var parts []core.Part
		full := turn.Text
		switch {
		case !found || (answered && turn.FollowUp == ""):
			full = fmt.Sprintf("Mock response to: %s", prompt)
		case answered:
			full = turn.FollowUp
		}

		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Parts:   []core.Part{core.TextPart{Text: string(r)}},
				}:
				}
			}
		}

		if full != "" {
			parts = append(parts, core.TextPart{Text: full})
		}

		finish := "stop"
		if !answered && len(turn.ToolCalls) > 0 {
			for _, c := range turn.ToolCalls {
				parts = append(parts, c)
			}
			finish = "tool_calls"
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Parts: parts, FinishReason: finish}:
		}
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

// lastPrompt returns the text of the last user message and whether an
// assistant message with tool results follows it.
func lastPrompt(msgs []core.Message) (string, bool, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != core.RoleUser {
			continue
		}
		answered := false
		for _, later := range msgs[i+1:] {
			if later.Role == core.RoleAssistant && len(later.ToolResults()) > 0 {
				answered = true
			}
		}
		return msgs[i].Text(), answered, true
	}
	return "", false, false
}
