package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chatstore/core"
)

func collect(respCh <-chan Response, errCh <-chan error) ([]Response, error) {
	var out []Response
	for r := range respCh {
		out = append(out, r)
	}
	return out, <-errCh
}

func TestSegmentsSplitRoundTrips(t *testing.T) {
	msg := core.NewMessage(core.RoleAssistant,
		core.TextPart{Text: "Let me check. "},
		core.ToolCallPart{ToolCallID: "1", ToolName: "weather"},
		core.ToolResultPart{ToolCallID: "1", ToolName: "weather", Output: "sunny"},
		core.TextPart{Text: "It is sunny."},
	)

	segs := Segments(msg)
	require.Len(t, segs, 2)
	assert.Equal(t, "Let me check. ", segs[0].Text)
	require.Len(t, segs[0].Calls, 1)
	require.Len(t, segs[0].Results, 1)
	assert.Equal(t, "It is sunny.", segs[1].Text)
	assert.Empty(t, segs[1].Calls)
}

func TestSegmentsOfEmptyMessage(t *testing.T) {
	assert.Empty(t, Segments(core.NewMessage(core.RoleAssistant)))
}

func TestResultText(t *testing.T) {
	assert.Equal(t, "boom", ResultText(core.ToolResultPart{Output: "ignored", Error: "boom"}))
	assert.Equal(t, "", ResultText(core.ToolResultPart{}))
	assert.Equal(t, "plain", ResultText(core.ToolResultPart{Output: "plain"}))
	assert.JSONEq(t, `{"temp":21}`, ResultText(core.ToolResultPart{Output: map[string]any{"temp": 21}}))
}

func TestResponseText(t *testing.T) {
	r := Response{Parts: []core.Part{
		core.TextPart{Text: "a"},
		core.ToolCallPart{ToolCallID: "x"},
		core.TextPart{Text: "b"},
	}}
	assert.Equal(t, "ab", r.Text())
}

func TestMockModelCannedAndDefaultReplies(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	m.AddResponse("hello", "hi")

	resps, err := collect(m.Generate(t.Context(), Request{Messages: []core.Message{core.NewUserMessage("hello")}}))
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "hi", resps[0].Text())
	assert.Equal(t, "stop", resps[0].FinishReason)

	resps, err = collect(m.Generate(t.Context(), Request{Messages: []core.Message{core.NewUserMessage("other")}}))
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "Mock response to: other", resps[0].Text())

	assert.Equal(t, 2, m.Calls())
	assert.Equal(t, Info{Name: "mock-1", Provider: "mock", SupportsTools: true}, m.Info())
}

func TestMockModelStreamsRunes(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.AddResponse("q", "abc")

	resps, err := collect(m.Generate(t.Context(), Request{
		Messages: []core.Message{core.NewUserMessage("q")},
		Stream:   true,
	}))
	require.NoError(t, err)
	require.Len(t, resps, 4)
	for _, r := range resps[:3] {
		assert.True(t, r.Partial)
	}
	assert.False(t, resps[3].Partial)
	assert.Equal(t, "abc", resps[3].Text())
}

func TestMockModelToolTurn(t *testing.T) {
	m := NewMockModel("mock", "mock")
	call := core.ToolCallPart{ToolCallID: "c1", ToolName: "lookup", Arguments: `{}`}
	m.AddTurn("find", MockTurn{ToolCalls: []core.ToolCallPart{call}, FollowUp: "found"})

	user := core.NewUserMessage("find")
	resps, err := collect(m.Generate(t.Context(), Request{Messages: []core.Message{user}}))
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "tool_calls", resps[0].FinishReason)
	assert.Equal(t, []core.Part{call}, resps[0].Parts)

	answered := core.NewMessage(core.RoleAssistant, call, core.ToolResultPart{ToolCallID: "c1", Output: "x"})
	resps, err = collect(m.Generate(t.Context(), Request{Messages: []core.Message{user, answered}}))
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "stop", resps[0].FinishReason)
	assert.Equal(t, "found", resps[0].Text())
}

func TestMockModelErrors(t *testing.T) {
	m := NewMockModel("mock", "mock")

	_, err := collect(m.Generate(t.Context(), Request{}))
	assert.Error(t, err)

	boom := errors.New("boom")
	m.AddTurn("x", MockTurn{Err: boom})
	_, err = collect(m.Generate(t.Context(), Request{Messages: []core.Message{core.NewUserMessage("x")}}))
	assert.ErrorIs(t, err, boom)
}

func TestMockModelHonorsCancellation(t *testing.T) {
	m := NewMockModel("mock", "mock")
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := collect(m.Generate(ctx, Request{
		Messages: []core.Message{core.NewUserMessage("a long enough prompt to overflow nothing")},
		Stream:   true,
	}))
	// The buffered channel may accept a few chunks before the select sees
	// the cancellation; either way the run ends with the context error.
	assert.ErrorIs(t, err, context.Canceled)
}
