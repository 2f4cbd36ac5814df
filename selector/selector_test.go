package selector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chatstore/core"
	"github.com/hupe1980/chatstore/store"
)

func TestSelectReadsCurrentState(t *testing.T) {
	s := store.NewIdle()
	s.Set(core.NewPatch().WithID("chat-1"))
	assert.Equal(t, "chat-1", Select(s, ID))
}

func TestWatchInitialValueAndChanges(t *testing.T) {
	s := store.NewIdle()

	var got []core.Status
	w := Watch(s, Status, func(v core.Status) { got = append(got, v) })
	defer w.Close()

	assert.Equal(t, core.StatusReady, w.Value())
	assert.Empty(t, got)

	s.Set(core.NewPatch().WithStatus(core.StatusSubmitted))
	s.Set(core.NewPatch().WithStatus(core.StatusSubmitted))
	s.Set(core.NewPatch().WithStatus(core.StatusStreaming))

	assert.Equal(t, []core.Status{core.StatusSubmitted, core.StatusStreaming}, got)
	assert.Equal(t, core.StatusStreaming, w.Value())
}

func TestWatchIgnoresUnrelatedFields(t *testing.T) {
	s := store.NewIdle()
	s.Set(core.NewPatch().WithMessages([]core.Message{core.NewUserMessage("hi")}))

	calls := 0
	w := Watch(s, MessageCount, func(int) { calls++ })
	defer w.Close()

	s.Set(core.NewPatch().WithStatus(core.StatusStreaming))
	s.Set(core.NewPatch().WithError(errors.New("x")))
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, w.Value())
}

func TestWatchFreshSliceWithSameElementsDoesNotRenotify(t *testing.T) {
	s := store.NewIdle()
	u := core.NewUserMessage("question")
	a := core.NewAssistantMessage("answer")
	s.Set(core.NewPatch().WithMessages([]core.Message{u, a}))

	calls := 0
	w := Watch(s, MessagesByRole(core.RoleUser), func([]core.Message) { calls++ })
	defer w.Close()
	require.Len(t, w.Value(), 1)

	// A new backing slice holding the same messages.
	s.Set(core.NewPatch().WithMessages([]core.Message{u, a}))
	assert.Equal(t, 0, calls)

	s.Set(core.NewPatch().WithMessages([]core.Message{u, a, core.NewUserMessage("follow-up")}))
	assert.Equal(t, 1, calls)
	assert.Len(t, w.Value(), 2)
}

func TestWatchCloseStopsDelivery(t *testing.T) {
	s := store.NewIdle()
	calls := 0
	w := Watch(s, ID, func(string) { calls++ })

	w.Close()
	w.Close()
	s.Set(core.NewPatch().WithID("after-close"))

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, s.ListenerCount())
}

func TestWatchWithCustomEquality(t *testing.T) {
	s := store.NewIdle()
	calls := 0
	always := func(a, b core.Status) bool { return false }
	w := WatchWith(s, Status, always, func(core.Status) { calls++ })
	defer w.Close()

	s.Set(core.NewPatch())
	s.Set(core.NewPatch())
	assert.Equal(t, 2, calls)
}

func TestWatchStatusInfoBundle(t *testing.T) {
	s := store.NewIdle()
	calls := 0
	w := Watch(s, StatusInfo, func(StatusSummary) { calls++ })
	defer w.Close()

	s.Set(core.NewPatch().WithID("unrelated"))
	assert.Equal(t, 0, calls)

	boom := errors.New("boom")
	s.Set(core.NewPatch().WithStatus(core.StatusError).WithError(boom))
	assert.Equal(t, 1, calls)

	info := w.Value()
	assert.Equal(t, core.StatusError, info.Status)
	assert.True(t, info.HasError)
	assert.False(t, info.IsLoading)
	assert.Same(t, boom, info.Error)
}

func TestWatchActionsFiresWhenBindingsSwap(t *testing.T) {
	s := store.NewIdle()

	var stopped []string
	bind := func(name string) core.Actions {
		a := core.NoopActions()
		a.Stop = func() error { stopped = append(stopped, name); return nil }
		return a
	}

	s.Set(core.NewPatch().WithActions(bind("a")))

	calls := 0
	w := Watch(s, Actions, func(core.Actions) { calls++ })
	defer w.Close()

	s.Set(core.NewPatch().WithActions(bind("b")))
	assert.Equal(t, 1, calls)

	require.NoError(t, w.Value().Stop())
	assert.Equal(t, []string{"b"}, stopped)
}

func TestProjections(t *testing.T) {
	st := core.IdleState()
	assert.Nil(t, LatestMessage(st))
	assert.False(t, HasMessages(st))
	assert.False(t, IsLoading(st))

	withMeta := core.NewAssistantMessage("tool time").WithParts(
		core.ToolCallPart{ToolCallID: "1", ToolName: "get_weather", Arguments: `{"location":"london"}`},
		core.ToolResultPart{ToolCallID: "1", ToolName: "get_weather", Output: "cloudy"},
		core.ToolCallPart{ToolCallID: "2", ToolName: "search", Arguments: `{"query":"go"}`},
	)
	withMeta.Metadata = map[string]any{"model": "mock"}

	st.Messages = []core.Message{core.NewUserMessage("hello"), withMeta}
	st.Status = core.StatusStreaming

	assert.Equal(t, 2, MessageCount(st))
	assert.True(t, HasMessages(st))
	assert.True(t, IsLoading(st))
	require.NotNil(t, LatestMessage(st))
	assert.Equal(t, withMeta.ID, LatestMessage(st).ID)
	assert.Equal(t, 2, ToolCallCount(st))
	assert.Len(t, MessagesWithMetadata(st), 1)
	assert.Len(t, MessagesByRole(core.RoleAssistant)(st), 1)
	assert.Empty(t, MessagesByRole(core.RoleSystem)(st))
	assert.NotNil(t, SendMessage(st))
	assert.NotNil(t, Actions(st).ClearError)
}
