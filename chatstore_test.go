package chatstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chatstore/bridge"
	"github.com/hupe1980/chatstore/core"
	"github.com/hupe1980/chatstore/internal/testutil"
	"github.com/hupe1980/chatstore/selector"
	"github.com/hupe1980/chatstore/store"
)

func resetRegistry(t *testing.T) {
	t.Helper()
	ClearAllStores()
	t.Cleanup(ClearAllStores)
}

func TestDefaultKey(t *testing.T) {
	resetRegistry(t)

	assert.Same(t, GetStore(), GetStore(DefaultKey))
	assert.Equal(t, []string{DefaultKey}, StoreKeys())
}

func TestEndToEndSync(t *testing.T) {
	resetRegistry(t)

	s1 := GetStore("s1")
	assert.Equal(t, core.StatusReady, s1.GetState().Status)
	assert.Empty(t, UseMessages("s1"))

	msg1 := testutil.NewMessageBuilder().ID("msg1").Text("hello").Build()
	p := testutil.NewStubProducer(core.IdleState())
	detach := UseChat(p, func(o *bridge.Options) { o.Key = "s1" })
	defer detach()

	p.Emit(testutil.NewStateBuilder().ID("c1").Messages(msg1).Status(core.StatusStreaming).Build())

	msgs := UseMessages("s1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "msg1", msgs[0].ID)
	assert.Equal(t, core.StatusStreaming, UseStatus("s1"))
	assert.True(t, UseIsLoading("s1"))
	assert.Equal(t, "c1", UseID("s1"))
	assert.Equal(t, 1, UseMessageCount("s1"))
	assert.True(t, UseHasMessages("s1"))
	require.NotNil(t, UseLatestMessage("s1"))
	assert.Len(t, UseMessagesByRole(core.RoleUser, "s1"), 1)
	assert.NoError(t, UseError("s1"))
	assert.NotNil(t, UseSendMessage("s1"))
	assert.NotNil(t, UseActions("s1").Regenerate)
	assert.Equal(t, 1, UseStatusInfo("s1").MessageCount)
	assert.Equal(t, "c1", UseChatState("s1").ID)

	// The default store is untouched.
	assert.Equal(t, core.StatusReady, UseStatus())
}

func TestClearStoreCreatesFreshStore(t *testing.T) {
	resetRegistry(t)

	old := GetStore("s1")
	old.Set(core.NewPatch().
		WithStatus(core.StatusStreaming).
		WithMessages([]core.Message{core.NewUserMessage("hi")}))

	ClearStore("s1")
	fresh := GetStore("s1")

	assert.NotSame(t, old, fresh)
	assert.Equal(t, core.StatusReady, fresh.GetState().Status)
	assert.Empty(t, fresh.GetState().Messages)
}

func TestWatchPropertyCountSuppression(t *testing.T) {
	resetRegistry(t)

	var got []int
	w := WatchProperty(selector.MessageCount, func(n int) { got = append(got, n) }, "live-demo")
	defer w.Close()

	a := core.NewUserMessage("a")
	GetStore("live-demo").Set(core.NewPatch().WithMessages([]core.Message{a}))
	GetStore("live-demo").Set(core.NewPatch().WithMessages([]core.Message{a}))

	assert.Equal(t, []int{1}, got)
}

func TestNewCustomStoreIsNotRegistered(t *testing.T) {
	resetRegistry(t)

	custom := NewCustomStore(func(o *store.Options) { o.Name = "custom" })
	p := testutil.NewStubProducer(testutil.NewStateBuilder().ID("x").Build())
	detach := UseChat(p, func(o *bridge.Options) { o.Store = custom })
	defer detach()

	assert.Equal(t, "x", custom.GetState().ID)
	assert.Empty(t, StoreKeys())
}
