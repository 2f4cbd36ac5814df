// Package chatstore provides a keyed, observable store for AI chat sessions.
//
// A producer (any chat engine implementing bridge.Producer) is attached with
// UseChat; every snapshot it publishes is mirrored into the store registered
// under a key (default "default"). Readers anywhere in the process then derive
// what they need through selectors without holding a reference to the
// producer:
//
//	detach := chatstore.UseChat(c)
//	defer detach()
//
//	count := chatstore.UseMessageCount()
//	w := chatstore.WatchProperty(selector.Status, func(s core.Status) { fmt.Println(s) })
//	defer w.Close()
//
// The package-level functions operate on a process-wide default registry.
// Applications needing several independent registries use the registry,
// bridge and selector packages directly.
package chatstore

import (
	"context"

	"github.com/hupe1980/chatstore/bridge"
	"github.com/hupe1980/chatstore/core"
	"github.com/hupe1980/chatstore/logging"
	"github.com/hupe1980/chatstore/registry"
	"github.com/hupe1980/chatstore/selector"
	"github.com/hupe1980/chatstore/store"
)

// DefaultKey is the key used when no key is given.
const DefaultKey = registry.DefaultKey

var defaultRegistry = registry.New()

func keyOf(key []string) string {
	if len(key) == 0 {
		return DefaultKey
	}
	return key[0]
}

// SetLogger configures the logger of the default registry and of the stores
// it creates from now on.
func SetLogger(logger logging.Logger) { defaultRegistry.SetLogger(logger) }

// GetStore returns the store for key (default "default"), creating it lazily.
func GetStore(key ...string) *store.Store { return defaultRegistry.Get(keyOf(key)) }

// ClearStore removes the store for key (default "default").
func ClearStore(key ...string) { defaultRegistry.Remove(keyOf(key)) }

// ClearAllStores removes every store.
func ClearAllStores() { defaultRegistry.Clear() }

// StoreKeys lists the registered keys in registration order.
func StoreKeys() []string { return defaultRegistry.Keys() }

// NewCustomStore returns an idle store that is not registered under any key,
// e.g. to attach a producer through bridge.Options.Store with custom
// middleware.
func NewCustomStore(optFns ...func(o *store.Options)) *store.Store {
	return defaultRegistry.NewCustomStore(optFns...)
}

// UseChat mirrors p into the default registry. Options may override the key
// or supply an explicit store. The returned function stops mirroring.
func UseChat(p bridge.Producer, optFns ...func(o *bridge.Options)) (detach func()) {
	fns := make([]func(o *bridge.Options), 0, len(optFns)+1)
	fns = append(fns, func(o *bridge.Options) { o.Registry = defaultRegistry })
	b := bridge.New(append(fns, optFns...)...)
	return b.Attach(p)
}

// UseProperty evaluates fn against the store for key.
func UseProperty[T any](fn selector.Func[T], key ...string) T {
	return selector.Select(GetStore(key...), fn)
}

// WatchProperty watches fn on the store for key; see selector.Watch.
func WatchProperty[T any](fn selector.Func[T], onChange func(T), key ...string) *selector.Watcher[T] {
	return selector.Watch(GetStore(key...), fn, onChange)
}

// UseChatState returns the whole current state.
func UseChatState(key ...string) core.ChatState { return GetStore(key...).GetState() }

// UseMessages returns the conversation.
func UseMessages(key ...string) []core.Message { return UseProperty(selector.Messages, key...) }

// UseStatus returns the lifecycle status.
func UseStatus(key ...string) core.Status { return UseProperty(selector.Status, key...) }

// UseError returns the last producer error.
func UseError(key ...string) error { return UseProperty(selector.Error, key...) }

// UseID returns the session id.
func UseID(key ...string) string { return UseProperty(selector.ID, key...) }

// UseSendMessage returns the current send binding.
func UseSendMessage(key ...string) func(ctx context.Context, msg core.Message) error {
	return UseProperty(selector.SendMessage, key...)
}

// UseActions returns the current action bindings.
func UseActions(key ...string) core.Actions { return UseProperty(selector.Actions, key...) }

// UseMessageCount returns the number of messages.
func UseMessageCount(key ...string) int { return UseProperty(selector.MessageCount, key...) }

// UseHasMessages reports whether any message exists.
func UseHasMessages(key ...string) bool { return UseProperty(selector.HasMessages, key...) }

// UseIsLoading reports whether a request is in flight.
func UseIsLoading(key ...string) bool { return UseProperty(selector.IsLoading, key...) }

// UseLatestMessage returns the last message or nil.
func UseLatestMessage(key ...string) *core.Message {
	return UseProperty(selector.LatestMessage, key...)
}

// UseMessagesByRole returns the messages authored by role.
func UseMessagesByRole(role core.Role, key ...string) []core.Message {
	return UseProperty(selector.MessagesByRole(role), key...)
}

// UseStatusInfo returns the status summary.
func UseStatusInfo(key ...string) selector.StatusSummary {
	return UseProperty(selector.StatusInfo, key...)
}
