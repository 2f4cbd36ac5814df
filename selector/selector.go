package selector

import (
	"sync"

	"github.com/hupe1980/chatstore/core"
	"github.com/hupe1980/chatstore/store"
)

// Func projects a ChatState onto a derived value. It must be pure.
type Func[T any] func(state core.ChatState) T

// Select evaluates fn once against the current state of s.
func Select[T any](s *store.Store, fn Func[T]) T {
	return fn(s.GetState())
}

// Watcher tracks the value of a selector over a store.
type Watcher[T any] struct {
	mu          sync.Mutex
	value       T
	closed      bool
	unsubscribe func()
}

// Watch evaluates fn immediately and again after every write to s. onChange
// (which may be nil) is called only when the new value is not Shallow-equal to
// the last delivered one.
func Watch[T any](s *store.Store, fn Func[T], onChange func(T)) *Watcher[T] {
	return WatchWith(s, fn, func(a, b T) bool { return Shallow(a, b) }, onChange)
}

// WatchWith is Watch with a custom equality.
func WatchWith[T any](s *store.Store, fn Func[T], eq func(a, b T) bool, onChange func(T)) *Watcher[T] {
	w := &Watcher[T]{}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.unsubscribe = s.Subscribe(func(next, _ core.ChatState) {
		v := fn(next)

		w.mu.Lock()
		if w.closed || eq(w.value, v) {
			w.mu.Unlock()
			return
		}
		w.value = v
		w.mu.Unlock()

		if onChange != nil {
			onChange(v)
		}
	})
	w.value = fn(s.GetState())

	return w
}

// Value returns the last delivered value.
func (w *Watcher[T]) Value() T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher[T]) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()
	w.unsubscribe()
}
