package store

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/chatstore/core"
	"github.com/hupe1980/chatstore/logging"
)

// DefaultName is the observability name given to stores without an explicit one.
const DefaultName = "ai-chat-store"

// Listener is invoked synchronously after every committed write with the new
// and the previous state.
type Listener func(next, prev core.ChatState)

// SetFunc is the write primitive. Middleware wraps it.
type SetFunc func(patch core.Patch, replace bool, label string)

// Middleware decorates the write path of a store, e.g. to log or to veto
// writes. A middleware that does not call next drops the write.
type Middleware func(next SetFunc) SetFunc

// Options configures a Store.
type Options struct {
	// Name identifies the store in logs.
	Name string
	// Logger receives store diagnostics (defaults to NoOpLogger).
	Logger logging.Logger
	// ErrorHandler receives listener failures. Defaults to logging them at
	// error level through Logger.
	// With neither set, failures go to slog's default logger so they are
	// never dropped silently.
	ErrorHandler func(err error)
	// Middleware is applied outermost first.
	Middleware []Middleware
}

type subscription struct {
	fn     Listener
	active atomic.Bool
}

// notification is one committed write waiting to be delivered.
type notification struct {
	next, prev core.ChatState
	label      string
	subs       []*subscription
}

// Store is a single observable ChatState container. All methods are safe for
// concurrent use.
//
// Writes are applied in call order and delivered to listeners in that same
// order. Only one goroutine delivers at a time: a write committed while
// another delivery is running is queued and delivered by the running
// goroutine once the current round ends. A listener may therefore read or
// write the store it is subscribed to; its write is seen by every listener
// after the current write, never interleaved with it.
type Store struct {
	name    string
	logger  logging.Logger
	onError func(err error)
	set     SetFunc

	mu        sync.RWMutex
	state     core.ChatState
	version   uint64
	listeners []*subscription
	queue     []notification
	flushing  bool
}

// New creates a store holding initial.
func New(initial core.ChatState, optFns ...func(o *Options)) *Store {
	opts := Options{
		Name:   DefaultName,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Store{
		name:    opts.Name,
		logger:  opts.Logger,
		onError: opts.ErrorHandler,
		state:   initial,
	}

	if s.onError == nil {
		s.onError = s.reportListenerError
	}

	s.set = s.commit
	for i := len(opts.Middleware) - 1; i >= 0; i-- {
		s.set = opts.Middleware[i](s.set)
	}

	return s
}

// NewIdle creates a store holding core.IdleState().
func NewIdle(optFns ...func(o *Options)) *Store {
	return New(core.IdleState(), optFns...)
}

// Name returns the observability name of the store.
func (s *Store) Name() string { return s.name }

// GetState returns the current snapshot.
func (s *Store) GetState() core.ChatState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Version returns the number of writes committed so far.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers a listener and returns a function removing it again.
// The returned function is idempotent. A listener added while a write is
// notifying is not invoked for that write.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscription{fn: fn}
	sub.active.Store(true)

	s.mu.Lock()
	next := make([]*subscription, len(s.listeners), len(s.listeners)+1)
	copy(next, s.listeners)
	s.listeners = append(next, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(sub) })
	}
}

func (s *Store) remove(sub *subscription) {
	sub.active.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]*subscription, 0, len(s.listeners))
	for _, l := range s.listeners {
		if l != sub {
			next = append(next, l)
		}
	}
	s.listeners = next
}

// ListenerCount returns the number of active listeners.
func (s *Store) ListenerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

// SetState merges patch onto the current state (or, with replace, onto the
// idle defaults) and notifies every listener. label names the origin of the
// write for observability only.
//
// Every call notifies, including one whose patch changes nothing.
func (s *Store) SetState(patch core.Patch, replace bool, label string) {
	s.set(patch, replace, label)
}

// Set is SetState(patch, false, "").
func (s *Store) Set(patch core.Patch) { s.set(patch, false, "") }

// Replace swaps in a complete state.
func (s *Store) Replace(state core.ChatState, label string) {
	s.set(core.SnapshotPatch(state), true, label)
}

func (s *Store) commit(patch core.Patch, replace bool, label string) {
	s.mu.Lock()
	prev := s.state
	base := prev
	if replace {
		base = core.IdleState()
	}
	next := patch.Apply(base)
	s.state = next
	s.version++
	s.queue = append(s.queue, notification{next: next, prev: prev, label: label, subs: s.listeners})
	if s.flushing {
		s.mu.Unlock()
		return
	}
	s.flushing = true
	s.mu.Unlock()

	s.flush()
}

// flush delivers queued notifications in commit order until the queue is
// empty.
func (s *Store) flush() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.flushing = false
			s.mu.Unlock()
			return
		}
		n := s.queue[0]
		s.queue[0] = notification{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.deliver(n)
	}
}

func (s *Store) deliver(n notification) {
	start := time.Now()
	for _, sub := range n.subs {
		if !sub.active.Load() {
			continue
		}
		s.invoke(sub.fn, n.next, n.prev)
	}

	if l, ok := s.logger.(stateChangeLogger); ok {
		l.LogStateChange(n.label, len(n.subs), time.Since(start))
		return
	}
	s.logger.Debug("store.set_state", "store", s.name, "label", n.label, "listeners", len(n.subs))
}

func (s *Store) reportListenerError(err error) {
	logger := s.logger
	if _, ok := logger.(logging.NoOpLogger); ok {
		logger = logging.NewDefaultSlogLogger()
	}
	logger.Error("store.listener.failed", "store", s.name, "error", err.Error())
}

// stateChangeLogger is implemented by loggers with a dedicated write helper
// (logging.StoreLogger).
type stateChangeLogger interface {
	LogStateChange(label string, listeners int, dur time.Duration)
}

func (s *Store) invoke(fn Listener, next, prev core.ChatState) {
	defer func() {
		if r := recover(); r != nil {
			s.onError(&ListenerPanicError{Store: s.name, Value: r, Stack: debug.Stack()})
		}
	}()
	fn(next, prev)
}

// ListenerPanicError reports a listener that panicked during notification.
// The write it was notified about had already been committed.
type ListenerPanicError struct {
	Store string
	Value any
	Stack []byte
}

func (e *ListenerPanicError) Error() string {
	return fmt.Sprintf("store %s: listener panicked: %v", e.Store, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *ListenerPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
