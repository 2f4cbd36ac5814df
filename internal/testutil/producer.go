package testutil

import (
	"sync"

	"github.com/hupe1980/chatstore/core"
)

// StubProducer is a hand-driven producer: Emit publishes a snapshot to every
// subscriber synchronously.
type StubProducer struct {
	mu      sync.Mutex
	current core.ChatState
	subs    map[int]func(core.ChatState)
	nextID  int
	version uint64
}

// NewStubProducer creates a producer whose initial snapshot is initial.
func NewStubProducer(initial core.ChatState) *StubProducer {
	return &StubProducer{current: initial, subs: make(map[int]func(core.ChatState))}
}

// Snapshot returns the last emitted snapshot.
func (p *StubProducer) Snapshot() core.ChatState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Subscribe registers fn for subsequent emissions.
func (p *StubProducer) Subscribe(fn func(core.ChatState)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// ActionsVersion reports the binding version; Rebind bumps it.
func (p *StubProducer) ActionsVersion() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

// Rebind bumps the binding version and emits s, which should carry the new
// action bindings.
func (p *StubProducer) Rebind(s core.ChatState) {
	p.mu.Lock()
	p.version++
	p.mu.Unlock()

	p.Emit(s)
}

// Subscribers returns the number of active subscriptions.
func (p *StubProducer) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Emit records s as current and publishes it.
func (p *StubProducer) Emit(s core.ChatState) {
	p.mu.Lock()
	p.current = s
	fns := make([]func(core.ChatState), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
