package bridge

import (
	"context"
	"sync"

	"github.com/hupe1980/chatstore/core"
	"github.com/hupe1980/chatstore/logging"
	"github.com/hupe1980/chatstore/registry"
	"github.com/hupe1980/chatstore/selector"
	"github.com/hupe1980/chatstore/store"
)

// LabelExternalSync is the write label used for every producer snapshot.
const LabelExternalSync = "syncFromUseChat"

// Producer is a chat engine publishing immutable state snapshots.
type Producer interface {
	// Snapshot returns the current state.
	Snapshot() core.ChatState
	// Subscribe registers fn for every subsequent snapshot.
	Subscribe(fn func(core.ChatState)) (unsubscribe func())
}

// ActionsVersioner is implemented by producers that can tell when their
// action bindings change. The version must change whenever any binding is
// replaced. Snapshots from other producers are never deduplicated.
type ActionsVersioner interface {
	ActionsVersion() uint64
}

// Options configures a Bridge.
type Options struct {
	// Key selects the registry store. Ignored when Store is set.
	Key string
	// Store is an explicit target that bypasses the registry.
	Store *store.Store
	// Registry is consulted when Store is nil. Required in that case.
	Registry *registry.Registry
	// Logger receives sync diagnostics (defaults to NoOpLogger).
	Logger logging.Logger
}

// Bridge copies producer snapshots into one store. Data flows one way only:
// the bridge never reads the store to drive the producer.
type Bridge struct {
	key    string
	target *store.Store
	logger logging.Logger

	mu       sync.Mutex
	attaches uint64
	last     syncMark
	hasLast  bool
}

// syncMark identifies the last deduplicable write: the attachment it came
// from, the producer's binding version at that time and its data fields.
type syncMark struct {
	attach  uint64
	version uint64
	data    dataFields
}

type dataFields struct {
	ID       string
	Messages []core.Message
	Status   core.Status
	Error    error
}

func dataOf(s core.ChatState) dataFields {
	return dataFields{ID: s.ID, Messages: s.Messages, Status: s.Status, Error: s.Error}
}

// New constructs a bridge. The target store is resolved once, here; a later
// Remove of the key in the registry does not redirect the bridge.
func New(optFns ...func(o *Options)) *Bridge {
	opts := Options{
		Key:    registry.DefaultKey,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	target := opts.Store
	if target == nil {
		if opts.Registry == nil {
			panic("bridge: either Store or Registry must be set")
		}
		target = opts.Registry.Get(opts.Key)
	}

	return &Bridge{
		key:    opts.Key,
		target: target,
		logger: opts.Logger,
	}
}

// Target returns the store the bridge writes into.
func (b *Bridge) Target() *store.Store { return b.target }

// Sync writes snapshot into the target with label LabelExternalSync. A
// direct Sync carries no binding version, so it always writes and reports
// true.
func (b *Bridge) Sync(snapshot core.ChatState) bool {
	b.mu.Lock()
	b.hasLast = false
	b.mu.Unlock()

	b.write(snapshot)
	return true
}

// Attach syncs the producer's current snapshot and then every snapshot it
// emits, until the returned detach function is called. When p implements
// ActionsVersioner, a snapshot whose data fields are identical to the last
// one synced from the same attachment under the same binding version is
// skipped.
func (b *Bridge) Attach(p Producer) (detach func()) {
	b.mu.Lock()
	b.attaches++
	id := b.attaches
	b.hasLast = false
	b.mu.Unlock()

	versioner, _ := p.(ActionsVersioner)

	unsubscribe := p.Subscribe(func(s core.ChatState) { b.syncFrom(id, versioner, s) })
	b.syncFrom(id, versioner, p.Snapshot())

	var once sync.Once
	return func() { once.Do(unsubscribe) }
}

func (b *Bridge) syncFrom(attach uint64, v ActionsVersioner, snapshot core.ChatState) bool {
	if v == nil {
		return b.Sync(snapshot)
	}

	mark := syncMark{attach: attach, version: v.ActionsVersion(), data: dataOf(snapshot)}

	b.mu.Lock()
	if b.hasLast && b.last.attach == mark.attach && b.last.version == mark.version &&
		selector.Shallow(b.last.data, mark.data) {
		b.mu.Unlock()
		return false
	}
	b.last = mark
	b.hasLast = true
	b.mu.Unlock()

	b.write(snapshot)
	return true
}

func (b *Bridge) write(snapshot core.ChatState) {
	b.logger.Debug("bridge.sync",
		"key", b.key,
		"status", string(snapshot.Status),
		"messages", len(snapshot.Messages),
	)

	b.target.SetState(core.SnapshotPatch(snapshot), false, LabelExternalSync)
}

// Run syncs snapshots received from ch until ch is closed (returning nil) or
// ctx is done (returning ctx.Err()).
func (b *Bridge) Run(ctx context.Context, ch <-chan core.ChatState) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-ch:
			if !ok {
				return nil
			}
			b.Sync(s)
		}
	}
}
