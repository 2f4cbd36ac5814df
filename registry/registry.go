package registry

import (
	"sync"

	"github.com/hupe1980/chatstore/logging"
	"github.com/hupe1980/chatstore/store"
)

// DefaultKey is the key used when no key (or the empty key) is given.
const DefaultKey = "default"

// Options configures a Registry.
type Options struct {
	// Logger receives registry diagnostics (defaults to NoOpLogger).
	Logger logging.Logger
	// StoreOptions are applied to every store the registry creates.
	StoreOptions []func(o *store.Options)
}

// Registry maps string keys to lazily created stores. It is safe for
// concurrent use; concurrent Gets for the same absent key yield one store.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*store.Store
	order  []string

	logger    logging.Logger
	storeOpts []func(o *store.Options)
}

// New constructs an empty registry.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Registry{
		stores:    make(map[string]*store.Store),
		logger:    opts.Logger,
		storeOpts: opts.StoreOptions,
	}
}

// SetLogger swaps the logger used for registry diagnostics and for stores
// created afterwards.
func (r *Registry) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Get returns the store registered under key, creating an idle one first if
// none exists.
func (r *Registry) Get(key string) *store.Store {
	key = normalize(key)

	r.mu.RLock()
	s, ok := r.stores[key]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[key]; ok {
		return s
	}
	return r.createLocked(key)
}

// Lookup returns the store under key without creating one.
func (r *Registry) Lookup(key string) (*store.Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[normalize(key)]
	return s, ok
}

// Remove unregisters key. Holders of the removed store keep a working but
// detached instance; the next Get creates a fresh one. Unknown keys are ignored.
func (r *Registry) Remove(key string) {
	key = normalize(key)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[key]; !ok {
		return
	}
	delete(r.stores, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Debug("registry.store.removed", "key", key)
}

// Clear unregisters every key.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.stores)
	r.stores = make(map[string]*store.Store)
	r.order = nil
	r.logger.Debug("registry.cleared", "removed", n)
}

// Keys returns the registered keys in registration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// Len returns the number of registered stores.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

// NewCustomStore creates an idle store that is not registered under any key.
// The registry's store options are applied before optFns.
func (r *Registry) NewCustomStore(optFns ...func(o *store.Options)) *store.Store {
	r.mu.RLock()
	fns := r.baseStoreOptions()
	r.mu.RUnlock()
	return store.NewIdle(append(fns, optFns...)...)
}

// createLocked allocates and registers a store; caller must hold the write lock.
func (r *Registry) createLocked(key string) *store.Store {
	s := store.NewIdle(r.baseStoreOptions()...)
	r.stores[key] = s
	r.order = append(r.order, key)
	r.logger.Debug("registry.store.created", "key", key)
	return s
}

func (r *Registry) baseStoreOptions() []func(o *store.Options) {
	logger := r.logger
	fns := make([]func(o *store.Options), 0, len(r.storeOpts)+1)
	fns = append(fns, func(o *store.Options) { o.Logger = logger })
	return append(fns, r.storeOpts...)
}

func normalize(key string) string {
	if key == "" {
		return DefaultKey
	}
	return key
}
