package modelcache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ComputeFunc produces the value for a lazy cache entry. It runs on the first
// fetch after registration or invalidation; its latency is the caller's.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// LazyRegistry holds named zero-argument computations per owner and memoizes
// their results through a Store. Fetch is a three-way branch: stored value,
// compute-and-store, or total miss.
type LazyRegistry struct {
	store  Store
	binder *Binder
	policy CachePolicy

	group singleflight.Group

	mu       sync.RWMutex
	computes map[cacheKey]ComputeFunc
	names    map[string]map[string]struct{}
	ttls     map[cacheKey]time.Duration
}

// NewLazyRegistry creates a registry caching through store and installing
// accessors on binder.
func NewLazyRegistry(store Store, binder *Binder, policy CachePolicy) *LazyRegistry {
	if policy == nil {
		policy = NopPolicy()
	}
	return &LazyRegistry{
		store:    store,
		binder:   binder,
		policy:   policy,
		computes: make(map[cacheKey]ComputeFunc),
		names:    make(map[string]map[string]struct{}),
		ttls:     make(map[cacheKey]time.Duration),
	}
}

// Register records compute under (owner, name) and installs a public lazy
// accessor. A nil compute or a name that already resolves on owner (own or
// inherited) aborts the registration without touching any state.
func (r *LazyRegistry) Register(owner, name string, compute ComputeFunc, ttl time.Duration) error {
	if compute == nil {
		return &MissingComputeError{Owner: owner, Name: name}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.binder.Resolves(owner, name) {
		return &DuplicateNameError{Owner: owner, Name: name}
	}
	if err := r.binder.InstallLazy(owner, name, func(ctx context.Context) ([]byte, bool, error) {
		return r.Fetch(ctx, owner, name)
	}); err != nil {
		return err
	}

	key := cacheKey{owner: owner, name: name}
	r.computes[key] = compute
	if r.names[owner] == nil {
		r.names[owner] = make(map[string]struct{})
	}
	r.names[owner][name] = struct{}{}
	if ttl > 0 {
		r.ttls[key] = ttl
	}
	return nil
}

// Fetch returns the cached value for (owner, name), computing and storing it
// on first use. A key with neither a cached value nor a registered
// computation is a miss, not an error. Concurrent first fetches for the same
// key share a single in-flight computation.
func (r *LazyRegistry) Fetch(ctx context.Context, owner, name string) ([]byte, bool, error) {
	key := cacheKey{owner: owner, name: name}
	storeKey := key.storeKey()

	body, ok, err := r.store.Get(ctx, storeKey)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return body, true, nil
	}

	r.mu.RLock()
	compute := r.computes[key]
	ttl := r.ttls[key]
	r.mu.RUnlock()
	if compute == nil {
		return nil, false, nil
	}

	value, err, _ := r.group.Do(storeKey, func() (any, error) {
		// Another caller may have stored the value while this one waited.
		body, ok, err := r.store.Get(ctx, storeKey)
		if err != nil {
			return nil, err
		}
		if ok {
			return body, nil
		}
		computed, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if r.policy.ShouldStore(owner, name, computed) {
			if err := r.store.Put(ctx, storeKey, computed, r.policy.TTL(owner, name, ttl)); err != nil {
				return nil, err
			}
		}
		return computed, nil
	})
	if err != nil {
		return nil, false, err
	}
	body, _ = value.([]byte)
	return body, true, nil
}

// Invalidate clears cached values. With names it clears exactly those keys;
// without it clears every name registered under owner. Registered
// computations survive, so later fetches recompute. Missing keys are ignored.
func (r *LazyRegistry) Invalidate(ctx context.Context, owner string, names ...string) error {
	if len(names) == 0 {
		r.mu.RLock()
		for name := range r.names[owner] {
			names = append(names, name)
		}
		r.mu.RUnlock()
	}
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, cacheKey{owner: owner, name: name}.storeKey())
	}
	return r.store.DeleteMany(ctx, keys...)
}

// Registered reports whether a computation exists for (owner, name).
func (r *LazyRegistry) Registered(owner, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.computes[cacheKey{owner: owner, name: name}]
	return ok
}
