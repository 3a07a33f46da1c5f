package modelcache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LookupFunc resolves a single column value to a record. ok=false means the
// record does not exist; that outcome is never cached.
type LookupFunc func(ctx context.Context, key string) ([]byte, bool, error)

// ColumnRegistry memoizes keyed lookups per (owner, column) in process-local
// tables. Records found by the lookup stay in the table until the process
// exits or the table is cleared; absent records are retried on every fetch.
type ColumnRegistry struct {
	binder *Binder

	group singleflight.Group

	mu      sync.RWMutex
	lookups map[cacheKey]LookupFunc
	tables  map[cacheKey]map[string][]byte
}

// NewColumnRegistry creates a registry installing accessors on binder.
func NewColumnRegistry(binder *Binder) *ColumnRegistry {
	return &ColumnRegistry{
		binder:  binder,
		lookups: make(map[cacheKey]LookupFunc),
		tables:  make(map[cacheKey]map[string][]byte),
	}
}

// Register records lookup for (owner, column) and installs a keyed accessor.
// The accessor name defaults to "by_" + column; As overrides it. A nil
// lookup or a name that already resolves on owner aborts without touching
// any state.
func (r *ColumnRegistry) Register(owner, column string, lookup LookupFunc, opts ...RegisterOption) error {
	cfg := applyRegisterOptions(opts)
	name := cfg.accessorName
	if name == "" {
		name = "by_" + column
	}
	if lookup == nil {
		return &MissingComputeError{Owner: owner, Name: name}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.binder.Resolves(owner, name) {
		return &DuplicateNameError{Owner: owner, Name: name}
	}
	if err := r.binder.InstallKeyed(owner, name, func(ctx context.Context, key string) ([]byte, bool, error) {
		return r.Fetch(ctx, owner, column, key)
	}); err != nil {
		return err
	}

	ck := cacheKey{owner: owner, name: column}
	r.lookups[ck] = lookup
	r.tables[ck] = make(map[string][]byte)
	return nil
}

// Fetch returns the record for key under (owner, column). A table hit is
// always a present record. On a miss the lookup runs at most once per key
// across concurrent callers; a found record is stored before returning, an
// absent one is returned without writing so later fetches retry.
func (r *ColumnRegistry) Fetch(ctx context.Context, owner, column, key string) ([]byte, bool, error) {
	key = NormalizeKey(key)
	ck := cacheKey{owner: owner, name: column}

	r.mu.RLock()
	lookup := r.lookups[ck]
	table := r.tables[ck]
	body, hit := table[key]
	r.mu.RUnlock()
	if hit {
		return cloneBytes(body), true, nil
	}
	if lookup == nil {
		return nil, false, nil
	}

	type lookupResult struct {
		body []byte
		ok   bool
	}
	value, err, _ := r.group.Do(ck.storeKey()+"\x00"+key, func() (any, error) {
		r.mu.RLock()
		body, hit := r.tables[ck][key]
		r.mu.RUnlock()
		if hit {
			return lookupResult{body: body, ok: true}, nil
		}
		body, ok, err := lookup(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			r.mu.Lock()
			r.tables[ck][key] = cloneBytes(body)
			r.mu.Unlock()
		}
		return lookupResult{body: body, ok: ok}, nil
	})
	if err != nil {
		return nil, false, err
	}
	res := value.(lookupResult)
	if !res.ok {
		return nil, false, nil
	}
	return cloneBytes(res.body), true, nil
}

// Clear drops the memoized table for (owner, column). The lookup stays
// registered, so later fetches repopulate it.
func (r *ColumnRegistry) Clear(owner, column string) {
	ck := cacheKey{owner: owner, name: column}
	r.mu.Lock()
	if _, ok := r.tables[ck]; ok {
		r.tables[ck] = make(map[string][]byte)
	}
	r.mu.Unlock()
}

// Registered reports whether a lookup exists for (owner, column).
func (r *ColumnRegistry) Registered(owner, column string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.lookups[cacheKey{owner: owner, name: column}]
	return ok
}
