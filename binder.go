package modelcache

import (
	"context"
	"sync"
)

// LazyAccessor is the installed form of a zero-argument cached computation.
// The bool reports whether a value was available (hit or computed).
type LazyAccessor func(ctx context.Context) ([]byte, bool, error)

// KeyedAccessor is the installed form of a column lookup accessor.
type KeyedAccessor func(ctx context.Context, key string) ([]byte, bool, error)

// Binder is the dispatch table standing in for dynamic method installation:
// registries install accessors here and callers resolve them by owner and
// name through ordinary lookup, including names inherited from an owner's
// declared parent chain.
type Binder struct {
	mu      sync.RWMutex
	parents map[string]string
	lazy    map[string]map[string]LazyAccessor
	keyed   map[string]map[string]KeyedAccessor
}

// NewBinder returns an empty accessor table.
func NewBinder() *Binder {
	return &Binder{
		parents: make(map[string]string),
		lazy:    make(map[string]map[string]LazyAccessor),
		keyed:   make(map[string]map[string]KeyedAccessor),
	}
}

// SetParent declares that child inherits parent's accessors. A child has at
// most one parent; setting again replaces the link.
func (b *Binder) SetParent(child, parent string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.parents[child] = parent
}

// Resolves reports whether name resolves on owner, either installed directly
// or inherited through the parent chain. Both accessor kinds count: a lazy
// name shadows a keyed one and vice versa.
func (b *Binder) Resolves(owner, name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, current := range b.ancestry(owner) {
		if _, ok := b.lazy[current][name]; ok {
			return true
		}
		if _, ok := b.keyed[current][name]; ok {
			return true
		}
	}
	return false
}

// InstallLazy adds a lazy accessor. The caller is expected to have checked
// Resolves first; a direct collision still errors.
func (b *Binder) InstallLazy(owner, name string, fn LazyAccessor) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.lazy[owner][name]; ok {
		return &DuplicateNameError{Owner: owner, Name: name}
	}
	if _, ok := b.keyed[owner][name]; ok {
		return &DuplicateNameError{Owner: owner, Name: name}
	}
	if b.lazy[owner] == nil {
		b.lazy[owner] = make(map[string]LazyAccessor)
	}
	b.lazy[owner][name] = fn
	return nil
}

// InstallKeyed adds a keyed accessor.
func (b *Binder) InstallKeyed(owner, name string, fn KeyedAccessor) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.lazy[owner][name]; ok {
		return &DuplicateNameError{Owner: owner, Name: name}
	}
	if _, ok := b.keyed[owner][name]; ok {
		return &DuplicateNameError{Owner: owner, Name: name}
	}
	if b.keyed[owner] == nil {
		b.keyed[owner] = make(map[string]KeyedAccessor)
	}
	b.keyed[owner][name] = fn
	return nil
}

// Uninstall removes an accessor installed directly on owner. Used to roll
// back a registration that failed partway.
func (b *Binder) Uninstall(owner, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.lazy[owner], name)
	delete(b.keyed[owner], name)
}

// LazyAccessor resolves a lazy accessor on owner or its ancestors.
func (b *Binder) LazyAccessor(owner, name string) (LazyAccessor, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, current := range b.ancestry(owner) {
		if fn, ok := b.lazy[current][name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// KeyedAccessor resolves a keyed accessor on owner or its ancestors.
func (b *Binder) KeyedAccessor(owner, name string) (KeyedAccessor, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, current := range b.ancestry(owner) {
		if fn, ok := b.keyed[current][name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// CallLazy dispatches a lazy accessor; an unresolved name is a miss, not an
// error, matching the fetch contract.
func (b *Binder) CallLazy(ctx context.Context, owner, name string) ([]byte, bool, error) {
	fn, ok := b.LazyAccessor(owner, name)
	if !ok {
		return nil, false, nil
	}
	return fn(ctx)
}

// CallKeyed dispatches a keyed accessor.
func (b *Binder) CallKeyed(ctx context.Context, owner, name, key string) ([]byte, bool, error) {
	fn, ok := b.KeyedAccessor(owner, name)
	if !ok {
		return nil, false, nil
	}
	return fn(ctx, key)
}

// ancestry returns owner followed by each parent up the chain, guarding
// against cycles. Callers must hold at least the read lock.
func (b *Binder) ancestry(owner string) []string {
	chain := make([]string, 0, 4)
	seen := make(map[string]struct{})
	for current := owner; current != ""; {
		if _, ok := seen[current]; ok {
			break
		}
		seen[current] = struct{}{}
		chain = append(chain, current)
		current = b.parents[current]
	}
	return chain
}
