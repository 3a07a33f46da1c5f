package modelcache

import (
	"context"
	"sync"
	"time"
)

// Engine is the public facade. It wires a Store, a Binder, and the lazy and
// column registries together, tracks per-owner settings, and reports
// operations to an optional Observer.
type Engine struct {
	store  Store
	binder *Binder
	lazy   *LazyRegistry
	column *ColumnRegistry
	policy CachePolicy

	defaults Settings
	observer Observer

	mu       sync.RWMutex
	settings map[string]Settings
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithDefaults sets the engine-wide fallback settings merged under every
// per-owner registration.
func WithDefaults(s Settings) EngineOption {
	return func(e *Engine) {
		e.defaults = s
	}
}

// WithPolicy installs a CachePolicy consulted on every lazy store write.
func WithPolicy(p CachePolicy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithObserver attaches an observer to receive operation events.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		e.observer = o
	}
}

// NewEngine creates an engine caching lazy values through store.
//
// Example:
//
//	ctx := context.Background()
//	e := modelcache.NewEngine(modelcache.NewMemoryStore(ctx))
//	_ = e.RegisterLazy("User", "expensive_roles", computeRoles)
//	body, ok, _ := e.Call(ctx, "User", "expensive_roles")
func NewEngine(store Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		binder:   NewBinder(),
		defaults: Settings{TTL: defaultStoreTTL, Method: MethodLocal},
		policy:   NopPolicy(),
		settings: make(map[string]Settings),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.lazy = NewLazyRegistry(store, e.binder, e.policy)
	e.column = NewColumnRegistry(e.binder)
	return e
}

// Store returns the underlying store implementation.
func (e *Engine) Store() Store {
	return e.store
}

// Driver reports the underlying store driver.
func (e *Engine) Driver() Driver {
	return e.store.Driver()
}

// SetParent declares that child inherits parent's accessors. Registrations
// on child then refuse names already resolvable through parent.
func (e *Engine) SetParent(child, parent string) {
	e.binder.SetParent(child, parent)
}

// RegisterLazy records compute under (owner, name) and installs a lazy
// accessor. WithTTL and WithMethod adjust the owner's recorded settings for
// this registration. Failure leaves no accessor and no settings behind.
func (e *Engine) RegisterLazy(owner, name string, compute ComputeFunc, opts ...RegisterOption) error {
	cfg := applyRegisterOptions(opts)
	ttl := e.resolveTTL(owner, cfg.settings)
	if err := e.lazy.Register(owner, name, compute, ttl); err != nil {
		return err
	}
	e.recordSettings(owner, cfg.settings)
	return nil
}

// RegisterColumn records lookup under (owner, column) and installs a keyed
// accessor named "by_" + column unless As overrides it.
func (e *Engine) RegisterColumn(owner, column string, lookup LookupFunc, opts ...RegisterOption) error {
	cfg := applyRegisterOptions(opts)
	if err := e.column.Register(owner, column, lookup, opts...); err != nil {
		return err
	}
	e.recordSettings(owner, cfg.settings)
	return nil
}

// Fetch returns the lazy value for (owner, name), computing it on first use.
// An unregistered name with no stored value is a miss, not an error.
func (e *Engine) Fetch(ctx context.Context, owner, name string) ([]byte, bool, error) {
	start := time.Now()
	body, ok, err := e.lazy.Fetch(ctx, owner, name)
	e.observe(ctx, "fetch", owner, name, ok, err, start)
	return body, ok, err
}

// FetchColumn returns the record for key under (owner, column).
func (e *Engine) FetchColumn(ctx context.Context, owner, column, key string) ([]byte, bool, error) {
	start := time.Now()
	body, ok, err := e.column.Fetch(ctx, owner, column, key)
	e.observe(ctx, "fetch_column", owner, column, ok, err, start)
	return body, ok, err
}

// Invalidate clears cached lazy values for owner: the named ones, or all of
// them when no names are given. Registrations survive.
func (e *Engine) Invalidate(ctx context.Context, owner string, names ...string) error {
	start := time.Now()
	err := e.lazy.Invalidate(ctx, owner, names...)
	e.observe(ctx, "invalidate", owner, "", err == nil, err, start)
	return err
}

// ClearColumn drops the memoized table for (owner, column).
func (e *Engine) ClearColumn(owner, column string) {
	e.column.Clear(owner, column)
}

// Call invokes the accessor installed under (owner, name), following the
// ancestry declared with SetParent. An unresolved name is a miss.
func (e *Engine) Call(ctx context.Context, owner, name string) ([]byte, bool, error) {
	start := time.Now()
	body, ok, err := e.binder.CallLazy(ctx, owner, name)
	e.observe(ctx, "call", owner, name, ok, err, start)
	return body, ok, err
}

// CallKeyed invokes the keyed accessor installed under (owner, name).
func (e *Engine) CallKeyed(ctx context.Context, owner, name, key string) ([]byte, bool, error) {
	start := time.Now()
	body, ok, err := e.binder.CallKeyed(ctx, owner, name, key)
	e.observe(ctx, "call_keyed", owner, name, ok, err, start)
	return body, ok, err
}

// Accessor returns the installed lazy accessor for (owner, name), or nil
// when the name does not resolve. The func is suitable for binding onto a
// model value.
func (e *Engine) Accessor(owner, name string) LazyAccessor {
	fn, _ := e.binder.LazyAccessor(owner, name)
	return fn
}

// KeyedAccessor returns the installed keyed accessor for (owner, name).
func (e *Engine) KeyedAccessor(owner, name string) KeyedAccessor {
	fn, _ := e.binder.KeyedAccessor(owner, name)
	return fn
}

// Resolves reports whether name resolves on owner, own or inherited.
func (e *Engine) Resolves(owner, name string) bool {
	return e.binder.Resolves(owner, name)
}

// Settings returns the owner's recorded settings merged over the engine
// defaults. Owners never registered get the defaults unchanged.
func (e *Engine) Settings(owner string) Settings {
	e.mu.RLock()
	s := e.settings[owner]
	e.mu.RUnlock()
	return s.Merge(e.defaults)
}

func (e *Engine) resolveTTL(owner string, overrides Settings) time.Duration {
	e.mu.RLock()
	recorded := e.settings[owner]
	e.mu.RUnlock()
	return overrides.Merge(recorded).Merge(e.defaults).TTL
}

func (e *Engine) recordSettings(owner string, s Settings) {
	if s.TTL <= 0 && s.Method == "" {
		return
	}
	e.mu.Lock()
	e.settings[owner] = s.Merge(e.settings[owner])
	e.mu.Unlock()
}

func (e *Engine) observe(ctx context.Context, op, owner, name string, hit bool, err error, start time.Time) {
	if e.observer == nil {
		return
	}
	e.observer.OnCacheOp(ctx, op, owner, name, hit, err, time.Since(start), e.Driver())
}
