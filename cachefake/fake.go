package cachefake

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goforj/modelcache"
)

// Op identifies a store operation for assertions.
type Op string

const (
	OpExists     Op = "exists"
	OpGet        Op = "get"
	OpPut        Op = "put"
	OpDelete     Op = "delete"
	OpDeleteMany Op = "delete_many"
	OpFlush      Op = "flush"
)

// Fake exposes a deterministic in-memory store plus assertion helpers for tests.
// It wraps the memory store so no external services are needed.
type Fake struct {
	store  modelcache.Store
	engine *modelcache.Engine
	counts map[Op]map[string]int
	mu     sync.Mutex
}

// New creates a Fake engine backed by an in-memory store.
func New(opts ...modelcache.EngineOption) *Fake {
	f := &Fake{
		counts: make(map[Op]map[string]int),
	}
	store := &countingStore{inner: modelcache.NewMemoryStore(context.Background()), onCount: f.record}
	f.store = store
	f.engine = modelcache.NewEngine(store, opts...)
	return f
}

// Engine returns the engine facade to inject into code under test.
func (f *Fake) Engine() *modelcache.Engine { return f.engine }

// Store returns the counting store itself, for code taking a bare Store.
func (f *Fake) Store() modelcache.Store { return f.store }

// Reset clears recorded counts.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts = make(map[Op]map[string]int)
}

// AssertCalled verifies key was touched by op the expected number of times.
func (f *Fake) AssertCalled(t *testing.T, op Op, key string, times int) {
	t.Helper()
	if got := f.Count(op, key); got != times {
		t.Fatalf("expected %s %q called %d times, got %d", op, key, times, got)
	}
}

// AssertNotCalled ensures key was never touched by op.
func (f *Fake) AssertNotCalled(t *testing.T, op Op, key string) {
	t.Helper()
	if got := f.Count(op, key); got != 0 {
		t.Fatalf("expected %s %q not called, got %d", op, key, got)
	}
}

// AssertTotal ensures the total call count for an op matches times.
func (f *Fake) AssertTotal(t *testing.T, op Op, times int) {
	t.Helper()
	if got := f.Total(op); got != times {
		t.Fatalf("expected %s total=%d, got %d", op, times, got)
	}
}

// Count returns calls for op+key.
func (f *Fake) Count(op Op, key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts[op] == nil {
		return 0
	}
	return f.counts[op][key]
}

// Total returns total calls for an op across keys.
func (f *Fake) Total(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int
	for _, v := range f.counts[op] {
		sum += v
	}
	return sum
}

func (f *Fake) record(op Op, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts[op] == nil {
		f.counts[op] = make(map[string]int)
	}
	f.counts[op][key]++
}

// countingStore wraps a Store to record calls.
type countingStore struct {
	inner   modelcache.Store
	onCount func(Op, string)
}

func (s *countingStore) Driver() modelcache.Driver { return s.inner.Driver() }

func (s *countingStore) Exists(ctx context.Context, key string) (bool, error) {
	s.bump(OpExists, key)
	return s.inner.Exists(ctx, key)
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.bump(OpGet, key)
	return s.inner.Get(ctx, key)
}

func (s *countingStore) Put(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	s.bump(OpPut, key)
	return s.inner.Put(ctx, key, val, ttl)
}

func (s *countingStore) Delete(ctx context.Context, key string) error {
	s.bump(OpDelete, key)
	return s.inner.Delete(ctx, key)
}

func (s *countingStore) DeleteMany(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		s.bump(OpDeleteMany, k)
	}
	return s.inner.DeleteMany(ctx, keys...)
}

func (s *countingStore) Flush(ctx context.Context) error {
	s.bump(OpFlush, "")
	return s.inner.Flush(ctx)
}

func (s *countingStore) bump(op Op, key string) {
	if s.onCount != nil {
		s.onCount(op, key)
	}
}
