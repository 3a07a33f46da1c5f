package modelcache

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

var sqliteDSNCounter uint64

// Each test gets its own shared-cache in-memory database so pooled
// connections see the same data without touching disk.
func newTestSQLStore(t *testing.T) Store {
	t.Helper()
	n := atomic.AddUint64(&sqliteDSNCounter, 1)
	dsn := fmt.Sprintf("file:modelcache_test_%d?mode=memory&cache=shared", n)
	store, err := newSQLStore(StoreConfig{
		SQLDriverName: "sqlite",
		SQLDSN:        dsn,
		SQLTable:      "model_cache_entries",
		Prefix:        "pfx",
		DefaultTTL:    time.Minute,
	})
	if err != nil {
		t.Fatalf("new sql store: %v", err)
	}
	return store
}

func TestSQLStoreRoundTrip(t *testing.T) {
	store := newTestSQLStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "alpha", []byte("one"), 0); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	body, ok, err := store.Get(ctx, "alpha")
	if err != nil || !ok || string(body) != "one" {
		t.Fatalf("get: ok=%v err=%v body=%q", ok, err, body)
	}
	present, err := store.Exists(ctx, "alpha")
	if err != nil || !present {
		t.Fatalf("exists: present=%v err=%v", present, err)
	}
	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss: ok=%v err=%v", ok, err)
	}
	if err := store.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "alpha"); ok {
		t.Fatalf("expected deletion")
	}
}

func TestSQLStoreUpsertOverwrites(t *testing.T) {
	store := newTestSQLStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Put(ctx, "k", []byte("v2"), 0); err != nil {
		t.Fatalf("second put failed: %v", err)
	}
	body, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || string(body) != "v2" {
		t.Fatalf("get: ok=%v err=%v body=%q", ok, err, body)
	}
}

func TestSQLStoreExpiry(t *testing.T) {
	store := newTestSQLStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "short", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, ok, err := store.Get(ctx, "short"); err != nil || ok {
		t.Fatalf("expected expired row to miss: ok=%v err=%v", ok, err)
	}
	// The expired row is reaped lazily.
	if _, ok, _ := store.Get(ctx, "short"); ok {
		t.Fatalf("reaped row resurfaced")
	}
}

func TestSQLStoreDeleteManyAndFlush(t *testing.T) {
	store := newTestSQLStore(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := store.Put(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("put %s failed: %v", k, err)
		}
	}
	if err := store.DeleteMany(ctx, "a", "b"); err != nil {
		t.Fatalf("delete many failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "a"); ok {
		t.Fatalf("a should be gone")
	}
	if _, ok, _ := store.Get(ctx, "c"); !ok {
		t.Fatalf("c should survive")
	}
	if err := store.DeleteMany(ctx); err != nil { // no-op path
		t.Fatalf("empty delete many failed: %v", err)
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "c"); ok {
		t.Fatalf("flush should clear the table")
	}
}

func TestSQLStoreEmptyValueIsStoredHit(t *testing.T) {
	store := newTestSQLStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "empty", nil, 0); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	body, ok, err := store.Get(ctx, "empty")
	if err != nil || !ok {
		t.Fatalf("empty value must be a hit: ok=%v err=%v", ok, err)
	}
	if len(body) != 0 {
		t.Fatalf("expected empty body, got %q", body)
	}
}

func TestSQLStoreConfigValidation(t *testing.T) {
	if _, err := newSQLStore(StoreConfig{}); err == nil {
		t.Fatalf("expected error without driver name and dsn")
	}
	if _, err := newSQLStore(StoreConfig{
		SQLDriverName: "sqlite",
		SQLDSN:        "file:x?mode=memory&cache=shared",
		SQLTable:      "bad-name; drop",
	}); err == nil {
		t.Fatalf("expected invalid table name to be rejected")
	}
}

func TestValidateSQLTableName(t *testing.T) {
	for _, name := range []string{"cache", "model_cache_entries", "app.cache_entries", "_x9"} {
		if err := validateSQLTableName(name); err != nil {
			t.Fatalf("%q should be valid: %v", name, err)
		}
	}
	for _, name := range []string{"", " ", "1table", "na me", "x;y", "a..b", `a"b`} {
		if err := validateSQLTableName(name); err == nil {
			t.Fatalf("%q should be rejected", name)
		}
	}
}
