package modelcache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// countingInner counts backend reads so memoization is observable.
type countingInner struct {
	Store
	gets int
	err  error
}

func (s *countingInner) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.gets++
	if s.err != nil {
		return nil, false, s.err
	}
	return s.Store.Get(ctx, key)
}

func TestMemoStoreCachesReadsAndForgetsOnMutation(t *testing.T) {
	ctx := context.Background()
	inner := &countingInner{Store: newMemoryStore(0, 0)}
	memo := NewMemoStore(inner)

	if err := memo.Put(ctx, "k", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		body, ok, err := memo.Get(ctx, "k")
		if err != nil || !ok || string(body) != "v1" {
			t.Fatalf("get %d: ok=%v err=%v body=%q", i, ok, err, body)
		}
	}
	if inner.gets != 1 {
		t.Fatalf("expected one backend read, got %d", inner.gets)
	}

	if err := memo.Put(ctx, "k", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	body, ok, err := memo.Get(ctx, "k")
	if err != nil || !ok || string(body) != "v2" {
		t.Fatalf("get after put: ok=%v err=%v body=%q", ok, err, body)
	}
	if inner.gets != 2 {
		t.Fatalf("mutation must force a backend re-read, got %d", inner.gets)
	}
}

func TestMemoStoreMemoizesMisses(t *testing.T) {
	ctx := context.Background()
	inner := &countingInner{Store: newMemoryStore(0, 0)}
	memo := NewMemoStore(inner)

	for i := 0; i < 3; i++ {
		if _, ok, err := memo.Get(ctx, "absent"); err != nil || ok {
			t.Fatalf("get %d: expected miss, ok=%v err=%v", i, ok, err)
		}
	}
	if inner.gets != 1 {
		t.Fatalf("miss must be memoized, got %d backend reads", inner.gets)
	}
	if present, err := memo.Exists(ctx, "absent"); err != nil || present {
		t.Fatalf("exists must reflect memoized miss: present=%v err=%v", present, err)
	}
}

func TestMemoStoreDeleteManyAndFlushForget(t *testing.T) {
	ctx := context.Background()
	inner := &countingInner{Store: newMemoryStore(0, 0)}
	memo := NewMemoStore(inner)

	for _, k := range []string{"a", "b"} {
		if err := memo.Put(ctx, k, []byte(k), time.Minute); err != nil {
			t.Fatalf("put %s failed: %v", k, err)
		}
		if _, _, err := memo.Get(ctx, k); err != nil {
			t.Fatalf("warm %s failed: %v", k, err)
		}
	}
	if err := memo.DeleteMany(ctx, "a", "b"); err != nil {
		t.Fatalf("delete many failed: %v", err)
	}
	before := inner.gets
	if _, ok, _ := memo.Get(ctx, "a"); ok {
		t.Fatalf("a should be gone")
	}
	if inner.gets != before+1 {
		t.Fatalf("deleted key must be re-read from backend")
	}

	if err := memo.Put(ctx, "c", []byte("v"), time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := memo.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if _, ok, _ := memo.Get(ctx, "c"); ok {
		t.Fatalf("flush should clear the backend and the memo table")
	}
}

func TestMemoStoreErrorNotMemoized(t *testing.T) {
	ctx := context.Background()
	inner := &countingInner{Store: newMemoryStore(0, 0), err: errors.New("down")}
	memo := NewMemoStore(inner)

	if _, _, err := memo.Get(ctx, "k"); err == nil {
		t.Fatalf("expected backend error")
	}
	inner.err = nil
	if err := memo.Put(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	body, ok, err := memo.Get(ctx, "k")
	if err != nil || !ok || string(body) != "v" {
		t.Fatalf("recovery read failed: ok=%v err=%v body=%q", ok, err, body)
	}
}

func TestMemoStoreKeepsInnerDriver(t *testing.T) {
	memo := NewMemoStore(newNullStore())
	if got := memo.Driver(); got != DriverNull {
		t.Fatalf("unexpected driver %s", got)
	}
}
