package modelcache

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
)

type roleSet struct {
	Names []string `json:"names"`
	Admin bool     `json:"admin"`
}

func TestTypedLazyRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(newMemoryStore(0, 0))

	var calls int32
	err := RegisterLazyValue(e, "User", "roles", func(ctx context.Context) (roleSet, error) {
		atomic.AddInt32(&calls, 1)
		return roleSet{Names: []string{"reader", "writer"}, Admin: true}, nil
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		got, ok, err := FetchLazyValue[roleSet](ctx, e, "User", "roles")
		if err != nil || !ok {
			t.Fatalf("fetch %d: ok=%v err=%v", i, ok, err)
		}
		if !got.Admin || len(got.Names) != 2 || got.Names[0] != "reader" {
			t.Fatalf("fetch %d: unexpected value %+v", i, got)
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected one computation, got %d", calls)
	}
}

func TestTypedLazyMissReturnsZero(t *testing.T) {
	e := NewEngine(newMemoryStore(0, 0))
	got, ok, err := FetchLazyValue[roleSet](context.Background(), e, "User", "ghost")
	if err != nil || ok {
		t.Fatalf("expected miss: ok=%v err=%v", ok, err)
	}
	if got.Admin || got.Names != nil {
		t.Fatalf("expected zero value on miss, got %+v", got)
	}
}

func TestTypedLazyNilComputeErrors(t *testing.T) {
	e := NewEngine(newMemoryStore(0, 0))
	err := RegisterLazyValue[roleSet](e, "User", "roles", nil)
	var missing *MissingComputeError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingComputeError, got %v", err)
	}
}

func TestTypedColumnRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(newMemoryStore(0, 0))

	type account struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
	}
	err := RegisterColumnValue(e, "Account", "email", func(ctx context.Context, key string) (account, bool, error) {
		if key == "ada@example.com" {
			return account{ID: 1, Email: key}, true, nil
		}
		return account{}, false, nil
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	got, ok, err := FetchColumnValue[account](ctx, e, "Account", "email", "ada@example.com")
	if err != nil || !ok || got.ID != 1 {
		t.Fatalf("fetch: ok=%v err=%v value=%+v", ok, err, got)
	}
	if _, ok, err := FetchColumnValue[account](ctx, e, "Account", "email", "ghost@example.com"); err != nil || ok {
		t.Fatalf("expected absent: ok=%v err=%v", ok, err)
	}
}

func TestTypedColumnCustomCodec(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(newMemoryStore(0, 0))

	codec := ValueCodec[int]{
		Encode: func(v int) ([]byte, error) { return []byte(strconv.Itoa(v)), nil },
		Decode: func(b []byte) (int, error) { return strconv.Atoi(string(b)) },
	}
	err := RegisterColumnValueWithCodec(e, "Counter", "slot", func(ctx context.Context, key string) (int, bool, error) {
		return len(key), true, nil
	}, codec)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	got, ok, err := FetchColumnValueWithCodec(ctx, e, "Counter", "slot", "abcd", codec)
	if err != nil || !ok || got != 4 {
		t.Fatalf("fetch: ok=%v err=%v value=%d", ok, err, got)
	}
}

func TestTypedLazyDecodeErrorSurfaces(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(newMemoryStore(0, 0))

	if err := e.RegisterLazy("User", "not_json", func(ctx context.Context) ([]byte, error) {
		return []byte("plainly not json"), nil
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := FetchLazyValue[roleSet](ctx, e, "User", "not_json"); err == nil {
		t.Fatalf("expected decode error")
	}
}
