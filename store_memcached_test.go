package modelcache

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

func startFakeMemcached(t *testing.T) (addr string, stop func(), accept chan net.Conn) {
	t.Helper()
	data := make(map[string][]byte)
	var mu sync.Mutex
	accept = make(chan net.Conn, 4)
	go func() {
		for conn := range accept {
			go handleMemcachedConn(conn, data, &mu)
		}
	}()
	return "pipe", func() { close(accept) }, accept
}

func handleMemcachedConn(conn net.Conn, data map[string][]byte, mu *sync.Mutex) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, " ")
		switch parts[0] {
		case "get":
			if len(parts) < 2 {
				continue
			}
			key := parts[1]
			mu.Lock()
			v, ok := data[key]
			mu.Unlock()
			if ok {
				fmt.Fprintf(w, "VALUE %s 0 %d\r\n", key, len(v))
				w.Write(v)
				w.WriteString("\r\n")
			}
			w.WriteString("END\r\n")
		case "set":
			// set <key> <flags> <exptime> <bytes>
			if len(parts) < 5 {
				continue
			}
			key := parts[1]
			n, _ := strconv.Atoi(parts[4])
			buf := make([]byte, n)
			if _, err := io.ReadFull(r, buf); err != nil {
				return
			}
			r.ReadString('\n')
			mu.Lock()
			data[key] = buf
			mu.Unlock()
			w.WriteString("STORED\r\n")
		case "delete":
			if len(parts) < 2 {
				continue
			}
			mu.Lock()
			delete(data, parts[1])
			mu.Unlock()
			w.WriteString("DELETED\r\n")
		case "flush_all":
			mu.Lock()
			for k := range data {
				delete(data, k)
			}
			mu.Unlock()
			w.WriteString("OK\r\n")
		default:
			// ignore
		}
		w.Flush()
	}
}

func TestMemcachedStoreAgainstFakeServer(t *testing.T) {
	origDial := dialMemcached
	defer func() { dialMemcached = origDial }()
	serverAddr, stop, accept := startFakeMemcached(t)
	defer stop()
	dialMemcached = func(ctx context.Context, network, addr string) (net.Conn, error) {
		_, _, _ = ctx, network, addr
		server, client := net.Pipe()
		accept <- server
		return client, nil
	}

	store := newMemcachedStore([]string{serverAddr}, time.Second, "pfx")
	ctx := context.Background()

	if err := store.Put(ctx, "a", []byte("1"), 0); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Put(ctx, "b", []byte("2"), 0); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	body, ok, err := store.Get(ctx, "a")
	if err != nil || !ok || string(body) != "1" {
		t.Fatalf("get failed: ok=%v err=%v val=%s", ok, err, string(body))
	}
	present, err := store.Exists(ctx, "a")
	if err != nil || !present {
		t.Fatalf("exists failed: present=%v err=%v", present, err)
	}
	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss: ok=%v err=%v", ok, err)
	}

	if err := store.DeleteMany(ctx, "a", "b"); err != nil {
		t.Fatalf("delete many failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "a"); ok {
		t.Fatalf("a should be deleted")
	}

	if err := store.Put(ctx, "c", []byte("3"), 0); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "c"); ok {
		t.Fatalf("c should be flushed")
	}
}

func TestMemcachedStoreDialFailure(t *testing.T) {
	origDial := dialMemcached
	defer func() { dialMemcached = origDial }()
	dialMemcached = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, fmt.Errorf("refused")
	}

	store := newMemcachedStore([]string{"127.0.0.1:1"}, time.Second, "pfx")
	if _, _, err := store.Get(context.Background(), "k"); err == nil {
		t.Fatalf("expected dial error")
	}
	if err := store.Put(context.Background(), "k", []byte("v"), 0); err == nil {
		t.Fatalf("expected dial error")
	}
}

func TestMemcachedStoreKeyPrefixOnWire(t *testing.T) {
	origDial := dialMemcached
	defer func() { dialMemcached = origDial }()
	_, stop, accept := startFakeMemcached(t)
	defer stop()
	seen := make(chan string, 1)
	dialMemcached = func(ctx context.Context, network, addr string) (net.Conn, error) {
		server, client := net.Pipe()
		accept <- server
		return &sniffingConn{Conn: client, seen: seen}, nil
	}

	store := newMemcachedStore([]string{"pipe"}, time.Second, "models")
	if err := store.Put(context.Background(), "User:roles", []byte("v"), 0); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	select {
	case line := <-seen:
		if !strings.Contains(line, "models:User:roles") {
			t.Fatalf("expected prefixed key on the wire, got %q", line)
		}
	default:
		t.Fatalf("no command captured")
	}
}

type sniffingConn struct {
	net.Conn
	seen chan string
	once sync.Once
}

func (c *sniffingConn) Write(b []byte) (int, error) {
	c.once.Do(func() {
		select {
		case c.seen <- string(b):
		default:
		}
	})
	return c.Conn.Write(b)
}
