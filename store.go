package modelcache

import (
	"context"
	"time"
)

// Store is the key-value contract the registries cache through.
// Keys are opaque strings, values are raw bytes. A ttl <= 0 on Put means the
// store's configured default TTL; whether a backend enforces expiry at all is
// up to the backend, the registries never expire anything themselves.
type Store interface {
	Driver() Driver
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys ...string) error
	Flush(ctx context.Context) error
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return nil
	}
	clone := make([]byte, len(value))
	copy(clone, value)
	return clone
}
