package modelcache

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
	"time"
)

var (
	ErrEncryptionKey = errors.New("modelcache: encryption key must be 16, 24, or 32 bytes")
	ErrDecryptFailed = errors.New("modelcache: decrypt failed")
)

// encryptingStore encrypts values at rest with AES-GCM. Keys stay in the
// clear; only values are sealed.
type encryptingStore struct {
	inner Store
	aead  cipher.AEAD
}

// NewEncryptingStore wraps inner so all values are sealed before they reach
// the backend. An empty key returns inner unchanged.
func NewEncryptingStore(inner Store, key []byte) (Store, error) {
	if len(key) == 0 {
		return inner, nil
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrEncryptionKey
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &encryptingStore{inner: inner, aead: aead}, nil
}

func (s *encryptingStore) Driver() Driver { return s.inner.Driver() }

func (s *encryptingStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.inner.Exists(ctx, key)
}

func (s *encryptingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	if len(body) < s.aead.NonceSize() {
		return nil, false, ErrDecryptFailed
	}
	nonce, sealed := body[:s.aead.NonceSize()], body[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, sealed, []byte(key))
	if err != nil {
		return nil, false, ErrDecryptFailed
	}
	return plain, true, nil
}

func (s *encryptingStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}
	sealed := s.aead.Seal(nonce, nonce, value, []byte(key))
	return s.inner.Put(ctx, key, sealed, ttl)
}

func (s *encryptingStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *encryptingStore) DeleteMany(ctx context.Context, keys ...string) error {
	return s.inner.DeleteMany(ctx, keys...)
}

func (s *encryptingStore) Flush(ctx context.Context) error {
	return s.inner.Flush(ctx)
}
