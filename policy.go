package modelcache

import "time"

// CachePolicy is the extension point for expiry and storage decisions. The
// default policy is inert: values are always stored and the fallback TTL is
// used unchanged, which matches the registries' own behavior of never
// expiring anything. TTL- or backend-aware policies plug in here without
// changing the engine.
type CachePolicy interface {
	// TTL returns the duration handed to Store.Put for a value cached under
	// (owner, name). fallback is the TTL resolved from Settings.
	TTL(owner, name string, fallback time.Duration) time.Duration

	// ShouldStore reports whether a freshly computed value is written back.
	ShouldStore(owner, name string, value []byte) bool
}

type nopPolicy struct{}

// NopPolicy returns the default inert policy.
func NopPolicy() CachePolicy { return nopPolicy{} }

func (nopPolicy) TTL(_, _ string, fallback time.Duration) time.Duration { return fallback }

func (nopPolicy) ShouldStore(_, _ string, _ []byte) bool { return true }
