package modelcache

import "time"

// Method selects which cache backend family a registration intends to use.
// The engine records it and hands it to policy and factory code; it does not
// reroute already-constructed stores.
type Method string

const (
	MethodLocal     Method = "local"
	MethodMemcached Method = "memcached"
	MethodDisabled  Method = "disabled"
)

func (m Method) driver() Driver {
	switch m {
	case MethodMemcached:
		return DriverMemcached
	case MethodDisabled:
		return DriverNull
	default:
		return DriverMemory
	}
}

// Settings carries the per-owner cache configuration surface: a TTL applied
// to stored values (zero means the store default) and the intended cache
// method. Settings are merged, never enforced by the registries themselves.
type Settings struct {
	TTL    time.Duration
	Method Method
}

// Merge returns s with zero fields filled in from fallback.
func (s Settings) Merge(fallback Settings) Settings {
	if s.TTL <= 0 {
		s.TTL = fallback.TTL
	}
	if s.Method == "" {
		s.Method = fallback.Method
	}
	return s
}

// RegisterOption adjusts a single lazy or column registration.
type RegisterOption func(*registerConfig)

type registerConfig struct {
	settings     Settings
	accessorName string
}

func applyRegisterOptions(opts []RegisterOption) registerConfig {
	var cfg registerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTTL overrides the TTL recorded (and used on Put) for this registration.
func WithTTL(ttl time.Duration) RegisterOption {
	return func(cfg *registerConfig) {
		cfg.settings.TTL = ttl
	}
}

// WithMethod records the intended cache method for this registration.
func WithMethod(m Method) RegisterOption {
	return func(cfg *registerConfig) {
		cfg.settings.Method = m
	}
}

// As overrides the accessor name installed for a column registration.
func As(name string) RegisterOption {
	return func(cfg *registerConfig) {
		cfg.accessorName = name
	}
}
