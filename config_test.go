package modelcache

import (
	"testing"
	"time"
)

func TestStoreConfigWithDefaults(t *testing.T) {
	cfg := StoreConfig{}.withDefaults()

	if cfg.Driver != DriverMemory {
		t.Fatalf("default driver = %s, want memory", cfg.Driver)
	}
	if cfg.DefaultTTL != defaultStoreTTL {
		t.Fatalf("default ttl = %s", cfg.DefaultTTL)
	}
	if cfg.MemoryCleanupInterval != defaultMemoryCleanupInterval {
		t.Fatalf("default cleanup interval = %s", cfg.MemoryCleanupInterval)
	}
	if cfg.Prefix != defaultKeyPrefix {
		t.Fatalf("default prefix = %q", cfg.Prefix)
	}
	if cfg.FileDir == "" {
		t.Fatalf("default file dir must be set")
	}
	if cfg.SQLTable != "model_cache_entries" || cfg.DynamoTable != "model_cache_entries" {
		t.Fatalf("default tables = %q / %q", cfg.SQLTable, cfg.DynamoTable)
	}
	if cfg.DynamoRegion != "us-east-1" {
		t.Fatalf("default region = %q", cfg.DynamoRegion)
	}
}

func TestStoreConfigWithDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := StoreConfig{
		Driver:     DriverNull,
		DefaultTTL: time.Second,
		Prefix:     "custom",
		SQLTable:   "my_cache",
	}.withDefaults()

	if cfg.Driver != DriverNull || cfg.DefaultTTL != time.Second {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
	if cfg.Prefix != "custom" || cfg.SQLTable != "my_cache" {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
}
