package modelcache

import (
	"os"
	"path/filepath"
	"time"
)

const (
	defaultKeyPrefix             = "modelcache"
	defaultStoreTTL              = 5 * time.Minute
	defaultMemoryCleanupInterval = 10 * time.Minute
)

func defaultFileDir() string {
	return filepath.Join(os.TempDir(), "modelcache-file")
}

// StoreConfig controls how a Store is constructed.
type StoreConfig struct {
	Driver Driver

	// DefaultTTL is used when a Put provides ttl <= 0.
	DefaultTTL time.Duration

	// MemoryCleanupInterval controls in-process cache eviction sweeps.
	MemoryCleanupInterval time.Duration

	// Prefix namespaces keys on shared backends (redis, memcached, sql, ...).
	Prefix string

	// FileDir is where the file driver stores cache records.
	FileDir string

	// RedisClient is required when DriverRedis is used.
	RedisClient RedisClient

	// MemcachedAddresses lists memcached servers for DriverMemcached.
	MemcachedAddresses []string

	// SQLDriverName and SQLDSN configure DriverSQL ("sqlite", "mysql",
	// "pgx" and "postgres" are understood). SQLTable defaults to
	// "model_cache_entries".
	SQLDriverName string
	SQLDSN        string
	SQLTable      string

	// NATSKeyValue is required when DriverNATS is used. NATSBucketTTL marks
	// the bucket as having server-side TTL, skipping the client envelope.
	NATSKeyValue  NATSKeyValue
	NATSBucketTTL bool

	// Dynamo settings for DriverDynamo. When DynamoClient is nil a client is
	// built from DynamoRegion/DynamoEndpoint.
	DynamoClient   DynamoAPI
	DynamoTable    string
	DynamoRegion   string
	DynamoEndpoint string
}

func (c StoreConfig) withDefaults() StoreConfig {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = defaultStoreTTL
	}
	if c.MemoryCleanupInterval <= 0 {
		c.MemoryCleanupInterval = defaultMemoryCleanupInterval
	}
	if c.Prefix == "" {
		c.Prefix = defaultKeyPrefix
	}
	if c.FileDir == "" {
		c.FileDir = defaultFileDir()
	}
	if c.SQLTable == "" {
		c.SQLTable = "model_cache_entries"
	}
	if c.DynamoTable == "" {
		c.DynamoTable = "model_cache_entries"
	}
	if c.DynamoRegion == "" {
		c.DynamoRegion = "us-east-1"
	}
	return c
}
