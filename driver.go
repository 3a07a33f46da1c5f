package modelcache

// Driver identifies the key-value backend behind a Store.
type Driver string

const (
	DriverNull      Driver = "null"
	DriverFile      Driver = "file"
	DriverMemory    Driver = "memory"
	DriverMemcached Driver = "memcached"
	DriverSQL       Driver = "sql"
	DriverDynamo    Driver = "dynamodb"
	DriverRedis     Driver = "redis"
	DriverNATS      Driver = "nats"
)
