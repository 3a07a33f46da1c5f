package modelcache

import (
	"context"
	"time"
)

// nullStore backs the disabled cache method: every write is accepted and
// dropped, every read misses.
type nullStore struct{}

func newNullStore() Store { return &nullStore{} }

func (s *nullStore) Driver() Driver { return DriverNull }

func (s *nullStore) Exists(context.Context, string) (bool, error) { return false, nil }

func (s *nullStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (s *nullStore) Put(context.Context, string, []byte, time.Duration) error { return nil }

func (s *nullStore) Delete(context.Context, string) error { return nil }

func (s *nullStore) DeleteMany(context.Context, ...string) error { return nil }

func (s *nullStore) Flush(context.Context) error { return nil }
