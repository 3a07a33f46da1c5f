package modelcache

import (
	"context"
	"time"
)

// errorStore is returned when a driver fails to initialize; it preserves the
// driver identity while surfacing the construction error on every call.
type errorStore struct {
	driver Driver
	err    error
}

func (e *errorStore) Driver() Driver { return e.driver }

func (e *errorStore) Exists(context.Context, string) (bool, error) { return false, e.err }

func (e *errorStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, e.err }

func (e *errorStore) Put(context.Context, string, []byte, time.Duration) error { return e.err }

func (e *errorStore) Delete(context.Context, string) error { return e.err }

func (e *errorStore) DeleteMany(context.Context, ...string) error { return e.err }

func (e *errorStore) Flush(context.Context) error { return e.err }
