// Package storetest provides reusable contract tests for modelcache.Store
// implementations.
//
// Backend tests run the shared suite against their own construction:
//
//	func TestRedisStoreContract(t *testing.T) {
//		ctx := context.Background()
//		store := modelcache.NewRedisStore(ctx, newTestRedisClient(t))
//
//		// Namespace keys per test and tune TTL waits for backend semantics as needed.
//		storetest.RunStoreContract(t, store, storetest.Options{
//			CaseName: t.Name(),
//			TTL:      time.Second,
//			TTLWait:  1500 * time.Millisecond,
//		})
//	}
package storetest
