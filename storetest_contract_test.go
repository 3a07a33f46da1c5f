package modelcache_test

import (
	"context"
	"testing"

	"github.com/goforj/modelcache"
	"github.com/goforj/modelcache/storetest"
)

func TestStoretestRunStoreContract_MemoryStore(t *testing.T) {
	store := modelcache.NewMemoryStore(context.Background())
	storetest.RunStoreContract(t, store, storetest.Options{})
}

func TestStoretestRunStoreContract_NullStore(t *testing.T) {
	store := modelcache.NewNullStore(context.Background())
	storetest.RunStoreContract(t, store, storetest.Options{NullSemantics: true})
}

func TestStoretestRunStoreContract_FileStore(t *testing.T) {
	store := modelcache.NewFileStore(context.Background(), t.TempDir())
	storetest.RunStoreContract(t, store, storetest.Options{})
}

func TestStoretestRunStoreContract_SQLiteStore(t *testing.T) {
	store := modelcache.NewSQLStore(context.Background(), "sqlite",
		"file:storetest_contract_sqlite?mode=memory&cache=shared")
	storetest.RunStoreContract(t, store, storetest.Options{})
}

func TestStoretestRunStoreContract_MemoStore(t *testing.T) {
	inner := modelcache.NewMemoryStore(context.Background())
	// Reads through the memo layer are pinned in-process, so expiry is
	// not observable here.
	storetest.RunStoreContract(t, modelcache.NewMemoStore(inner), storetest.Options{SkipTTL: true})
}
