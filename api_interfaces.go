package modelcache

import "context"

// CoreAPI exposes basic engine metadata.
type CoreAPI interface {
	Driver() Driver
	Store() Store
}

// RegistryAPI exposes registration and ancestry operations.
type RegistryAPI interface {
	RegisterLazy(owner, name string, compute ComputeFunc, opts ...RegisterOption) error
	RegisterColumn(owner, column string, lookup LookupFunc, opts ...RegisterOption) error
	SetParent(child, parent string)
	Resolves(owner, name string) bool
	Settings(owner string) Settings
}

// FetchAPI exposes the memoized read paths.
type FetchAPI interface {
	Fetch(ctx context.Context, owner, name string) ([]byte, bool, error)
	FetchColumn(ctx context.Context, owner, column, key string) ([]byte, bool, error)
	Call(ctx context.Context, owner, name string) ([]byte, bool, error)
	CallKeyed(ctx context.Context, owner, name, key string) ([]byte, bool, error)
	Accessor(owner, name string) LazyAccessor
	KeyedAccessor(owner, name string) KeyedAccessor
}

// InvalidateAPI exposes cache clearing operations.
type InvalidateAPI interface {
	Invalidate(ctx context.Context, owner string, names ...string) error
	ClearColumn(owner, column string)
}

// EngineAPI is the composed application-facing interface for Engine.
type EngineAPI interface {
	CoreAPI
	RegistryAPI
	FetchAPI
	InvalidateAPI
}

var _ EngineAPI = (*Engine)(nil)
