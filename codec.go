package modelcache

import (
	"context"
	"encoding/json"
)

// ValueCodec defines how to encode/decode typed values flowing through the
// engine's byte-oriented registries.
type ValueCodec[T any] struct {
	Encode func(T) ([]byte, error)
	Decode func([]byte) (T, error)
}

// JSONCodec encodes and decodes T as JSON. It is the default for the typed
// registration and fetch helpers.
func JSONCodec[T any]() ValueCodec[T] {
	return ValueCodec[T]{
		Encode: func(v T) ([]byte, error) { return json.Marshal(v) },
		Decode: func(b []byte) (T, error) {
			var out T
			err := json.Unmarshal(b, &out)
			return out, err
		},
	}
}

// RegisterLazyValue registers a typed computation under (owner, name) using
// JSON encoding by default.
func RegisterLazyValue[T any](e *Engine, owner, name string, compute func(ctx context.Context) (T, error), opts ...RegisterOption) error {
	return RegisterLazyValueWithCodec(e, owner, name, compute, JSONCodec[T](), opts...)
}

// RegisterLazyValueWithCodec allows custom encoding for typed lazy values.
func RegisterLazyValueWithCodec[T any](e *Engine, owner, name string, compute func(ctx context.Context) (T, error), codec ValueCodec[T], opts ...RegisterOption) error {
	if compute == nil {
		return &MissingComputeError{Owner: owner, Name: name}
	}
	return e.RegisterLazy(owner, name, func(ctx context.Context) ([]byte, error) {
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return codec.Encode(value)
	}, opts...)
}

// FetchLazyValue decodes the lazy value for (owner, name) into T using JSON
// by default. A miss returns the zero value with ok=false.
func FetchLazyValue[T any](ctx context.Context, e *Engine, owner, name string) (T, bool, error) {
	return FetchLazyValueWithCodec(ctx, e, owner, name, JSONCodec[T]())
}

// FetchLazyValueWithCodec allows custom decoding for typed lazy fetches.
func FetchLazyValueWithCodec[T any](ctx context.Context, e *Engine, owner, name string, codec ValueCodec[T]) (T, bool, error) {
	var zero T
	body, ok, err := e.Fetch(ctx, owner, name)
	if err != nil || !ok {
		return zero, ok, err
	}
	out, err := codec.Decode(body)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

// RegisterColumnValue registers a typed lookup under (owner, column) using
// JSON encoding by default.
func RegisterColumnValue[T any](e *Engine, owner, column string, lookup func(ctx context.Context, key string) (T, bool, error), opts ...RegisterOption) error {
	return RegisterColumnValueWithCodec(e, owner, column, lookup, JSONCodec[T](), opts...)
}

// RegisterColumnValueWithCodec allows custom encoding for typed lookups.
func RegisterColumnValueWithCodec[T any](e *Engine, owner, column string, lookup func(ctx context.Context, key string) (T, bool, error), codec ValueCodec[T], opts ...RegisterOption) error {
	if lookup == nil {
		return e.RegisterColumn(owner, column, nil, opts...)
	}
	return e.RegisterColumn(owner, column, func(ctx context.Context, key string) ([]byte, bool, error) {
		value, ok, err := lookup(ctx, key)
		if err != nil || !ok {
			return nil, ok, err
		}
		body, err := codec.Encode(value)
		if err != nil {
			return nil, false, err
		}
		return body, true, nil
	}, opts...)
}

// FetchColumnValue decodes the record for key under (owner, column) into T.
func FetchColumnValue[T any](ctx context.Context, e *Engine, owner, column, key string) (T, bool, error) {
	return FetchColumnValueWithCodec(ctx, e, owner, column, key, JSONCodec[T]())
}

// FetchColumnValueWithCodec allows custom decoding for typed column fetches.
func FetchColumnValueWithCodec[T any](ctx context.Context, e *Engine, owner, column, key string, codec ValueCodec[T]) (T, bool, error) {
	var zero T
	body, ok, err := e.FetchColumn(ctx, owner, column, key)
	if err != nil || !ok {
		return zero, ok, err
	}
	out, err := codec.Decode(body)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}
