// Package store persists search history and time-boxed result caches in a
// durable key-value store. Every persistence failure is logged and degraded
// to "empty" or "no-op"; callers never see an error from the search path.
package store

import "context"

// KV is the minimal durable key-value surface the store needs. Get returns
// (nil, nil) when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
