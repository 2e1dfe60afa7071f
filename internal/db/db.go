// Package db defines the key-value store facade backing the embedding
// cache and the Redis history driver. Consumers depend on the narrow
// sub-interfaces, not the facade.
package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces.
type Store interface {
	Pinger
	KVStore
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ListStore provides append-only list operations. RPush appends a single
// record atomically; Range returns records in insertion order.
type ListStore interface {
	RPush(ctx context.Context, key string, value []byte) error
	Range(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	Len(ctx context.Context, key string) (int64, error)
}
