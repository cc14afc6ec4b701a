// Package kv defines the device key-value store boundary consumed by the
// caching and conversation layers. Implementations must be durable and
// crash-consistent at single-key granularity; no cross-key transactions are
// assumed anywhere above this interface.
package kv

import "context"

// Store is the flat key-value persistence contract.
//
// Get reports presence explicitly so callers can distinguish "absent" from
// "empty value". ListKeys returns every key with the given prefix and exists
// to support bulk clear operations (clear-all, clear-per-entity).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}
