// Package kv defines the key-value port the local store adapter persists
// through, plus an in-memory implementation.
package kv

import "context"

// Store persists opaque values under string keys. Get reports ok=false when
// the key has never been written.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
