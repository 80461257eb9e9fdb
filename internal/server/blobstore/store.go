// Package blobstore is a minimal key/value object store used by the
// file-backed repositories. Keys are slash separated, e.g. "users/user_1.json".
package blobstore

import (
	"context"
)

// Store persists opaque objects by key. Get returns common.ErrorNotFound for
// missing keys. Put is durable once it returns.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	// List returns all keys under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}
