// Package blob abstracts where the devserver keeps object content. Metadata
// stays in the server's memory either way; only the (already encrypted)
// content bytes go through a Store.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no content.
var ErrNotFound = errors.New("blob not found")

// Store is a flat key/value content store.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
