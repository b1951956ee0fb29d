package ports

import (
	"context"
	"errors"
)

// Keys of the two persisted session entries.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrKeyNotFound is returned by KeyValueStore.Get for an absent key.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the durable client-side store that holds the session
// entries across restarts.
type KeyValueStore interface {
	// Get returns ErrKeyNotFound when key has no value.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
