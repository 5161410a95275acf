package repositories

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KeyValueStore.Get for a missing key
var ErrNotFound = errors.New("key not found")

// KeyValueStore is the client side persistence service for settings and history.
// Values are strings, mirroring browser local storage.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
