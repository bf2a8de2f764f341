package storage

import (
	"context"
	"errors"
)

// Storage is a small key-value contract for device-local state such as the
// persisted cart and the session cookie blob.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")

const (
	CartKey    = "food-cart-storage"
	SessionKey = "better-auth_cookie"
	saltKey    = "yofoo-storage-salt"
)
