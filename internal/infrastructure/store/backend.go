package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Backend is a key/value blob store for persisted bags.
type Backend interface {
	// Get returns ErrNotFound when nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
