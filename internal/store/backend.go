// Package store persists the three reminder records (profile, medications,
// history) as JSON documents in a key-value backend.
package store

import (
	"context"
	"errors"

	"github.com/tartampluch/go-medreminder/internal/config"
)

// ErrNotFound is returned by a Backend when a key has never been written.
var ErrNotFound = errors.New(config.ErrRecordMissing)

// Backend is the minimal key-value contract the store needs.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
