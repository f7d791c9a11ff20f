// Package store holds the byte-oriented key/value backends the scoreboard
// persists into. Each key maps to one opaque record.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("record not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
