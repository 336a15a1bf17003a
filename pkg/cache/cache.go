// Package cache provides the Valkey/Redis key-value substrate backing the
// events and responses stores. A single-node client covers production; an
// in-memory fallback keeps the pipeline serving when the cache is down.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get for absent keys so callers can
// distinguish a miss from a transport failure.
var ErrKeyNotFound = errors.New("key not found")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// LPush / LRange / LTrim maintain the recency-ordered id indexes used
	// for paginated listings.
	LPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
	LLen(ctx context.Context, key string) (int64, error)
}
