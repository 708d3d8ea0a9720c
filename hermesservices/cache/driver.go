package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Driver stores opaque string values with an expiry. Implementations must be
// safe for concurrent use.
type Driver interface {
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, duration time.Duration) error
	Close() error
}
