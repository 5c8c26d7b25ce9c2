package cache

import (
	"context"
	"time"
)

// Store is the shared cache contract with two interchangeable backends:
// Redis when configured, a database table otherwise.
//
// IncrementWithTTL is the rate limiter's primitive: it bumps the counter
// behind key, starts the window on first use, and reports the current count
// together with the time left in the window.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
