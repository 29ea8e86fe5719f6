// Package ratelimit throttles the public form endpoints per client IP.
package ratelimit

import (
	"context"
	"time"
)

// BucketStore answers whether one more request fits the key's budget for
// the window, counting the request when it does.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
