package ratelimit

import "context"

// RateLimiter bounds outbound call throughput per scope (e.g. "newsletter").
type RateLimiter interface {
	Allow(ctx context.Context, scope string) (bool, error)
	Wait(ctx context.Context, scope string) error
}
