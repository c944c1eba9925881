// Package ratelimit provides a per-key token-bucket limiter used to throttle
// credential-guessing traffic on the login endpoint.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// KeyedLimiter keeps one token bucket per key (typically a client IP).
// Buckets are created lazily on first use.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewKeyedLimiter constructs a limiter allowing rps events per second with
// the given burst size for each distinct key.
func NewKeyedLimiter(rps float64, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (k *KeyedLimiter) limiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.limiters[key]
	if !ok {
		l = rate.NewLimiter(k.rps, k.burst)
		k.limiters[key] = l
	}
	return l
}

// Allow reports whether the event for key may proceed now.
func (k *KeyedLimiter) Allow(key string) bool {
	return k.limiter(key).Allow()
}
