// Package ratelimit provides per-address admission control in front of
// transaction building. Each address gets a fixed window that starts at
// its own first request, so windows are not aligned across addresses.
// The counters are process local; this is an abuse guard, not a
// correctness mechanism.
package ratelimit

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// ErrLimitExceeded indicates an address has exhausted its window.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Default settings matching the public service configuration.
const (
	DefaultMax    = 10
	DefaultWindow = 60 * time.Second
)

// Limiter bounds the number of admitted requests per address per window.
type Limiter struct {
	buckets *ttlcache.Cache[string, *atomic.Int64]
	max     int64
}

// New constructs a limiter allowing max requests per window for each
// address. DisableTouchOnHit keeps a bucket's expiry fixed at its first
// request so the window never slides on subsequent hits.
func New(max int, window time.Duration) *Limiter {
	buckets := ttlcache.New[string, *atomic.Int64](
		ttlcache.WithTTL[string, *atomic.Int64](window),
		ttlcache.WithDisableTouchOnHit[string, *atomic.Int64](),
	)
	go buckets.Start()

	return &Limiter{
		buckets: buckets,
		max:     int64(max),
	}
}

// Stop terminates the background eviction of expired buckets.
func (l *Limiter) Stop() {
	l.buckets.Stop()
}

// Admit records a request for the specified address and reports whether
// it is allowed inside the current window. The count check is a single
// read-modify-write so concurrent bursts from the same address are not
// undercounted.
func (l *Limiter) Admit(address string) error {
	bucket, _ := l.buckets.GetOrSet(address, &atomic.Int64{})

	if bucket.Value().Add(1) > l.max {
		return ErrLimitExceeded
	}

	return nil
}
