package repocache

import (
	"golang.org/x/sync/singleflight"
)

// Option configures a Cache.
type Option func(*Cache)

// WithCacheSize sets the eviction bound. Values below one are ignored.
func WithCacheSize(n int) Option {
	return func(c *Cache) {
		if n >= 1 {
			c.size = n
		}
	}
}

// WithSingleFlight coalesces concurrent misses for the same key into one build.
// Without it, concurrent identical resolves compile independently and the last
// insert wins.
func WithSingleFlight() Option {
	return func(c *Cache) {
		c.flight = &singleflight.Group{}
	}
}
