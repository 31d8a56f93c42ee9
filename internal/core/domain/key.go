package domain

import (
	"cmp"
	"time"
)

// CacheKey identifies one cached compilation: a registry identity and an instant.
// The instant is held as Unix seconds plus nanoseconds so keys are comparable
// and usable as map keys regardless of location or monotonic clock readings,
// across the whole range of time.Time.
type CacheKey struct {
	registry RegistryID
	sec      int64
	nsec     int32
}

// NewCacheKey creates a CacheKey for the registry at the given instant.
func NewCacheKey(registry RegistryID, instant time.Time) CacheKey {
	return CacheKey{registry: registry, sec: instant.Unix(), nsec: int32(instant.Nanosecond())}
}

// Registry returns the registry identity of the key.
func (k CacheKey) Registry() RegistryID {
	return k.registry
}

// Instant returns the instant of the key in UTC.
func (k CacheKey) Instant() time.Time {
	return time.Unix(k.sec, int64(k.nsec)).UTC()
}

// Compare orders keys by registry, then by instant. Keys of one registry are
// contiguous in this order, which is what the nearest-neighbour lookups rely on.
func (k CacheKey) Compare(other CacheKey) int {
	if c := k.registry.Compare(other.registry); c != 0 {
		return c
	}
	if c := cmp.Compare(k.sec, other.sec); c != 0 {
		return c
	}
	return cmp.Compare(k.nsec, other.nsec)
}

// Less reports whether k orders before other.
func (k CacheKey) Less(other CacheKey) bool {
	return k.Compare(other) < 0
}

// String renders the key as registry@instant, used as a single-flight key.
func (k CacheKey) String() string {
	return k.registry.String() + "@" + k.Instant().Format(time.RFC3339Nano)
}
