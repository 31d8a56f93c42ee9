package domain

// Stats is a point-in-time snapshot of compilation cache activity.
type Stats struct {
	// Entries is the number of cached compilation results.
	Entries int
	// Size is the configured eviction bound.
	Size int
	// Generation is the registry revision the cache currently trusts.
	Generation int64

	Hits          int64
	Misses        int64
	Salvaged      int64
	Compiled      int64
	Failures      int64
	Evictions     int64
	Invalidations int64
}

// HitRatio returns hits / (hits + misses), or zero before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
