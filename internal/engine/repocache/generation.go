package repocache

// GenerationTracker remembers the registry revision a cache was filled under.
// It is not safe for concurrent use; the Cache guards it with its mutex.
type GenerationTracker struct {
	current int64
	adopted bool
}

// Check reports whether revision differs from the adopted one and adopts it.
// The first revision seen is adopted without reporting a change, since nothing
// can have been cached before it.
func (g *GenerationTracker) Check(revision int64) bool {
	if !g.adopted {
		g.current = revision
		g.adopted = true
		return false
	}
	if revision == g.current {
		return false
	}
	g.current = revision
	return true
}

// Current returns the adopted revision and whether one has been adopted yet.
func (g *GenerationTracker) Current() (int64, bool) {
	return g.current, g.adopted
}
