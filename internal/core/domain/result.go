package domain

import (
	"maps"
	"slices"
	"time"
)

// CompilationResult is the set of compiled artifacts for one (registry, instant) request.
// It is immutable once built and safe to share between goroutines.
type CompilationResult struct {
	registry  RegistryID
	instant   time.Time
	artifacts map[string]CompiledArtifact
	window    ValidityWindow
}

// NewCompilationResult builds a result from the given artifacts. The map is copied.
func NewCompilationResult(registry RegistryID, instant time.Time, artifacts map[string]CompiledArtifact) *CompilationResult {
	r := &CompilationResult{
		registry:  registry,
		instant:   instant,
		artifacts: maps.Clone(artifacts),
	}
	if r.artifacts == nil {
		r.artifacts = make(map[string]CompiledArtifact)
	}

	// All artifacts must be valid at once, so the aggregate is the intersection.
	for _, a := range r.artifacts {
		r.window = r.window.Intersect(a.Window)
	}
	return r
}

// Registry returns the identity of the registry the result was compiled for.
func (r *CompilationResult) Registry() RegistryID {
	return r.registry
}

// Instant returns the instant the result was requested for.
func (r *CompilationResult) Instant() time.Time {
	return r.instant
}

// Lookup returns the artifact compiled for the definition, if any.
// A missing artifact means the definition is unavailable at this node.
func (r *CompilationResult) Lookup(definitionID string) (CompiledArtifact, bool) {
	a, ok := r.artifacts[definitionID]
	return a, ok
}

// EarliestInvocationTime returns the latest of all per-artifact lower bounds.
// It reports false when every artifact is unbounded below.
func (r *CompilationResult) EarliestInvocationTime() (time.Time, bool) {
	return r.window.Earliest, r.window.HasEarliest()
}

// LatestInvocationTime returns the earliest of all per-artifact upper bounds.
// It reports false when every artifact is unbounded above.
func (r *CompilationResult) LatestInvocationTime() (time.Time, bool) {
	return r.window.Latest, r.window.HasLatest()
}

// Window returns the aggregate validity window of the result.
func (r *CompilationResult) Window() ValidityWindow {
	return r.window
}

// Len returns the number of artifacts in the result.
func (r *CompilationResult) Len() int {
	return len(r.artifacts)
}

// IDs returns the definition identifiers present in the result, sorted.
func (r *CompilationResult) IDs() []string {
	return slices.Sorted(maps.Keys(r.artifacts))
}

// Artifacts returns a copy of the artifact map.
func (r *CompilationResult) Artifacts() map[string]CompiledArtifact {
	return maps.Clone(r.artifacts)
}
