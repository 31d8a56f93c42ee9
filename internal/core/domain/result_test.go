package domain_test

import (
	"slices"
	"testing"

	"go.trai.ch/fnrepo/internal/core/domain"
)

func TestCompilationResult_AggregateBounds(t *testing.T) {
	reg := domain.NewRegistryID("rates")
	r := domain.NewCompilationResult(reg, day(3), map[string]domain.CompiledArtifact{
		"a": {DefinitionID: "a", Window: domain.ValidityWindow{Earliest: day(1), Latest: day(5)}},
		"b": {DefinitionID: "b", Window: domain.ValidityWindow{Earliest: day(2), Latest: day(8)}},
	})

	latest, ok := r.LatestInvocationTime()
	if !ok {
		t.Fatal("expected a latest invocation time")
	}
	if !latest.Equal(day(5)) {
		t.Errorf("expected latest %v (tighter bound), got %v", day(5), latest)
	}

	earliest, ok := r.EarliestInvocationTime()
	if !ok {
		t.Fatal("expected an earliest invocation time")
	}
	if !earliest.Equal(day(2)) {
		t.Errorf("expected earliest %v (tighter bound), got %v", day(2), earliest)
	}
}

func TestCompilationResult_UnboundedOnlyWhenAllArtifactsAre(t *testing.T) {
	reg := domain.NewRegistryID("rates")

	open := domain.NewCompilationResult(reg, day(3), map[string]domain.CompiledArtifact{
		"a": {DefinitionID: "a"},
		"b": {DefinitionID: "b"},
	})
	if _, ok := open.EarliestInvocationTime(); ok {
		t.Error("expected no earliest bound when all artifacts are unbounded")
	}
	if _, ok := open.LatestInvocationTime(); ok {
		t.Error("expected no latest bound when all artifacts are unbounded")
	}

	mixed := domain.NewCompilationResult(reg, day(3), map[string]domain.CompiledArtifact{
		"a": {DefinitionID: "a"},
		"b": {DefinitionID: "b", Window: domain.ValidityWindow{Latest: day(6)}},
	})
	latest, ok := mixed.LatestInvocationTime()
	if !ok || !latest.Equal(day(6)) {
		t.Errorf("expected latest %v from the single bounded artifact, got %v (%v)", day(6), latest, ok)
	}
	if _, ok := mixed.EarliestInvocationTime(); ok {
		t.Error("expected no earliest bound")
	}
}

func TestCompilationResult_LookupAndCopy(t *testing.T) {
	src := map[string]domain.CompiledArtifact{
		"b": {DefinitionID: "b"},
		"a": {DefinitionID: "a", Invoker: "handle"},
	}
	r := domain.NewCompilationResult(domain.NewRegistryID("rates"), day(1), src)

	// Mutating the source map must not leak into the result.
	delete(src, "a")

	a, ok := r.Lookup("a")
	if !ok {
		t.Fatal("expected artifact a")
	}
	if !a.Invocable() {
		t.Error("expected artifact a to be invocable")
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("expected no artifact for unknown id")
	}
	if got := r.IDs(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("IDs() = %v, want [a b]", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestCompilationResult_Empty(t *testing.T) {
	r := domain.NewCompilationResult(domain.NewRegistryID("rates"), day(1), nil)
	if r.Len() != 0 {
		t.Errorf("expected empty result, got %d artifacts", r.Len())
	}
	if _, ok := r.LatestInvocationTime(); ok {
		t.Error("empty result should be unbounded")
	}
}
