// Package salvage decides which definitions can reuse an artifact from a
// neighbouring cached compilation instead of being compiled again.
package salvage

import (
	"time"

	"go.trai.ch/fnrepo/internal/core/domain"
	"go.trai.ch/fnrepo/internal/core/ports"
)

// Source identifies the neighbour an artifact was salvaged from.
type Source int

const (
	// FromPrevious means the artifact came from the nearest earlier result.
	FromPrevious Source = iota + 1
	// FromNext means the artifact came from the nearest later result.
	FromNext
)

// String returns the source name used in logs and span attributes.
func (s Source) String() string {
	switch s {
	case FromPrevious:
		return "previous"
	case FromNext:
		return "next"
	default:
		return "none"
	}
}

// Plan is the outcome of partitioning a definition list.
type Plan struct {
	// Salvaged holds the adopted artifacts keyed by definition id.
	Salvaged map[string]domain.CompiledArtifact
	// Sources records which neighbour each salvaged artifact came from.
	Sources map[string]Source
	// Remaining lists the definitions that must be compiled, in input order.
	Remaining []ports.FunctionDefinition
}

// Partition splits defs into artifacts adopted from previous or next and the
// definitions left to compile for at. Either neighbour may be nil.
//
// An artifact from previous is adopted when its window has no upper bound or
// ends at or after at. Otherwise an artifact from next is adopted when its
// window has no lower bound or starts at or before at.
func Partition(
	defs []ports.FunctionDefinition,
	previous, next *domain.CompilationResult,
	at time.Time,
) Plan {
	plan := Plan{
		Salvaged: make(map[string]domain.CompiledArtifact),
		Sources:  make(map[string]Source),
	}

	for _, def := range defs {
		id := def.ID()

		if a, ok := adopt(previous, id, at, domain.ValidityWindow.ValidUntil); ok {
			plan.Salvaged[id] = a
			plan.Sources[id] = FromPrevious
			continue
		}
		if a, ok := adopt(next, id, at, domain.ValidityWindow.ValidSince); ok {
			plan.Salvaged[id] = a
			plan.Sources[id] = FromNext
			continue
		}

		plan.Remaining = append(plan.Remaining, def)
	}

	return plan
}

func adopt(
	neighbour *domain.CompilationResult,
	id string,
	at time.Time,
	valid func(domain.ValidityWindow, time.Time) bool,
) (domain.CompiledArtifact, bool) {
	if neighbour == nil {
		return domain.CompiledArtifact{}, false
	}
	a, ok := neighbour.Lookup(id)
	if !ok || !valid(a.Window, at) {
		return domain.CompiledArtifact{}, false
	}
	return a, true
}
