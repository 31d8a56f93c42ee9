// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"time"

	"go.trai.ch/fnrepo/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=definition.go -destination=mocks/mock_definition.go -package=mocks

// FunctionDefinition is a named, compilable unit of a repository.
type FunctionDefinition interface {
	// ID returns the definition identifier, unique within its registry.
	ID() string
	// ShortName returns a human-readable name for logs.
	ShortName() string
	// Compile produces the artifact for the given instant.
	//
	// It may be invoked concurrently with Compile of other definitions. The
	// compilation context is passed through unmodified.
	Compile(ctx context.Context, cctx domain.CompilationContext, at time.Time) (domain.CompiledArtifact, error)
}

// DefinitionRegistry is a named set of function definitions.
type DefinitionRegistry interface {
	// Identity returns the registry identity used to partition the cache.
	Identity() domain.RegistryID
	// AllDefinitions returns the current definitions. Callers must not mutate the slice.
	AllDefinitions() []FunctionDefinition
	// RevisionID returns a counter that changes whenever any registry's contents change.
	RevisionID() int64
}
