package ports

import (
	"context"
	"time"

	"go.trai.ch/fnrepo/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks

// Compiler compiles a batch of definitions for one instant.
type Compiler interface {
	// CompileAll compiles every definition and returns the artifacts keyed by definition id.
	//
	// A definition that fails is omitted from the map. An error is returned only when
	// the batch as a whole could not complete.
	CompileAll(
		ctx context.Context,
		defs []FunctionDefinition,
		cctx domain.CompilationContext,
		at time.Time,
	) (map[string]domain.CompiledArtifact, error)
}

// WorkerPool runs submitted tasks with bounded concurrency.
type WorkerPool interface {
	// Go submits a task. It may block until a worker is free.
	Go(task func())
}
