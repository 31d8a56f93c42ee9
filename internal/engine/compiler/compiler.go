// Package compiler compiles batches of function definitions on a worker pool.
package compiler

import (
	"context"
	"errors"
	"time"

	"go.trai.ch/fnrepo/internal/core/domain"
	"go.trai.ch/fnrepo/internal/core/ports"
	"go.trai.ch/zerr"
)

// Compiler compiles definitions concurrently and isolates per-definition failures.
type Compiler struct {
	pool    ports.WorkerPool
	logger  ports.Logger
	tracer  ports.Tracer
	metrics ports.Metrics
}

// New creates a Compiler that submits compile tasks to pool.
func New(
	pool ports.WorkerPool,
	logger ports.Logger,
	tracer ports.Tracer,
	metrics ports.Metrics,
) *Compiler {
	return &Compiler{
		pool:    pool,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
}

type outcome struct {
	id       string
	artifact domain.CompiledArtifact
	err      error
}

// CompileAll compiles every definition for at and returns the successful artifacts
// keyed by definition id. Failed definitions are logged and left out.
//
// If ctx is cancelled before all tasks report back, CompileAll returns
// ErrCompilationInterrupted. Tasks already running are abandoned and their
// results dropped.
func (c *Compiler) CompileAll(
	ctx context.Context,
	defs []ports.FunctionDefinition,
	cctx domain.CompilationContext,
	at time.Time,
) (map[string]domain.CompiledArtifact, error) {
	artifacts := make(map[string]domain.CompiledArtifact, len(defs))
	if len(defs) == 0 {
		return artifacts, nil
	}

	planned := make([]string, len(defs))
	for i, def := range defs {
		planned[i] = def.ID()
	}
	c.tracer.EmitPlan(ctx, planned)

	ctx, span := c.tracer.Start(ctx, "compiler.compile_all")
	defer span.End()
	span.SetAttribute("compile.count", len(defs))

	// Buffered so abandoned tasks never block on send.
	resultsCh := make(chan outcome, len(defs))

	// Submission may block on a saturated pool, so it runs off the caller's goroutine.
	go func() {
		for _, def := range defs {
			if ctx.Err() != nil {
				return
			}
			c.pool.Go(func() {
				resultsCh <- c.compileOne(ctx, def, cctx, at)
			})
		}
	}()

	failed := 0
	for pending := len(defs); pending > 0; pending-- {
		select {
		case res := <-resultsCh:
			if res.err != nil {
				failed++
				continue
			}
			artifacts[res.id] = res.artifact
		case <-ctx.Done():
			err := zerr.With(
				zerr.Wrap(errors.Join(domain.ErrCompilationInterrupted, ctx.Err()), "compile batch abandoned"),
				"outstanding", pending,
			)
			span.RecordError(err)
			return nil, err
		}
	}

	span.SetAttribute("compile.failed", failed)
	return artifacts, nil
}

func (c *Compiler) compileOne(
	ctx context.Context,
	def ports.FunctionDefinition,
	cctx domain.CompilationContext,
	at time.Time,
) outcome {
	id := def.ID()
	ctx, span := c.tracer.Start(ctx, "compile "+id, ports.WithAttribute("definition.id", id))
	defer span.End()

	start := time.Now()
	artifact, err := safeCompile(ctx, def, cctx, at)
	c.metrics.RecordCompile(ctx, id, time.Since(start), err)

	if err != nil {
		err = zerr.With(
			zerr.Wrap(errors.Join(domain.ErrDefinitionCompileFailed, err), "skipping "+def.ShortName()),
			"definition", id,
		)
		span.RecordError(err)
		c.logger.Error(err)
		return outcome{id: id, err: err}
	}

	if artifact.DefinitionID == "" {
		artifact.DefinitionID = id
	}
	span.SetAttribute("artifact.invocable", artifact.Invocable())
	return outcome{id: id, artifact: artifact}
}

// safeCompile turns a panicking Compile into an ordinary error.
func safeCompile(
	ctx context.Context,
	def ports.FunctionDefinition,
	cctx domain.CompilationContext,
	at time.Time,
) (artifact domain.CompiledArtifact, err error) {
	defer zerr.Defer(func(recovered error) {
		err = zerr.Wrap(recovered, "compile panicked")
	})
	return def.Compile(ctx, cctx, at)
}
