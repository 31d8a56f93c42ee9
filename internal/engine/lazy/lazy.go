// Package lazy defers compiling a definition until its artifact is first looked up.
package lazy

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.trai.ch/fnrepo/internal/core/domain"
	"go.trai.ch/fnrepo/internal/core/ports"
	"go.trai.ch/zerr"
)

// cell memoizes one definition's compile outcome. While a compile is in
// flight, running is closed when it finishes.
type cell struct {
	mu       sync.Mutex
	running  chan struct{}
	done     bool
	ok       bool
	artifact domain.CompiledArtifact
}

// claim returns the memoized outcome, or reports that the caller now owns the
// compile. Waiters give up when ctx ends.
func (c *cell) claim(ctx context.Context) (artifact domain.CompiledArtifact, ok, owner bool) {
	for {
		c.mu.Lock()
		if c.done {
			artifact, ok = c.artifact, c.ok
			c.mu.Unlock()
			return artifact, ok, false
		}
		wait := c.running
		if wait == nil {
			c.running = make(chan struct{})
			c.mu.Unlock()
			return domain.CompiledArtifact{}, false, true
		}
		c.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return domain.CompiledArtifact{}, false, false
		}
	}
}

// settle records the owner's outcome and wakes waiters. A cancelled compile
// leaves the cell open for the next lookup.
func (c *cell) settle(artifact domain.CompiledArtifact, ok, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if done {
		c.artifact, c.ok, c.done = artifact, ok, true
	}
	close(c.running)
	c.running = nil
}

// Repository is a view of a registry at one instant whose artifacts are
// compiled on demand and then kept. It is safe for concurrent use: lookups of
// the same definition compile it once, lookups of different ones run in parallel.
type Repository struct {
	registry domain.RegistryID
	at       time.Time
	cctx     domain.CompilationContext
	logger   ports.Logger
	metrics  ports.Metrics

	defs  map[string]ports.FunctionDefinition
	cells map[string]*cell
}

// New snapshots the definitions of registry for lazy compilation at at.
func New(
	registry ports.DefinitionRegistry,
	cctx domain.CompilationContext,
	at time.Time,
	logger ports.Logger,
	metrics ports.Metrics,
) *Repository {
	all := registry.AllDefinitions()
	r := &Repository{
		registry: registry.Identity(),
		at:       at,
		cctx:     cctx,
		logger:   logger,
		metrics:  metrics,
		defs:     make(map[string]ports.FunctionDefinition, len(all)),
		cells:    make(map[string]*cell, len(all)),
	}
	for _, def := range all {
		r.defs[def.ID()] = def
		r.cells[def.ID()] = &cell{}
	}
	return r
}

// Lookup returns the artifact of the definition, compiling it on first use.
// It reports false for unknown ids and for definitions that failed to compile.
// A compile cut short by ctx is not remembered and is retried on the next lookup.
func (r *Repository) Lookup(ctx context.Context, id string) (domain.CompiledArtifact, bool) {
	c, ok := r.cells[id]
	if !ok {
		return domain.CompiledArtifact{}, false
	}

	if artifact, ok, owner := c.claim(ctx); !owner {
		return artifact, ok
	}

	def := r.defs[id]
	start := time.Now()
	artifact, err := compile(ctx, def, r.cctx, r.at)
	r.metrics.RecordCompile(ctx, id, time.Since(start), err)

	if err != nil {
		if ctx.Err() != nil {
			c.settle(domain.CompiledArtifact{}, false, false)
			return domain.CompiledArtifact{}, false
		}
		r.logger.Error(zerr.With(
			zerr.Wrap(errors.Join(domain.ErrDefinitionCompileFailed, err), "skipping "+def.ShortName()),
			"definition", id,
		))
		c.settle(domain.CompiledArtifact{}, false, true)
		return domain.CompiledArtifact{}, false
	}

	if artifact.DefinitionID == "" {
		artifact.DefinitionID = id
	}
	c.settle(artifact, true, true)
	return artifact, true
}

// Compiled returns a result holding only the artifacts compiled so far.
// It does not wait for compiles in flight.
func (r *Repository) Compiled() *domain.CompilationResult {
	artifacts := make(map[string]domain.CompiledArtifact)
	for id, c := range r.cells {
		c.mu.Lock()
		if c.ok {
			artifacts[id] = c.artifact
		}
		c.mu.Unlock()
	}
	return domain.NewCompilationResult(r.registry, r.at, artifacts)
}

// Instant returns the instant the repository compiles for.
func (r *Repository) Instant() time.Time {
	return r.at
}

func compile(
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
