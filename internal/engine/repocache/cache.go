// Package repocache caches compilation results per registry and instant.
//
// A miss is served by salvaging artifacts from the nearest earlier and later
// cached results of the same registry and compiling only what is left. Results
// are evicted first-in first-out once the bound is exceeded, and the whole
// cache is dropped whenever the registries report a new revision.
package repocache

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/btree"
	"go.trai.ch/fnrepo/internal/core/domain"
	"go.trai.ch/fnrepo/internal/core/ports"
	"go.trai.ch/fnrepo/internal/engine/salvage"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

const indexDegree = 8

type entry struct {
	result *domain.CompilationResult
	elem   *list.Element
}

type counters struct {
	hits          atomic.Int64
	misses        atomic.Int64
	salvaged      atomic.Int64
	compiled      atomic.Int64
	failures      atomic.Int64
	evictions     atomic.Int64
	invalidations atomic.Int64
}

// Cache is a bounded store of compilation results keyed by registry and instant.
// It is safe for concurrent use. The mutex is never held while compiling.
type Cache struct {
	compiler ports.Compiler
	logger   ports.Logger
	tracer   ports.Tracer
	metrics  ports.Metrics
	flight   *singleflight.Group

	mu         sync.Mutex
	size       int
	entries    map[domain.CacheKey]*entry
	order      *list.List // of domain.CacheKey, oldest insert at the front
	index      *btree.BTreeG[domain.CacheKey]
	generation GenerationTracker
	// epoch changes on every clear so builds started before it are not cached.
	epoch uint64

	stats counters
}

// NewCache creates an empty Cache that compiles misses with compiler.
func NewCache(
	compiler ports.Compiler,
	logger ports.Logger,
	tracer ports.Tracer,
	metrics ports.Metrics,
	opts ...Option,
) *Cache {
	c := &Cache{
		compiler: compiler,
		logger:   logger,
		tracer:   tracer,
		metrics:  metrics,
		size:     domain.DefaultCacheSize,
		entries:  make(map[domain.CacheKey]*entry),
		order:    list.New(),
		index:    btree.NewG(indexDegree, domain.CacheKey.Less),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns the compilation result of registry at the given instant.
//
// An exact hit is returned as is. Otherwise artifacts still valid at the instant
// are salvaged from the neighbouring results of the same registry, the remaining
// definitions are compiled, and the merged result is cached. Definitions that
// fail to compile are missing from the result. Resolve fails only for a zero
// instant or when ctx is cancelled while compiling.
func (c *Cache) Resolve(
	ctx context.Context,
	registry ports.DefinitionRegistry,
	cctx domain.CompilationContext,
	at time.Time,
) (*domain.CompilationResult, error) {
	id := registry.Identity()
	if at.IsZero() {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidInstant, "cannot resolve"), "registry", id.String())
	}
	key := domain.NewCacheKey(id, at)

	ctx, span := c.tracer.Start(ctx, "repocache.resolve", ports.WithAttribute("registry", id.String()))
	defer span.End()

	c.checkGeneration(ctx, registry.RevisionID())

	if result, ok := c.get(key); ok {
		c.stats.hits.Add(1)
		c.metrics.RecordHit(ctx, id.String())
		span.SetAttribute("cache.hit", true)
		return result, nil
	}
	c.stats.misses.Add(1)
	c.metrics.RecordMiss(ctx, id.String())
	span.SetAttribute("cache.hit", false)

	result, err := c.resolveMiss(ctx, span, registry, key, cctx, at)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

func (c *Cache) resolveMiss(
	ctx context.Context,
	span ports.Span,
	registry ports.DefinitionRegistry,
	key domain.CacheKey,
	cctx domain.CompilationContext,
	at time.Time,
) (*domain.CompilationResult, error) {
	if c.flight == nil {
		return c.build(ctx, span, registry, key, cctx, at)
	}

	// The shared build outlives any single caller, so it ignores their cancellation.
	ch := c.flight.DoChan(key.String(), func() (any, error) {
		return c.build(context.WithoutCancel(ctx), span, registry, key, cctx, at)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		span.SetAttribute("cache.shared", res.Shared)
		result, _ := res.Val.(*domain.CompilationResult)
		return result, nil
	case <-ctx.Done():
		return nil, zerr.Wrap(errors.Join(domain.ErrCompilationInterrupted, ctx.Err()), "resolve abandoned")
	}
}

func (c *Cache) build(
	ctx context.Context,
	span ports.Span,
	registry ports.DefinitionRegistry,
	key domain.CacheKey,
	cctx domain.CompilationContext,
	at time.Time,
) (*domain.CompilationResult, error) {
	// Snapshot so concurrent registry edits cannot change the set mid-build.
	defs := slices.Clone(registry.AllDefinitions())

	c.mu.Lock()
	epoch := c.epoch
	previous, next := c.neighboursLocked(key)
	c.mu.Unlock()

	plan := salvage.Partition(defs, previous, next, at)
	span.SetAttribute("cache.salvaged", len(plan.Salvaged))

	compiled, err := c.compiler.CompileAll(ctx, plan.Remaining, cctx, at)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to compile definitions"), "registry", key.Registry().String())
	}
	// Salvage only counts once the build it feeds has finished.
	if n := len(plan.Salvaged); n > 0 {
		c.stats.salvaged.Add(int64(n))
		c.metrics.RecordSalvaged(ctx, key.Registry().String(), n)
	}
	c.stats.compiled.Add(int64(len(compiled)))
	c.stats.failures.Add(int64(len(plan.Remaining) - len(compiled)))
	span.SetAttribute("cache.compiled", len(compiled))

	artifacts := plan.Salvaged
	for id, a := range compiled {
		artifacts[id] = a
	}
	result := domain.NewCompilationResult(key.Registry(), at, artifacts)

	stored, evicted := c.insert(key, result, epoch)
	if !stored {
		c.logger.Warn(fmt.Sprintf("discarding result for %s compiled before cache invalidation", key))
	}
	if evicted > 0 {
		c.stats.evictions.Add(int64(evicted))
		c.metrics.RecordEviction(ctx, evicted)
	}

	return result, nil
}

// checkGeneration clears the cache when the registry revision has moved on.
func (c *Cache) checkGeneration(ctx context.Context, revision int64) {
	c.mu.Lock()
	previous, _ := c.generation.Current()
	changed := c.generation.Check(revision)
	dropped := 0
	if changed {
		dropped = c.clearLocked()
	}
	c.mu.Unlock()

	if !changed {
		return
	}
	c.stats.invalidations.Add(1)
	c.metrics.RecordInvalidation(ctx)
	c.logger.Info(fmt.Sprintf(
		"registry revision changed from %d to %d, dropped %d cached results", previous, revision, dropped,
	))
}

func (c *Cache) get(key domain.CacheKey) (*domain.CompilationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.result, true
}

// neighboursLocked returns the nearest results of the same registry strictly
// before and after key.
func (c *Cache) neighboursLocked(key domain.CacheKey) (previous, next *domain.CompilationResult) {
	c.index.DescendLessOrEqual(key, func(k domain.CacheKey) bool {
		if k == key {
			return true
		}
		if k.Registry() == key.Registry() {
			previous = c.entries[k].result
		}
		return false
	})
	c.index.AscendGreaterOrEqual(key, func(k domain.CacheKey) bool {
		if k == key {
			return true
		}
		if k.Registry() == key.Registry() {
			next = c.entries[k].result
		}
		return false
	})
	return previous, next
}

// insert stores result under key unless the cache was cleared after epoch.
// Storing an existing key replaces its result and counts as a fresh insert.
func (c *Cache) insert(key domain.CacheKey, result *domain.CompilationResult, epoch uint64) (stored bool, evicted int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		return false, 0
	}

	if e, ok := c.entries[key]; ok {
		e.result = result
		c.order.MoveToBack(e.elem)
		return true, 0
	}

	c.entries[key] = &entry{result: result, elem: c.order.PushBack(key)}
	c.index.ReplaceOrInsert(key)
	return true, c.evictLocked()
}

// evictLocked drops oldest inserts until the cache fits its bound.
func (c *Cache) evictLocked() int {
	evicted := 0
	for len(c.entries) > c.size {
		front := c.order.Front()
		key, _ := front.Value.(domain.CacheKey)
		c.order.Remove(front)
		delete(c.entries, key)
		c.index.Delete(key)
		evicted++
	}
	return evicted
}

func (c *Cache) clearLocked() int {
	n := len(c.entries)
	c.entries = make(map[domain.CacheKey]*entry)
	c.order.Init()
	c.index.Clear(false)
	c.epoch++
	return n
}

// SetCacheSize changes the eviction bound. Shrinking evicts immediately.
func (c *Cache) SetCacheSize(n int) error {
	if n < 1 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidCacheSize, "cannot resize cache"), "size", n)
	}

	c.mu.Lock()
	c.size = n
	evicted := c.evictLocked()
	c.mu.Unlock()

	if evicted > 0 {
		c.stats.evictions.Add(int64(evicted))
		c.metrics.RecordEviction(context.Background(), evicted)
	}
	return nil
}

// CacheSize returns the eviction bound.
func (c *Cache) CacheSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Contains reports whether a result is cached for exactly this registry and instant.
func (c *Cache) Contains(registry domain.RegistryID, at time.Time) bool {
	_, ok := c.get(domain.NewCacheKey(registry, at))
	return ok
}

// Clear drops every cached result. Builds in flight are not cached afterwards.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() domain.Stats {
	c.mu.Lock()
	entries, size := len(c.entries), c.size
	generation, _ := c.generation.Current()
	c.mu.Unlock()

	return domain.Stats{
		Entries:       entries,
		Size:          size,
		Generation:    generation,
		Hits:          c.stats.hits.Load(),
		Misses:        c.stats.misses.Load(),
		Salvaged:      c.stats.salvaged.Load(),
		Compiled:      c.stats.compiled.Load(),
		Failures:      c.stats.failures.Load(),
		Evictions:     c.stats.evictions.Load(),
		Invalidations: c.stats.invalidations.Load(),
	}
}
