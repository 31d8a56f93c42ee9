package repocache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fnrepo/internal/core/domain"
	"go.trai.ch/fnrepo/internal/core/ports"
	"go.trai.ch/fnrepo/internal/engine/repocache"
)

func TestResolve_ExactHitIsIdempotent(t *testing.T) {
	c, _ := setupCacheTest(t)
	a, b := openDef("a"), openDef("b")
	reg := newRegistry("rates", &revision{}, a, b)

	first, err := c.Resolve(context.Background(), reg, nil, ts(5))
	require.NoError(t, err)
	second, err := c.Resolve(context.Background(), reg, nil, ts(5))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, first.Artifacts(), second.Artifacts())
	assert.Equal(t, int64(1), a.calls.Load())
	assert.Equal(t, int64(1), b.calls.Load())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.Compiled)
}

func TestResolve_SalvagesFromPrevious(t *testing.T) {
	c, _ := setupCacheTest(t)
	d := windowDef("d", domain.ValidityWindow{Latest: ts(3)})
	reg := newRegistry("rates", &revision{}, d)

	r1, err := c.Resolve(context.Background(), reg, nil, ts(1))
	require.NoError(t, err)

	r2, err := c.Resolve(context.Background(), reg, nil, ts(2))
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.calls.Load(), "artifact valid until T3 is reused at T2")

	a1, _ := r1.Lookup("d")
	a2, ok := r2.Lookup("d")
	require.True(t, ok)
	assert.Equal(t, a1, a2)

	_, err = c.Resolve(context.Background(), reg, nil, ts(4))
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.calls.Load(), "T4 is past the window and must compile again")
	assert.Equal(t, int64(1), c.Stats().Salvaged)
}

func TestResolve_BoundaryInclusive(t *testing.T) {
	t.Run("latest equals instant", func(t *testing.T) {
		c, _ := setupCacheTest(t)
		d := windowDef("d", domain.ValidityWindow{Latest: ts(3)})
		reg := newRegistry("rates", &revision{}, d)

		_, err := c.Resolve(context.Background(), reg, nil, ts(1))
		require.NoError(t, err)
		_, err = c.Resolve(context.Background(), reg, nil, ts(3))
		require.NoError(t, err)

		assert.Equal(t, int64(1), d.calls.Load())
	})

	t.Run("earliest equals instant", func(t *testing.T) {
		c, _ := setupCacheTest(t)
		d := windowDef("d", domain.ValidityWindow{Earliest: ts(5)})
		reg := newRegistry("rates", &revision{}, d)

		_, err := c.Resolve(context.Background(), reg, nil, ts(9))
		require.NoError(t, err)
		_, err = c.Resolve(context.Background(), reg, nil, ts(5))
		require.NoError(t, err)
		assert.Equal(t, int64(1), d.calls.Load(), "later artifact valid from T5 is reused at T5")

		_, err = c.Resolve(context.Background(), reg, nil, ts(4))
		require.NoError(t, err)
		assert.Equal(t, int64(2), d.calls.Load())
	})
}

func TestResolve_NeighboursStayWithinRegistry(t *testing.T) {
	c, _ := setupCacheTest(t)
	rev := &revision{}
	ratesDef, creditDef := openDef("shared"), openDef("shared")
	rates := newRegistry("rates", rev, ratesDef)
	credit := newRegistry("credit", rev, creditDef)

	_, err := c.Resolve(context.Background(), rates, nil, ts(1))
	require.NoError(t, err)
	res, err := c.Resolve(context.Background(), credit, nil, ts(2))
	require.NoError(t, err)

	assert.Equal(t, int64(1), creditDef.calls.Load(), "another registry's artifacts are never salvaged")
	a, _ := res.Lookup("shared")
	assert.Equal(t, "shared@2024-03-02", a.Invoker)
}

func TestResolve_BoundedFIFOEviction(t *testing.T) {
	c, _ := setupCacheTest(t, repocache.WithCacheSize(3))
	reg := newRegistry("rates", &revision{}, windowDef("d", domain.ValidityWindow{Earliest: ts(1), Latest: ts(1)}))

	for d := 1; d <= 3; d++ {
		_, err := c.Resolve(context.Background(), reg, nil, ts(d))
		require.NoError(t, err)
	}
	// Re-reading the oldest entry does not refresh it.
	_, err := c.Resolve(context.Background(), reg, nil, ts(1))
	require.NoError(t, err)

	_, err = c.Resolve(context.Background(), reg, nil, ts(4))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.False(t, c.Contains(reg.Identity(), ts(1)), "oldest insert is evicted")
	for d := 2; d <= 4; d++ {
		assert.True(t, c.Contains(reg.Identity(), ts(d)))
	}
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestResolve_GenerationInvalidatesAllRegistries(t *testing.T) {
	c, _ := setupCacheTest(t)
	rev := &revision{}
	rates := newRegistry("rates", rev, openDef("a"))
	credit := newRegistry("credit", rev, openDef("b"))

	_, err := c.Resolve(context.Background(), rates, nil, ts(1))
	require.NoError(t, err)
	require.True(t, c.Contains(rates.Identity(), ts(1)))

	rev.bump()
	_, err = c.Resolve(context.Background(), credit, nil, ts(7))
	require.NoError(t, err)

	assert.False(t, c.Contains(rates.Identity(), ts(1)))
	assert.True(t, c.Contains(credit.Identity(), ts(7)))
	assert.Equal(t, 1, c.Len())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Invalidations)
	assert.Equal(t, int64(1), stats.Generation)
}

func TestResolve_SameRevisionKeepsEntries(t *testing.T) {
	c, _ := setupCacheTest(t)
	rev := &revision{}
	rev.bump()
	reg := newRegistry("rates", rev, openDef("a"))

	for range 3 {
		_, err := c.Resolve(context.Background(), reg, nil, ts(1))
		require.NoError(t, err)
	}

	assert.Equal(t, int64(0), c.Stats().Invalidations)
	assert.Equal(t, int64(2), c.Stats().Hits)
}

func TestResolve_IsolatesPartialFailure(t *testing.T) {
	c, _ := setupCacheTest(t)
	bad := &countingDef{id: "bad", err: errors.New("missing native library")}
	reg := newRegistry("rates", &revision{}, openDef("a"), bad, openDef("c"))

	res, err := c.Resolve(context.Background(), reg, nil, ts(1))

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, res.IDs())
	_, ok := res.Lookup("bad")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Failures)
}

func TestResolve_AggregateBounds(t *testing.T) {
	c, _ := setupCacheTest(t)
	reg := newRegistry("rates", &revision{},
		windowDef("five", domain.ValidityWindow{Latest: ts(5)}),
		windowDef("eight", domain.ValidityWindow{Latest: ts(8)}),
	)

	res, err := c.Resolve(context.Background(), reg, nil, ts(1))
	require.NoError(t, err)

	latest, ok := res.LatestInvocationTime()
	require.True(t, ok)
	assert.True(t, latest.Equal(ts(5)))
	_, ok = res.EarliestInvocationTime()
	assert.False(t, ok)
}

func TestResolve_RejectsZeroInstant(t *testing.T) {
	c, _ := setupCacheTest(t)
	reg := newRegistry("rates", &revision{}, openDef("a"))

	_, err := c.Resolve(context.Background(), reg, nil, time.Time{})

	require.ErrorIs(t, err, domain.ErrInvalidInstant)
	assert.Equal(t, 0, c.Len())
}

func TestResolve_EmptyRegistry(t *testing.T) {
	c, _ := setupCacheTest(t)
	reg := newRegistry("empty", &revision{})

	res, err := c.Resolve(context.Background(), reg, nil, ts(1))

	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
	assert.True(t, c.Contains(reg.Identity(), ts(1)))
}

func TestResolve_InterruptedIsNotCached(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c, _ := setupCacheTest(t)
		release := make(chan struct{})
		slow := &countingDef{id: "slow", block: release}
		reg := newRegistry("rates", &revision{}, slow)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err := c.Resolve(ctx, reg, nil, ts(1))

		require.ErrorIs(t, err, domain.ErrCompilationInterrupted)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 0, c.Len())

		close(release)
		synctest.Wait()
		assert.Equal(t, 0, c.Len(), "abandoned compile never reaches the cache")
	})
}

func TestResolve_InvalidationDuringBuildDiscardsResult(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c, _ := setupCacheTest(t)
		rev := &revision{}
		release := make(chan struct{})
		rates := newRegistry("rates", rev, &countingDef{id: "slow", block: release})
		credit := newRegistry("credit", rev, openDef("b"))

		done := make(chan *domain.CompilationResult)
		go func() {
			res, err := c.Resolve(context.Background(), rates, nil, ts(1))
			assert.NoError(t, err)
			done <- res
		}()
		synctest.Wait()

		rev.bump()
		_, err := c.Resolve(context.Background(), credit, nil, ts(2))
		require.NoError(t, err)

		close(release)
		res := <-done

		require.NotNil(t, res)
		assert.Equal(t, 1, res.Len(), "caller still gets its result")
		assert.False(t, c.Contains(rates.Identity(), ts(1)), "result built on the old revision is not cached")
		assert.True(t, c.Contains(credit.Identity(), ts(2)))
	})
}

func TestResolve_ConcurrentMissesLastWriteWins(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c, _ := setupCacheTest(t)
		release := make(chan struct{})
		d := &countingDef{id: "d", block: release}
		reg := newRegistry("rates", &revision{}, d)

		var wg sync.WaitGroup
		for range 2 {
			wg.Go(func() {
				_, err := c.Resolve(context.Background(), reg, nil, ts(1))
				assert.NoError(t, err)
			})
		}
		synctest.Wait()
		close(release)
		wg.Wait()

		assert.Equal(t, int64(2), d.calls.Load())
		assert.Equal(t, 1, c.Len())
	})
}

func TestResolve_SingleFlightCoalesces(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c, _ := setupCacheTest(t, repocache.WithSingleFlight())
		release := make(chan struct{})
		d := &countingDef{id: "d", block: release}
		reg := newRegistry("rates", &revision{}, d)

		results := make([]*domain.CompilationResult, 3)
		var wg sync.WaitGroup
		for i := range results {
			wg.Go(func() {
				res, err := c.Resolve(context.Background(), reg, nil, ts(1))
				assert.NoError(t, err)
				results[i] = res
			})
		}
		synctest.Wait()
		close(release)
		wg.Wait()

		assert.Equal(t, int64(1), d.calls.Load())
		assert.Same(t, results[0], results[1])
		assert.Same(t, results[1], results[2])
	})
}

func TestResolve_SingleFlightCallerCancellation(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c, _ := setupCacheTest(t, repocache.WithSingleFlight())
		release := make(chan struct{})
		reg := newRegistry("rates", &revision{}, &countingDef{id: "d", block: release})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.Resolve(ctx, reg, nil, ts(1))
		require.ErrorIs(t, err, domain.ErrCompilationInterrupted)

		close(release)
		synctest.Wait()
		assert.True(t, c.Contains(reg.Identity(), ts(1)), "shared build completes for later callers")
	})
}

func TestSetCacheSize(t *testing.T) {
	c, _ := setupCacheTest(t)
	reg := newRegistry("rates", &revision{}, windowDef("d", domain.ValidityWindow{Earliest: ts(1), Latest: ts(1)}))
	assert.Equal(t, domain.DefaultCacheSize, c.CacheSize())

	for d := 1; d <= 5; d++ {
		_, err := c.Resolve(context.Background(), reg, nil, ts(d))
		require.NoError(t, err)
	}

	require.NoError(t, c.SetCacheSize(2))
	assert.Equal(t, 2, c.CacheSize())
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Contains(reg.Identity(), ts(4)))
	assert.True(t, c.Contains(reg.Identity(), ts(5)))
	assert.Equal(t, int64(3), c.Stats().Evictions)

	err := c.SetCacheSize(0)
	require.ErrorIs(t, err, domain.ErrInvalidCacheSize)
	assert.Equal(t, 2, c.CacheSize())
}

func TestClear(t *testing.T) {
	c, _ := setupCacheTest(t)
	d := openDef("a")
	reg := newRegistry("rates", &revision{}, d)

	_, err := c.Resolve(context.Background(), reg, nil, ts(1))
	require.NoError(t, err)
	c.Clear()
	assert.Equal(t, 0, c.Len())

	_, err = c.Resolve(context.Background(), reg, nil, ts(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.calls.Load())
}

func TestResolve_SnapshotsDefinitions(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c, _ := setupCacheTest(t)
		release := make(chan struct{})
		reg := newRegistry("rates", &revision{}, &countingDef{id: "a", block: release})

		done := make(chan *domain.CompilationResult)
		go func() {
			res, err := c.Resolve(context.Background(), reg, nil, ts(1))
			assert.NoError(t, err)
			done <- res
		}()
		synctest.Wait()

		reg.mu.Lock()
		reg.defs = append([]ports.FunctionDefinition{}, openDef("late"))
		reg.mu.Unlock()

		close(release)
		res := <-done
		assert.Equal(t, []string{"a"}, res.IDs())
	})
}

func TestResolve_InterruptedBuildDoesNotCountSalvage(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c, _ := setupCacheTest(t)
		keep := windowDef("keep", domain.ValidityWindow{Latest: ts(3)})
		pinned := &countingDef{id: "pinned", window: func(at time.Time) domain.ValidityWindow {
			return domain.ValidityWindow{Latest: at}
		}}
		reg := newRegistry("rates", &revision{}, keep, pinned)

		_, err := c.Resolve(context.Background(), reg, nil, ts(1))
		require.NoError(t, err)

		release := make(chan struct{})
		pinned.block = release
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err = c.Resolve(ctx, reg, nil, ts(2))
		require.ErrorIs(t, err, domain.ErrCompilationInterrupted)
		assert.Equal(t, int64(0), c.Stats().Salvaged)

		close(release)
		synctest.Wait()

		_, err = c.Resolve(context.Background(), reg, nil, ts(2))
		require.NoError(t, err)
		assert.Equal(t, int64(1), c.Stats().Salvaged)
		assert.Equal(t, int64(1), keep.calls.Load())
	})
}

func TestResolve_FarFutureInstantsKeepTheirOrder(t *testing.T) {
	c, _ := setupCacheTest(t)
	far := time.Date(2300, time.January, 1, 0, 0, 0, 0, time.UTC)
	d := windowDef("d", domain.ValidityWindow{Earliest: far, Latest: far.AddDate(10, 0, 0)})
	reg := newRegistry("rates", &revision{}, d)

	_, err := c.Resolve(context.Background(), reg, nil, far)
	require.NoError(t, err)

	_, err = c.Resolve(context.Background(), reg, nil, time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.calls.Load(), "an artifact valid from 2300 must not serve 2000")
	assert.Equal(t, 2, c.Len())

	_, err = c.Resolve(context.Background(), reg, nil, far.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.calls.Load(), "2301 reuses the 2300 artifact")
	assert.Equal(t, int64(1), c.Stats().Salvaged)
}
