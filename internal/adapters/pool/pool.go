// Package pool provides a bounded goroutine pool for compile tasks.
package pool

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool runs tasks on at most Size goroutines at once.
type Pool struct {
	g    errgroup.Group
	size int
}

// New creates a pool of the given size. A size below one means one worker per CPU.
func New(size int) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{size: size}
	p.g.SetLimit(size)
	return p
}

// Go runs task on the pool, blocking while all workers are busy.
func (p *Pool) Go(task func()) {
	p.g.Go(func() error {
		task()
		return nil
	})
}

// Size returns the worker limit.
func (p *Pool) Size() int {
	return p.size
}

// Wait blocks until every submitted task has returned.
func (p *Pool) Wait() {
	_ = p.g.Wait()
}
