package kpm

import (
	"sync"

	"github.com/katalvlaran/chebtile/lattice"
	"github.com/katalvlaran/chebtile/operator"
)

// Context is the run-scoped state shared by the fixed worker group:
// the boundary staging buffer, the group barrier and the lock guarding
// shared accumulators. It is allocated once per run and passed by
// reference to every worker — there are no ambient globals.
type Context[T operator.Scalar] struct {
	workers   int
	maxBorder int
	staging   []T
	barrier   *Barrier
	mu        sync.Mutex
}

// NewContext sizes the shared state from the run options. The staging
// buffer holds one slot of 2·maxBorder cells per worker, reused for
// every axis of every exchange; its contents are only meaningful
// between the publish and consume barriers of a single exchange call.
func NewContext[T operator.Scalar](opt lattice.Options) (*Context[T], error) {
	// Worker 0's geometry is representative: all domains share sizes.
	g, err := lattice.NewGeometry(opt, 0)
	if err != nil {
		return nil, err
	}
	workers := opt.Workers()
	b, err := NewBarrier(workers)
	if err != nil {
		return nil, err
	}
	return &Context[T]{
		workers:   workers,
		maxBorder: g.MaxBorder,
		staging:   make([]T, 2*g.MaxBorder*workers),
		barrier:   b,
	}, nil
}

// Workers returns the fixed group size.
func (c *Context[T]) Workers() int { return c.workers }

// Barrier returns the group barrier.
func (c *Context[T]) Barrier() *Barrier { return c.barrier }

// slot returns one worker's staging window of 2·maxBorder cells.
func (c *Context[T]) slot(worker int) []T {
	base := 2 * c.maxBorder * worker
	return c.staging[base : base+2*c.maxBorder]
}

// Locked runs fn under the shared-accumulator lock.
func (c *Context[T]) Locked(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// Coordinated runs fn on the coordinator worker only (worker 0), with a
// full barrier before and after, so no worker observes a half-applied
// once-only action such as an accumulator reset.
func (c *Context[T]) Coordinated(worker int, fn func()) {
	c.barrier.Wait()
	if worker == 0 {
		fn()
	}
	c.barrier.Wait()
}
