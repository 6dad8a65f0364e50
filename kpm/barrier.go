package kpm

import "sync"

// Barrier is a reusable full-group synchronization point. Wait blocks
// until every member of the fixed group has arrived, then releases the
// whole group and rearms for the next phase. There is no cancellation:
// a member that never arrives blocks the group forever (fail-stop).
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	size    int
	waiting int
	phase   uint64
}

// NewBarrier builds a barrier for a fixed group of size n.
func NewBarrier(n int) (*Barrier, error) {
	if n < 1 {
		return nil, ErrGroupSize
	}
	b := &Barrier{size: n}
	b.cond = sync.NewCond(&b.mu)
	return b, nil
}

// Size returns the fixed group size.
func (b *Barrier) Size() int { return b.size }

// Wait blocks the caller until all group members have called Wait for
// the current phase.
func (b *Barrier) Wait() {
	b.mu.Lock()
	phase := b.phase
	b.waiting++
	if b.waiting == b.size {
		b.waiting = 0
		b.phase++
		b.cond.Broadcast()
		b.mu.Unlock()
		return
	}
	for phase == b.phase {
		b.cond.Wait()
	}
	b.mu.Unlock()
}
