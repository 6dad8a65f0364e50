package kpm

import (
	"github.com/katalvlaran/chebtile/lattice"
	"github.com/katalvlaran/chebtile/operator"
)

// Vector is the KPM iterate ring: a fixed-capacity collection of
// state-vector columns over one worker's padded domain plus a cursor.
// The backing storage is owned exclusively by the ring.
type Vector[T operator.Scalar] struct {
	geom  *lattice.Geometry
	cols  [][]T
	index int
}

// NewVector allocates a ring of m zeroed columns. m = 1 suffices for a
// plain snapshot, m ≥ 2 for the three-term recursion (see package doc
// for the m = 2 aliasing property), larger m for multi-operator moment
// traversals that must keep more history.
func NewVector[T operator.Scalar](geom *lattice.Geometry, m int) (*Vector[T], error) {
	if m < 1 {
		return nil, ErrMemory
	}
	v := &Vector[T]{geom: geom, cols: make([][]T, m)}
	for i := range v.cols {
		v.cols[i] = make([]T, geom.Padded.Cells())
	}
	return v, nil
}

// Cap returns the ring capacity M.
func (v *Vector[T]) Cap() int { return len(v.cols) }

// Index returns the cursor, the slot of the newest iterate.
func (v *Vector[T]) Index() int { return v.index }

// SetIndex repositions the cursor. Returns ErrSlot outside [0, M).
func (v *Vector[T]) SetIndex(i int) error {
	if i < 0 || i >= len(v.cols) {
		return ErrSlot
	}
	v.index = i
	return nil
}

// Col returns the backing column of one ring slot. The caller may read
// the current slot immediately after any engine operation; it is fully
// exchanged and stable until the next operation on this ring.
func (v *Vector[T]) Col(slot int) []T { return v.cols[slot] }

// Current returns the newest iterate's column.
func (v *Vector[T]) Current() []T { return v.cols[v.index] }

// Geometry returns the domain geometry the ring was allocated for.
func (v *Vector[T]) Geometry() *lattice.Geometry { return v.geom }

// advance moves the cursor one slot forward, modulo the capacity.
func (v *Vector[T]) advance() { v.index = (v.index + 1) % len(v.cols) }

// prev returns the column k steps behind the cursor (k < M).
func (v *Vector[T]) prev(k int) []T {
	m := len(v.cols)
	return v.cols[(v.index+m-k%m)%m]
}

// EmptyGhosts zeroes every ghost-region cell of one slot, so the column
// behaves as if no neighbor contribution existed — used before dot
// products that must only see locally owned cells, e.g. right after a
// velocity application and before its first exchange.
func (v *Vector[T]) EmptyGhosts(slot int) {
	col := v.cols[slot]
	for _, i := range v.geom.GhostCells() {
		col[i] = 0
	}
}

// CopySlot copies a slot of src into a slot of v; the two rings must
// share a geometry (unchecked hot-path contract).
func (v *Vector[T]) CopySlot(dst int, src *Vector[T], from int) {
	copy(v.cols[dst], src.cols[from])
}
