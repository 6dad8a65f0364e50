package lattice

// Extent describes a rectangular box of lattice cells with an orbital
// index, together with the precomputed strides that make (coordinate,
// orbital) ↔ flat offset a pure O(D) bijection.
//
// Axis 0 is the fastest-varying (unit-stride) axis; the orbital index is
// the slowest. This matches the memory layout the tiled apply engine
// traverses: contiguous runs along axis 0 inside each tile.
type Extent struct {
	sizes    []int
	orbitals int
	stride   []int
	cells    int // cells per orbital sheet
}

// NewExtent builds an Extent from per-axis sizes and an orbital count.
// Returns ErrDimension for an empty or non-positive size vector and
// ErrOrbitals for orbitals < 1.
func NewExtent(sizes []int, orbitals int) (Extent, error) {
	if len(sizes) == 0 {
		return Extent{}, ErrDimension
	}
	if orbitals < 1 {
		return Extent{}, ErrOrbitals
	}
	ext := Extent{
		sizes:    make([]int, len(sizes)),
		orbitals: orbitals,
		stride:   make([]int, len(sizes)),
		cells:    1,
	}
	for d, n := range sizes {
		if n < 1 {
			return Extent{}, ErrDimension
		}
		ext.sizes[d] = n
		ext.stride[d] = ext.cells
		ext.cells *= n
	}
	return ext, nil
}

// Dim returns the number of spatial axes.
func (e Extent) Dim() int { return len(e.sizes) }

// Size returns the length of the given axis.
func (e Extent) Size(axis int) int { return e.sizes[axis] }

// Orbitals returns the orbital count.
func (e Extent) Orbitals() int { return e.orbitals }

// Stride returns the linear step for one unit along the given axis.
func (e Extent) Stride(axis int) int { return e.stride[axis] }

// OrbStride returns the linear step for one unit of the orbital index,
// i.e. the number of cells in one orbital sheet.
func (e Extent) OrbStride() int { return e.cells }

// Cells returns the total number of cells, orbitals included.
func (e Extent) Cells() int { return e.cells * e.orbitals }

// Index maps (coord, orbital) to the flat offset.
//
// Contract: 0 ≤ coord[d] < Size(d) and 0 ≤ orb < Orbitals. The hot path
// performs no bounds checking; violating the contract is undefined
// behavior, not a reported error.
func (e Extent) Index(coord []int, orb int) int {
	idx := orb * e.cells
	for d, c := range coord {
		idx += c * e.stride[d]
	}
	return idx
}

// Coord maps a flat offset back to (coord, orbital), the inverse of
// Index. The coord slice is freshly allocated; hot loops should keep
// their own coordinate counters instead.
func (e Extent) Coord(index int) (coord []int, orb int) {
	orb = index / e.cells
	rest := index - orb*e.cells
	coord = make([]int, len(e.sizes))
	for d := len(e.sizes) - 1; d >= 0; d-- {
		coord[d] = rest / e.stride[d]
		rest -= coord[d] * e.stride[d]
	}
	return coord, orb
}

// forEachCoord iterates row-major (axis 0 fastest) over the half-open
// per-axis ranges, invoking fn with a reused coordinate slice.
func forEachCoord(ranges [][2]int, fn func(coord []int)) {
	d := len(ranges)
	coord := make([]int, d)
	for i := range coord {
		coord[i] = ranges[i][0]
		if ranges[i][0] >= ranges[i][1] {
			return // empty range: no cells at all
		}
	}
	for {
		fn(coord)
		axis := 0
		for axis < d {
			coord[axis]++
			if coord[axis] < ranges[axis][1] {
				break
			}
			coord[axis] = ranges[axis][0]
			axis++
		}
		if axis == d {
			return
		}
	}
}
