package lattice

// Options bundles the global parameters a Geometry is derived from.
// The same Options value is shared by every worker of a run.
type Options struct {
	// GlobalSizes lists the unpadded lattice size per axis.
	GlobalSizes []int
	// WorkerGrid lists the number of domains per axis; the product is the
	// worker count. Domains tile the lattice as a torus.
	WorkerGrid []int
	// Orbitals is the number of orbitals per lattice site.
	Orbitals int
	// Ghost is the halo width copied from each neighbor. It must be at
	// least the longest hopping range of the operator so that a single
	// exchange per recursion step suffices.
	Ghost int
	// Tile is the side of the square/cubic cache-blocking tile.
	Tile int
}

// Workers returns the total worker count implied by the worker grid.
func (o Options) Workers() int {
	n := 1
	for _, w := range o.WorkerGrid {
		n *= w
	}
	return n
}

// Geometry holds everything one worker's recursion and exchange loops
// need, derived once at construction and immutable afterwards.
type Geometry struct {
	// Worker is this worker's id in [0, Options.Workers()).
	Worker int
	// WorkerCoord is the worker's position in the logical worker grid.
	WorkerCoord []int
	// Interior is the per-axis interior (unpadded) size owned by this
	// worker. Identical for every worker.
	Interior []int
	// Padded is the ghost-padded local extent (Interior + 2·Ghost per
	// axis) with the orbital count.
	Padded Extent
	// Global is the unpadded global extent.
	Global Extent
	// Neighbors[d] holds the worker ids of the low-side and high-side
	// neighbor along axis d on the worker-grid torus.
	Neighbors [][2]int
	// Border[d] is the cell count of one boundary layer along axis d:
	// Orbitals·Ghost·Π(e<d: Padded)·Π(e>d: Interior). Axes exchanged
	// after axis d see its refreshed ghosts, so corners propagate.
	Border []int
	// MaxBorder is the maximum of Border, sizing the shared staging slot.
	MaxBorder int
	// TilesPerAxis is Interior[d]/Tile per axis.
	TilesPerAxis []int
	// TileCount is the product of TilesPerAxis.
	TileCount int

	opt         Options
	tileOrigins []int      // flat offset of each tile's first cell, orbital 0
	rowOffsets  []int      // offsets of the Tile^(D-1) axis-0 runs inside a tile
	publish     [][2][]int // [axis][side] flat offsets of the layer to publish
	ghosts      [][2][]int // [axis][side] flat offsets of the ghost cells to fill
	ghostCells  []int      // every ghost-region offset, for masking
}

// NewGeometry validates the options and derives the geometry for one
// worker. All configuration errors of the run surface here, before any
// recursion begins; the hot paths never re-validate.
func NewGeometry(opt Options, worker int) (*Geometry, error) {
	dim := len(opt.GlobalSizes)
	if dim == 0 || len(opt.WorkerGrid) != dim {
		return nil, ErrDimension
	}
	if opt.Orbitals < 1 {
		return nil, ErrOrbitals
	}
	if worker < 0 || worker >= opt.Workers() {
		return nil, ErrWorkerGrid
	}
	if opt.Tile < 1 {
		return nil, ErrNotTileMultiple
	}

	interior := make([]int, dim)
	padded := make([]int, dim)
	for d := 0; d < dim; d++ {
		if opt.WorkerGrid[d] < 1 || opt.GlobalSizes[d] < 1 || opt.GlobalSizes[d]%opt.WorkerGrid[d] != 0 {
			return nil, ErrWorkerGrid
		}
		interior[d] = opt.GlobalSizes[d] / opt.WorkerGrid[d]
		if interior[d]%opt.Tile != 0 {
			return nil, ErrNotTileMultiple
		}
		if opt.Ghost < 1 || opt.Ghost > interior[d] {
			return nil, ErrGhostWidth
		}
		padded[d] = interior[d] + 2*opt.Ghost
	}

	pext, err := NewExtent(padded, opt.Orbitals)
	if err != nil {
		return nil, err
	}
	gext, err := NewExtent(opt.GlobalSizes, opt.Orbitals)
	if err != nil {
		return nil, err
	}

	g := &Geometry{
		Worker:       worker,
		WorkerCoord:  workerCoord(opt.WorkerGrid, worker),
		Interior:     interior,
		Padded:       pext,
		Global:       gext,
		Neighbors:    make([][2]int, dim),
		Border:       make([]int, dim),
		TilesPerAxis: make([]int, dim),
		TileCount:    1,
		opt:          opt,
		publish:      make([][2][]int, dim),
		ghosts:       make([][2][]int, dim),
	}

	for d := 0; d < dim; d++ {
		g.Neighbors[d][0] = g.neighborID(d, -1)
		g.Neighbors[d][1] = g.neighborID(d, +1)
		g.TilesPerAxis[d] = interior[d] / opt.Tile
		g.TileCount *= g.TilesPerAxis[d]

		b := opt.Orbitals * opt.Ghost
		for e := 0; e < dim; e++ {
			switch {
			case e < d:
				b *= padded[e]
			case e > d:
				b *= interior[e]
			}
		}
		g.Border[d] = b
		if b > g.MaxBorder {
			g.MaxBorder = b
		}

		g.publish[d][0] = g.layerIndices(d, opt.Ghost)
		g.publish[d][1] = g.layerIndices(d, padded[d]-2*opt.Ghost)
		g.ghosts[d][0] = g.layerIndices(d, 0)
		g.ghosts[d][1] = g.layerIndices(d, padded[d]-opt.Ghost)
	}

	g.buildTiles()
	g.buildGhostMask()
	return g, nil
}

// Dim returns the number of spatial axes.
func (g *Geometry) Dim() int { return g.Padded.Dim() }

// Ghost returns the halo width.
func (g *Geometry) Ghost() int { return g.opt.Ghost }

// Tile returns the tile stride.
func (g *Geometry) Tile() int { return g.opt.Tile }

// Options returns the run-wide options the geometry was derived from.
func (g *Geometry) Options() Options { return g.opt }

// TileOrigin returns the flat offset (orbital 0) of the first cell of
// tile istr, in tile-major order with axis 0 fastest.
func (g *Geometry) TileOrigin(istr int) int { return g.tileOrigins[istr] }

// RowOffsets returns the relative offsets of every axis-0 run inside a
// tile; each run is Tile() contiguous cells.
func (g *Geometry) RowOffsets() []int { return g.rowOffsets }

// TileOf returns the tile index owning the interior cell at the given
// flat offset. Ghost cells and out-of-domain offsets are a contract
// violation, not a reported error.
func (g *Geometry) TileOf(index int) int {
	coord, _ := g.Padded.Coord(index)
	istr, mul := 0, 1
	for d := 0; d < g.Dim(); d++ {
		istr += (coord[d] - g.opt.Ghost) / g.opt.Tile * mul
		mul *= g.TilesPerAxis[d]
	}
	return istr
}

// PublishIndices returns the flat offsets of the interior boundary layer
// this worker publishes along the given axis and side (0 = low, 1 = high).
func (g *Geometry) PublishIndices(axis, side int) []int { return g.publish[axis][side] }

// GhostIndices returns the flat offsets of the ghost cells this worker
// fills from its axis/side neighbor. Position p of GhostIndices(d, s)
// corresponds to position p of the neighbor's PublishIndices(d, 1-s):
// the enumeration is a pure function of the shared geometry.
func (g *Geometry) GhostIndices(axis, side int) []int { return g.ghosts[axis][side] }

// GhostCells returns every flat offset in the ghost region, for masking.
func (g *Geometry) GhostCells() []int { return g.ghostCells }

// InteriorContains reports whether the padded-local coordinate lies in
// this worker's interior (ghost cells excluded).
func (g *Geometry) InteriorContains(coord []int) bool {
	for d, c := range coord {
		if c < g.opt.Ghost || c >= g.opt.Ghost+g.Interior[d] {
			return false
		}
	}
	return true
}

// GlobalCoord converts a padded-local flat offset into global (unpadded)
// coordinates plus orbital, wrapping on the torus.
func (g *Geometry) GlobalCoord(index int) (coord []int, orb int) {
	coord, orb = g.Padded.Coord(index)
	for d := range coord {
		n := g.Global.Size(d)
		c := g.WorkerCoord[d]*g.Interior[d] + coord[d] - g.opt.Ghost
		coord[d] = ((c % n) + n) % n
	}
	return coord, orb
}

// GlobalIndex is GlobalCoord composed with the global extent's Index.
func (g *Geometry) GlobalIndex(index int) int {
	coord, orb := g.GlobalCoord(index)
	return g.Global.Index(coord, orb)
}

// LocalIndex converts a global coordinate owned by this worker's
// interior into the padded-local flat offset. The second return is false
// when the coordinate belongs to another domain.
func (g *Geometry) LocalIndex(coord []int, orb int) (int, bool) {
	local := make([]int, len(coord))
	for d, c := range coord {
		base := g.WorkerCoord[d] * g.Interior[d]
		if c < base || c >= base+g.Interior[d] {
			return 0, false
		}
		local[d] = c - base + g.opt.Ghost
	}
	return g.Padded.Index(local, orb), true
}

// neighborID returns the worker id offset by delta along axis d on the
// worker-grid torus.
func (g *Geometry) neighborID(d, delta int) int {
	grid := g.opt.WorkerGrid
	coord := make([]int, len(grid))
	copy(coord, g.WorkerCoord)
	coord[d] = ((coord[d]+delta)%grid[d] + grid[d]) % grid[d]
	id, mul := 0, 1
	for e := 0; e < len(grid); e++ {
		id += coord[e] * mul
		mul *= grid[e]
	}
	return id
}

// layerIndices enumerates one boundary layer of thickness Ghost starting
// at padded axis-d position lo. Order: orbital, then layer depth, then a
// row-major sweep of the other axes — identical on the publishing and the
// consuming side, which is what makes the staged copy index-free.
func (g *Geometry) layerIndices(d, lo int) []int {
	dim := g.Dim()
	ranges := make([][2]int, dim)
	for e := 0; e < dim; e++ {
		switch {
		case e < d:
			ranges[e] = [2]int{0, g.Padded.Size(e)}
		case e > d:
			ranges[e] = [2]int{g.opt.Ghost, g.opt.Ghost + g.Interior[e]}
		}
	}
	out := make([]int, 0, g.Border[d])
	for orb := 0; orb < g.opt.Orbitals; orb++ {
		for layer := 0; layer < g.opt.Ghost; layer++ {
			ranges[d] = [2]int{lo + layer, lo + layer + 1}
			forEachCoord(ranges, func(coord []int) {
				out = append(out, g.Padded.Index(coord, orb))
			})
		}
	}
	return out
}

func (g *Geometry) buildTiles() {
	dim := g.Dim()
	g.tileOrigins = make([]int, 0, g.TileCount)
	ranges := make([][2]int, dim)
	for d := 0; d < dim; d++ {
		ranges[d] = [2]int{0, g.TilesPerAxis[d]}
	}
	forEachCoord(ranges, func(tc []int) {
		origin := 0
		for d := 0; d < dim; d++ {
			origin += (g.opt.Ghost + tc[d]*g.opt.Tile) * g.Padded.Stride(d)
		}
		g.tileOrigins = append(g.tileOrigins, origin)
	})

	// Offsets of the axis-0 runs inside one tile: a Tile^(D-1) sweep of
	// the remaining axes.
	if dim == 1 {
		g.rowOffsets = []int{0}
		return
	}
	rows := make([][2]int, dim-1)
	for d := 1; d < dim; d++ {
		rows[d-1] = [2]int{0, g.opt.Tile}
	}
	g.rowOffsets = make([]int, 0)
	forEachCoord(rows, func(rc []int) {
		off := 0
		for d := 1; d < dim; d++ {
			off += rc[d-1] * g.Padded.Stride(d)
		}
		g.rowOffsets = append(g.rowOffsets, off)
	})
}

func (g *Geometry) buildGhostMask() {
	dim := g.Dim()
	ranges := make([][2]int, dim)
	for d := 0; d < dim; d++ {
		ranges[d] = [2]int{0, g.Padded.Size(d)}
	}
	for orb := 0; orb < g.opt.Orbitals; orb++ {
		forEachCoord(ranges, func(coord []int) {
			for d, c := range coord {
				if c < g.opt.Ghost || c >= g.opt.Ghost+g.Interior[d] {
					g.ghostCells = append(g.ghostCells, g.Padded.Index(coord, orb))
					return
				}
			}
		})
	}
}

// workerCoord decomposes a worker id into worker-grid coordinates,
// axis 0 fastest.
func workerCoord(grid []int, worker int) []int {
	coord := make([]int, len(grid))
	for d := 0; d < len(grid); d++ {
		coord[d] = worker % grid[d]
		worker /= grid[d]
	}
	return coord
}
