package kpm

import (
	"math"

	"github.com/katalvlaran/chebtile/lattice"
	"github.com/katalvlaran/chebtile/operator"
)

// Kind selects the coefficients of the three-term Chebyshev recursion.
type Kind int

const (
	// First is the initial application: φ₁ = H·φ₀ (no n−2 history).
	First Kind = iota
	// Subsequent is the steady-state form: φₙ = 2H·φₙ₋₁ − φₙ₋₂.
	Subsequent
)

// Engine executes recursion steps and velocity applications over one
// worker's domain. It is bound to a Table, a Geometry and the run
// Context at construction and holds a private gather scratch for the
// exchange protocol.
type Engine[T operator.Scalar] struct {
	geom    *lattice.Geometry
	tbl     *operator.Table[T]
	ctx     *Context[T]
	scratch []T
	rowY    [][]int // global axis-1 coordinate per (tile, row); gauge only
}

// NewEngine binds a worker's operator table to the shared run context.
func NewEngine[T operator.Scalar](tbl *operator.Table[T], ctx *Context[T]) (*Engine[T], error) {
	g := tbl.Geom
	if ctx.workers != g.Options().Workers() || ctx.maxBorder != g.MaxBorder {
		return nil, ErrWorkerCount
	}
	e := &Engine[T]{
		geom:    g,
		tbl:     tbl,
		ctx:     ctx,
		scratch: make([]T, 2*g.MaxBorder),
	}
	if tbl.Gauge != nil {
		e.buildRowPhases()
	}
	return e, nil
}

// Geometry returns the worker geometry the engine operates on.
func (e *Engine[T]) Geometry() *lattice.Geometry { return e.geom }

// Table returns the operator table the engine reads.
func (e *Engine[T]) Table() *operator.Table[T] { return e.tbl }

// Context returns the shared run context.
func (e *Engine[T]) Context() *Context[T] { return e.ctx }

// Initiate fills slot 0 of the ring with unit-modulus random values over
// the interior, normalized so the expected squared norm of the whole
// decomposed vector is 1 (vacant cells excluded from the count), forces
// vacancy and defect-touched vacancy cells to exactly zero, and resets
// the cursor. This is the re-seeding point of a new realization; ghost
// cells are cleared and stay zero until the first exchange.
func (e *Engine[T]) Initiate(v *Vector[T], src *SiteSource) {
	_ = v.SetIndex(0)
	col := v.Col(0)
	for i := range col {
		col[i] = 0
	}
	norm := 1 / math.Sqrt(float64(e.geom.Global.Cells()-e.tbl.VacancyTotal))
	e.forEachInterior(func(i int) {
		col[i] = Draw[T](src, e.geom.GlobalIndex(i)) * operator.FromFloat[T](norm)
	})
	for istr := range e.tbl.Vacancies {
		for _, k := range e.tbl.Vacancies[istr] {
			col[k] = 0
		}
	}
	for _, k := range e.tbl.VacWithDefects {
		col[k] = 0
	}
}

// ApplyStep advances the cursor and executes one Chebyshev recursion
// step φ_next = −c·φₙ₋₂ + (c+1)·H·φₙ₋₁ over the local domain, then
// exchanges boundaries. On return the current slot is fully exchanged
// and stable.
func (e *Engine[T]) ApplyStep(v *Vector[T], kind Kind) {
	mult := 0.0
	if kind == Subsequent {
		mult = 1.0
	}
	v.advance()
	e.recursion(v.Current(), v.prev(1), v.prev(2), mult)
	e.Exchange(v)
}

// Dot returns the conjugated dot product Σ conj(bra[i])·ket[i] over the
// interior cells only; ghost copies never contribute, so per-worker
// partial sums add up to the undecomposed product.
func (e *Engine[T]) Dot(bra, ket []T) T {
	var sum T
	e.forEachInterior(func(i int) {
		sum += operator.Conj(bra[i]) * ket[i]
	})
	return sum
}

// recursion applies one mosaic sweep. mult is the φₙ₋₂ coefficient
// (0 for the first application, 1 afterwards); every Hamiltonian
// contribution is pre-scaled by (mult+1) outside the innermost loop.
func (e *Engine[T]) recursion(phi0, phiM1, phiM2 []T, mult float64) {
	g, t := e.geom, e.tbl
	c0 := operator.FromFloat[T](mult)
	c1 := operator.FromFloat[T](mult + 1)
	tile := g.Tile()
	orbs := g.Padded.Orbitals()
	orbStride := g.Padded.OrbStride()
	rows := g.RowOffsets()

	// Cross-mosaic tiles are seeded before the sweep: their defect
	// corrections arrive from a foreign anchor tile, and the general
	// init below must not overwrite them.
	for _, istr := range t.CrossTiles {
		origin := g.TileOrigin(istr)
		for orb := 0; orb < orbs; orb++ {
			base := origin + orb*orbStride
			for _, row := range rows {
				j := base + row
				for i := j; i < j+tile; i++ {
					phi0[i] = -c0 * phiM2[i]
				}
			}
		}
	}

	for istr := 0; istr < g.TileCount; istr++ {
		origin := g.TileOrigin(istr)
		for orb := 0; orb < orbs; orb++ {
			base := origin + orb*orbStride

			if t.NeedsInit[istr] {
				for _, row := range rows {
					j := base + row
					for i := j; i < j+tile; i++ {
						phi0[i] = -c0 * phiM2[i]
					}
				}
			}

			if t.HasOnSite {
				for _, row := range rows {
					j := base + row
					for i := j; i < j+tile; i++ {
						phi0[i] += c1 * t.U[i] * phiM1[i]
					}
				}
			}

			for hi := range t.Hops[orb] {
				hop := &t.Hops[orb][hi]
				t1 := c1 * hop.Amp
				d1 := hop.Delta
				if t.Gauge == nil {
					for _, row := range rows {
						j := base + row
						for i := j; i < j+tile; i++ {
							phi0[i] += t1 * phiM1[i+d1]
						}
					}
				} else {
					for ri, row := range rows {
						j := base + row
						tp := t1 * operator.Peierls[T](e.rowPhase(istr, ri, hop.Offset))
						for i := j; i < j+tile; i++ {
							phi0[i] += tp * phiM1[i+d1]
						}
					}
				}
			}
		}

		for _, inst := range t.TileDefects[istr] {
			for _, h := range inst.Hops {
				phi0[h.From] += c1 * h.Amp * phiM1[h.To]
			}
			for _, s := range inst.OnSite {
				phi0[s.At] += c1 * s.Energy * phiM1[s.At]
			}
		}

		for _, k := range t.Vacancies[istr] {
			phi0[k] = 0
		}
	}

	// Broken defects: contributions whose endpoints straddle a domain
	// boundary, applied once after the sweep from the border lists.
	for _, h := range t.BorderHops {
		phi0[h.From] += c1 * h.Amp * phiM1[h.To]
	}
	for _, s := range t.BorderOnSite {
		phi0[s.At] += c1 * s.Energy * phiM1[s.At]
	}
	for _, k := range t.VacWithDefects {
		phi0[k] = 0
	}
}

// forEachInterior sweeps every interior cell in tile-major order.
func (e *Engine[T]) forEachInterior(fn func(i int)) {
	g := e.geom
	tile := g.Tile()
	orbStride := g.Padded.OrbStride()
	rows := g.RowOffsets()
	for orb := 0; orb < g.Padded.Orbitals(); orb++ {
		for istr := 0; istr < g.TileCount; istr++ {
			base := g.TileOrigin(istr) + orb*orbStride
			for _, row := range rows {
				j := base + row
				for i := j; i < j+tile; i++ {
					fn(i)
				}
			}
		}
	}
}

// buildRowPhases precomputes the global axis-1 coordinate of every tile
// row; the stencil Peierls phase of a hopping is constant along an
// axis-0 run, so one factor per row suffices.
func (e *Engine[T]) buildRowPhases() {
	g := e.geom
	n1 := g.Global.Size(1)
	stride1 := g.Padded.Stride(1)
	e.rowY = make([][]int, g.TileCount)
	for istr := 0; istr < g.TileCount; istr++ {
		coord, _ := g.Padded.Coord(g.TileOrigin(istr))
		ys := make([]int, len(g.RowOffsets()))
		for ri, row := range g.RowOffsets() {
			dy := (row / stride1) % g.Tile()
			y := g.WorkerCoord[1]*g.Interior[1] + coord[1] + dy - g.Ghost()
			ys[ri] = ((y % n1) + n1) % n1
		}
		e.rowY[istr] = ys
	}
}

// rowPhase is the discretized Peierls line integral of one stencil
// hopping along a tile row: Δx·A₀₁·y_global.
func (e *Engine[T]) rowPhase(istr, ri int, offset []int) float64 {
	return float64(offset[0]) * e.tbl.Gauge[0][1] * float64(e.rowY[istr][ri])
}
