package kpm

import "github.com/katalvlaran/chebtile/lattice"

// ApplyVelocity overwrites the current slot of dst with the velocity
// operator along one axis applied to the current slot of src. Velocity
// applications differ from recursion steps in three ways: there is no
// n−2 history (pure overwrite, no cursor advance), the on-site pass is
// skipped (diagonal terms commute with position), and no Peierls phase
// multiplies the weights. Vacancy masking and the boundary exchange of
// dst still run.
func (e *Engine[T]) ApplyVelocity(dst, src *Vector[T], axis int) error {
	if axis < 0 || axis >= e.geom.Dim() {
		return lattice.ErrDimension
	}
	e.applyWeighted(dst.Current(), src.Current(), func(vel []T, vel2 [][]T) T {
		return vel[axis]
	})
	e.Exchange(dst)
	return nil
}

// ApplyVelocity2 is the double-commutator variant with one weight per
// axis pair.
func (e *Engine[T]) ApplyVelocity2(dst, src *Vector[T], a1, a2 int) error {
	if a1 < 0 || a1 >= e.geom.Dim() || a2 < 0 || a2 >= e.geom.Dim() {
		return lattice.ErrDimension
	}
	e.applyWeighted(dst.Current(), src.Current(), func(vel []T, vel2 [][]T) T {
		return vel2[a1][a2]
	})
	e.Exchange(dst)
	return nil
}

// applyWeighted runs the mosaic sweep of an off-diagonal weighted
// operator: out = Σ weight(hop)·in[col] with the same tile traversal,
// defect corrections and vacancy masking as the recursion, minus the
// on-site and history passes.
func (e *Engine[T]) applyWeighted(out, in []T, weight func(vel []T, vel2 [][]T) T) {
	g, t := e.geom, e.tbl
	tile := g.Tile()
	orbs := g.Padded.Orbitals()
	orbStride := g.Padded.OrbStride()
	rows := g.RowOffsets()

	for _, istr := range t.CrossTiles {
		origin := g.TileOrigin(istr)
		for orb := 0; orb < orbs; orb++ {
			base := origin + orb*orbStride
			for _, row := range rows {
				j := base + row
				for i := j; i < j+tile; i++ {
					out[i] = 0
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
						out[i] = 0
					}
				}
			}

			for hi := range t.Hops[orb] {
				hop := &t.Hops[orb][hi]
				w := weight(hop.Vel, hop.Vel2)
				if w == 0 {
					continue
				}
				d1 := hop.Delta
				for _, row := range rows {
					j := base + row
					for i := j; i < j+tile; i++ {
						out[i] += w * in[i+d1]
					}
				}
			}
		}

		for _, inst := range t.TileDefects[istr] {
			for _, h := range inst.Hops {
				if w := weight(h.Vel, h.Vel2); w != 0 {
					out[h.From] += w * in[h.To]
				}
			}
		}

		for _, k := range t.Vacancies[istr] {
			out[k] = 0
		}
	}

	for _, h := range t.BorderHops {
		if w := weight(h.Vel, h.Vel2); w != 0 {
			out[h.From] += w * in[h.To]
		}
	}
	for _, k := range t.VacWithDefects {
		out[k] = 0
	}
}
