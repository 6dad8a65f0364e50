package operator

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/chebtile/lattice"
)

// Dense materializes the full undecomposed Hamiltonian of a Model over
// the global extent as an explicit complex matrix: the same rescaling,
// Peierls phases, disorder draws and vacancy projection the tiled
// engine applies, minus the decomposition. It exists as a brute-force
// reference for small lattices; it is never on a hot path.
//
// draw supplies the per-cell uniform disorder value in [0, 1); nil
// disables Anderson disorder.
func Dense(m *Model, ext lattice.Extent, draw func(globalIndex int) float64) (*mat.CDense, error) {
	dim := ext.Dim()
	orbs := ext.Orbitals()
	if m.Dim != dim {
		return nil, lattice.ErrDimension
	}
	if m.ScaleA < 0 {
		return nil, ErrScale
	}
	if m.Gauge != nil && dim != 2 {
		return nil, ErrGauge
	}
	a, b := m.scale()

	n := ext.Cells()
	h := mat.NewCDense(n, n, nil)

	// Periodic stencil, wrapped on the torus.
	for row := 0; row < n; row++ {
		coord, orb := ext.Coord(row)
		for _, hop := range m.Stencil {
			if hop.Orbital != orb {
				continue
			}
			if hop.To < 0 || hop.To >= orbs || len(hop.Offset) != dim {
				return nil, ErrOrbital
			}
			target := make([]int, dim)
			for d := 0; d < dim; d++ {
				nd := ext.Size(d)
				target[d] = ((coord[d]+hop.Offset[d])%nd + nd) % nd
			}
			amp := hop.Amp / complex(a, 0)
			if m.Gauge != nil {
				phase := float64(hop.Offset[0]) * m.Gauge[0][1] * float64(coord[1])
				amp *= cmplx.Exp(complex(0, phase))
			}
			col := ext.Index(target, hop.To)
			h.Set(row, col, h.At(row, col)+amp)
		}
	}

	// On-site energies, spectral shift and disorder.
	for row := 0; row < n; row++ {
		_, orb := ext.Coord(row)
		e := complex(-b, 0)
		if m.OnSite != nil {
			e += m.OnSite[orb]
		}
		e /= complex(a, 0)
		if m.AndersonWidth != nil && m.AndersonWidth[orb] != 0 && draw != nil {
			e += complex(m.AndersonWidth[orb]/a*(draw(row)-0.5), 0)
		}
		if e != 0 {
			h.Set(row, row, h.At(row, row)+e)
		}
	}

	// Structural defects: one instance per anchor, node offsets wrapped.
	for _, def := range m.Defects {
		for _, anchor := range def.Anchors {
			if len(anchor) != dim {
				return nil, lattice.ErrDimension
			}
			nodes := make([][]int, len(def.Nodes))
			idx := make([]int, len(def.Nodes))
			for ni, nd := range def.Nodes {
				coord := make([]int, dim)
				for d := 0; d < dim; d++ {
					n0 := ext.Size(d)
					coord[d] = ((anchor[d]+nd.Offset[d])%n0 + n0) % n0
				}
				nodes[ni] = coord
				idx[ni] = ext.Index(coord, nd.Orb)
			}
			for _, dh := range def.Hops {
				amp := dh.Amp / complex(a, 0)
				if m.Gauge != nil {
					amp *= cmplx.Exp(complex(0, pairPhase(m.Gauge, nodes[dh.From], nodes[dh.To])))
				}
				r, c := idx[dh.From], idx[dh.To]
				h.Set(r, c, h.At(r, c)+amp)
			}
			for _, ds := range def.OnSite {
				r := idx[ds.Node]
				h.Set(r, r, h.At(r, r)+ds.Energy/complex(a, 0))
			}
		}
	}

	// Vacancy projection: a vacant cell neither receives nor contributes.
	for _, v := range m.Vacancies {
		if len(v.Coord) != dim {
			return nil, lattice.ErrDimension
		}
		row := ext.Index(v.Coord, v.Orb)
		for j := 0; j < n; j++ {
			h.Set(row, j, 0)
			h.Set(j, row, 0)
		}
	}

	return h, nil
}
