package operator

import (
	"math/cmplx"

	"github.com/katalvlaran/chebtile/lattice"
)

// LinearHop is a stencil term pre-linearized against one worker's
// geometry: the column cell of row i is i+Delta.
type LinearHop[T Scalar] struct {
	// Delta is the flat offset from the row cell to the column cell.
	Delta int
	// Offset keeps the per-axis displacement for the run-time Peierls
	// phase of the periodic stencil.
	Offset []int
	// Amp is the rescaled amplitude.
	Amp T
	// Vel holds the single-commutator weight per axis.
	Vel []T
	// Vel2 holds the double-commutator weight per axis pair.
	Vel2 [][]T
}

// Term is one defect hopping with absolute padded-local endpoints; the
// static Peierls phase of the pair is already folded into Amp. The Vel
// and Vel2 weights carry no phase, preserving the source convention that
// velocity applications skip the gauge factor.
type Term[T Scalar] struct {
	From, To int
	Amp      T
	Vel      []T
	Vel2     [][]T
}

// SiteTerm is one defect on-site energy at an absolute padded offset.
type SiteTerm[T Scalar] struct {
	At     int
	Energy T
}

// Instance is one structural-defect occurrence local to a tile.
type Instance[T Scalar] struct {
	Hops   []Term[T]
	OnSite []SiteTerm[T]
}

// Table is a Model realized against one worker's Geometry. All slices
// are immutable after construction except U, which Realize refills at
// the start of each disorder realization.
type Table[T Scalar] struct {
	// Geom is the worker geometry the table was built for.
	Geom *lattice.Geometry
	// Hops lists the pre-linearized stencil per row orbital.
	Hops [][]LinearHop[T]
	// U is the on-site value per padded cell (static energy, spectral
	// shift and realized Anderson disorder); nil when HasOnSite is false.
	U []T
	// HasOnSite reports whether the on-site pass runs at all.
	HasOnSite bool
	// Vacancies lists padded offsets of vacant cells per tile.
	Vacancies [][]int
	// VacWithDefects lists vacancies that defect hops write into; the
	// engine re-zeroes them after the defect pass.
	VacWithDefects []int
	// TileDefects lists defect instances per tile.
	TileDefects [][]Instance[T]
	// BorderHops lists broken-defect hoppings whose row cell belongs to
	// this worker and whose column cell may sit in the ghost region.
	BorderHops []Term[T]
	// BorderOnSite lists broken-defect on-site terms local to this worker.
	BorderOnSite []SiteTerm[T]
	// CrossTiles lists tiles that receive defect writes from an instance
	// anchored in a different tile; the engine pre-initializes them.
	CrossTiles []int
	// NeedsInit is false exactly for the cross-mosaic tiles, which must
	// not be re-initialized by the general pass.
	NeedsInit []bool
	// VacancyTotal is the global vacancy count across every domain, used
	// to normalize the random initial vector.
	VacancyTotal int
	// Gauge is the vector-potential matrix; nil when the field is off.
	Gauge [][]float64

	staticU  []T // per orbital, after rescaling
	anderson []float64
	interior []int // padded offsets of every interior cell
	vacSet   map[int]struct{}
}

// NewTable projects the model onto one worker's geometry. Every
// configuration error of the operator surfaces here, once, before any
// recursion begins.
func NewTable[T Scalar](m *Model, g *lattice.Geometry) (*Table[T], error) {
	dim := g.Dim()
	orbs := g.Padded.Orbitals()
	if m.Dim != dim {
		return nil, lattice.ErrDimension
	}
	if m.ScaleA < 0 {
		return nil, ErrScale
	}
	if m.Gauge != nil && (dim != 2 || !IsComplex[T]()) {
		return nil, ErrGauge
	}
	a, b := m.scale()

	t := &Table[T]{
		Geom:        g,
		Hops:        make([][]LinearHop[T], orbs),
		Vacancies:   make([][]int, g.TileCount),
		TileDefects: make([][]Instance[T], g.TileCount),
		NeedsInit:   make([]bool, g.TileCount),
		Gauge:       m.Gauge,
		anderson:    make([]float64, orbs),
		vacSet:      make(map[int]struct{}),
	}
	for i := range t.NeedsInit {
		t.NeedsInit[i] = true
	}

	if err := t.buildStencil(m, a); err != nil {
		return nil, err
	}
	if err := t.buildOnSite(m, a, b); err != nil {
		return nil, err
	}
	if err := t.buildVacancies(m); err != nil {
		return nil, err
	}
	if err := t.buildDefects(m, a); err != nil {
		return nil, err
	}
	return t, nil
}

// Realize refills the on-site values for a new disorder realization.
// draw must return a deterministic uniform value in [0, 1) per global
// cell index, identical on every worker, so that any decomposition of
// the same lattice sees the same disorder landscape.
func (t *Table[T]) Realize(draw func(globalIndex int) float64) {
	if !t.HasOnSite {
		return
	}
	orbStride := t.Geom.Padded.OrbStride()
	for _, i := range t.interior {
		orb := i / orbStride
		u := t.staticU[orb]
		if w := t.anderson[orb]; w != 0 {
			u += FromFloat[T](w * (draw(t.Geom.GlobalIndex(i)) - 0.5))
		}
		t.U[i] = u
	}
}

// IsVacancy reports whether the padded offset is a vacant cell of this
// worker (test helper; the hot path uses the per-tile lists).
func (t *Table[T]) IsVacancy(index int) bool {
	_, ok := t.vacSet[index]
	return ok
}

func (t *Table[T]) buildStencil(m *Model, a float64) error {
	g := t.Geom
	dim := g.Dim()
	orbs := g.Padded.Orbitals()
	for _, h := range m.Stencil {
		if h.Orbital < 0 || h.Orbital >= orbs || h.To < 0 || h.To >= orbs {
			return ErrOrbital
		}
		if len(h.Offset) != dim {
			return lattice.ErrDimension
		}
		delta := (h.To - h.Orbital) * g.Padded.OrbStride()
		for d, o := range h.Offset {
			if o > g.Ghost() || -o > g.Ghost() {
				return ErrStencilRange
			}
			delta += o * g.Padded.Stride(d)
		}
		amp := h.Amp / complex(a, 0)
		if !IsComplex[T]() && imag(amp) != 0 {
			return ErrComplexAmplitude
		}
		lh := LinearHop[T]{
			Delta:  delta,
			Offset: append([]int(nil), h.Offset...),
			Amp:    FromComplex[T](amp),
			Vel:    make([]T, dim),
			Vel2:   make([][]T, dim),
		}
		for d1 := 0; d1 < dim; d1++ {
			lh.Vel[d1] = FromComplex[T](velocity(h.Offset, amp, d1))
			lh.Vel2[d1] = make([]T, dim)
			for d2 := 0; d2 < dim; d2++ {
				lh.Vel2[d1][d2] = FromComplex[T](velocity2(h.Offset, amp, d1, d2))
			}
		}
		t.Hops[h.Orbital] = append(t.Hops[h.Orbital], lh)
	}
	return nil
}

func (t *Table[T]) buildOnSite(m *Model, a, b float64) error {
	g := t.Geom
	orbs := g.Padded.Orbitals()
	if m.OnSite != nil && len(m.OnSite) != orbs {
		return ErrOrbital
	}
	if m.AndersonWidth != nil && len(m.AndersonWidth) != orbs {
		return ErrOrbital
	}
	hasDisorder := false
	t.staticU = make([]T, orbs)
	for orb := 0; orb < orbs; orb++ {
		e := complex(-b, 0)
		if m.OnSite != nil {
			e += m.OnSite[orb]
		}
		e /= complex(a, 0)
		if !IsComplex[T]() && imag(e) != 0 {
			return ErrComplexAmplitude
		}
		t.staticU[orb] = FromComplex[T](e)
		if e != 0 {
			hasDisorder = true
		}
		if m.AndersonWidth != nil && m.AndersonWidth[orb] != 0 {
			t.anderson[orb] = m.AndersonWidth[orb] / a
			hasDisorder = true
		}
	}
	if !hasDisorder {
		return nil
	}
	t.HasOnSite = true
	t.U = make([]T, g.Padded.Cells())
	t.buildInteriorList()
	for _, i := range t.interior {
		t.U[i] = t.staticU[i/g.Padded.OrbStride()]
	}
	return nil
}

func (t *Table[T]) buildInteriorList() {
	g := t.Geom
	tile := g.Tile()
	orbStride := g.Padded.OrbStride()
	t.interior = make([]int, 0, g.Global.Cells()/g.Options().Workers())
	for orb := 0; orb < g.Padded.Orbitals(); orb++ {
		for istr := 0; istr < g.TileCount; istr++ {
			base := g.TileOrigin(istr) + orb*orbStride
			for _, row := range g.RowOffsets() {
				for s := 0; s < tile; s++ {
					t.interior = append(t.interior, base+row+s)
				}
			}
		}
	}
}

func (t *Table[T]) buildVacancies(m *Model) error {
	g := t.Geom
	t.VacancyTotal = len(m.Vacancies)
	for _, v := range m.Vacancies {
		if err := checkSite(g, v.Coord, v.Orb); err != nil {
			return err
		}
		idx, mine := g.LocalIndex(v.Coord, v.Orb)
		if !mine {
			continue
		}
		istr := g.TileOf(idx)
		t.Vacancies[istr] = append(t.Vacancies[istr], idx)
		t.vacSet[idx] = struct{}{}
	}
	return nil
}

func (t *Table[T]) buildDefects(m *Model, a float64) error {
	g := t.Geom
	dim := g.Dim()
	crossSeen := make(map[int]struct{})
	for _, def := range m.Defects {
		for _, anchor := range def.Anchors {
			if err := checkSite(g, anchor, 0); err != nil {
				return err
			}
			// Global coordinates of every node, wrapped on the torus.
			nodes := make([][]int, len(def.Nodes))
			local := make([]int, len(def.Nodes))
			inside := true
			for n, nd := range def.Nodes {
				if nd.Orb < 0 || nd.Orb >= g.Padded.Orbitals() || len(nd.Offset) != dim {
					return ErrOrbital
				}
				coord := make([]int, dim)
				for d := 0; d < dim; d++ {
					n0 := g.Global.Size(d)
					coord[d] = ((anchor[d]+nd.Offset[d])%n0 + n0) % n0
				}
				nodes[n] = coord
				idx, mine := g.LocalIndex(coord, nd.Orb)
				local[n] = idx
				if !mine {
					inside = false
				}
			}
			if inside {
				if err := t.addInteriorInstance(def, nodes, local, a, crossSeen); err != nil {
					return err
				}
				continue
			}
			if err := t.addBrokenInstance(def, nodes, a); err != nil {
				return err
			}
		}
	}
	// Defect writes into a vacant cell are re-zeroed after the defect
	// pass; collect those targets once.
	seen := make(map[int]struct{})
	collect := func(at int) {
		if _, vac := t.vacSet[at]; !vac {
			return
		}
		if _, dup := seen[at]; dup {
			return
		}
		seen[at] = struct{}{}
		t.VacWithDefects = append(t.VacWithDefects, at)
	}
	for _, insts := range t.TileDefects {
		for _, inst := range insts {
			for _, h := range inst.Hops {
				collect(h.From)
			}
			for _, s := range inst.OnSite {
				collect(s.At)
			}
		}
	}
	for _, h := range t.BorderHops {
		collect(h.From)
	}
	for _, s := range t.BorderOnSite {
		collect(s.At)
	}
	return nil
}

func (t *Table[T]) addInteriorInstance(def Defect, nodes [][]int, local []int, a float64, crossSeen map[int]struct{}) error {
	g := t.Geom
	anchorTile := g.TileOf(local[0])
	inst := Instance[T]{}
	for _, h := range def.Hops {
		term, err := t.defectTerm(def, h, nodes[h.From], nodes[h.To], local[h.From], local[h.To], a)
		if err != nil {
			return err
		}
		inst.Hops = append(inst.Hops, term)
	}
	for _, s := range def.OnSite {
		e := s.Energy / complex(a, 0)
		if !IsComplex[T]() && imag(e) != 0 {
			return ErrComplexAmplitude
		}
		inst.OnSite = append(inst.OnSite, SiteTerm[T]{At: local[s.Node], Energy: FromComplex[T](e)})
	}
	t.TileDefects[anchorTile] = append(t.TileDefects[anchorTile], inst)
	// Nodes spilling into another tile make that tile cross-mosaic: it is
	// pre-initialized and skipped by the general init pass, so the spill
	// writes survive regardless of tile processing order.
	for _, idx := range local {
		istr := g.TileOf(idx)
		if istr == anchorTile {
			continue
		}
		if _, dup := crossSeen[istr]; dup {
			continue
		}
		crossSeen[istr] = struct{}{}
		t.CrossTiles = append(t.CrossTiles, istr)
		t.NeedsInit[istr] = false
	}
	return nil
}

func (t *Table[T]) addBrokenInstance(def Defect, nodes [][]int, a float64) error {
	g := t.Geom
	for _, h := range def.Hops {
		from, mine := g.LocalIndex(nodes[h.From], def.Nodes[h.From].Orb)
		if !mine {
			continue
		}
		to, ok := t.reachable(nodes[h.To], def.Nodes[h.To].Orb)
		if !ok {
			return ErrDefectRange
		}
		term, err := t.defectTerm(def, h, nodes[h.From], nodes[h.To], from, to, a)
		if err != nil {
			return err
		}
		t.BorderHops = append(t.BorderHops, term)
	}
	for _, s := range def.OnSite {
		at, mine := g.LocalIndex(nodes[s.Node], def.Nodes[s.Node].Orb)
		if !mine {
			continue
		}
		e := s.Energy / complex(a, 0)
		if !IsComplex[T]() && imag(e) != 0 {
			return ErrComplexAmplitude
		}
		t.BorderOnSite = append(t.BorderOnSite, SiteTerm[T]{At: at, Energy: FromComplex[T](e)})
	}
	return nil
}

// defectTerm builds one typed defect hopping with its static Peierls
// phase folded in and its commutator weights derived from the node
// displacement.
func (t *Table[T]) defectTerm(def Defect, h DefectHop, gFrom, gTo []int, from, to int, a float64) (Term[T], error) {
	dim := t.Geom.Dim()
	amp := h.Amp / complex(a, 0)
	if !IsComplex[T]() && imag(amp) != 0 {
		return Term[T]{}, ErrComplexAmplitude
	}
	phased := amp
	if t.Gauge != nil {
		phased *= cmplx.Exp(complex(0, pairPhase(t.Gauge, gFrom, gTo)))
	}
	dr := make([]int, dim)
	for d := 0; d < dim; d++ {
		dr[d] = def.Nodes[h.To].Offset[d] - def.Nodes[h.From].Offset[d]
	}
	term := Term[T]{
		From: from,
		To:   to,
		Amp:  FromComplex[T](phased),
		Vel:  make([]T, dim),
		Vel2: make([][]T, dim),
	}
	for d1 := 0; d1 < dim; d1++ {
		term.Vel[d1] = FromComplex[T](velocity(dr, amp, d1))
		term.Vel2[d1] = make([]T, dim)
		for d2 := 0; d2 < dim; d2++ {
			term.Vel2[d1][d2] = FromComplex[T](velocity2(dr, amp, d1, d2))
		}
	}
	return term, nil
}

// reachable converts a global coordinate into this worker's padded-local
// offset, allowing ghost-region positions; the second return is false
// when the cell lies beyond ghost reach.
func (t *Table[T]) reachable(coord []int, orb int) (int, bool) {
	g := t.Geom
	local := make([]int, len(coord))
	for d, c := range coord {
		n := g.Global.Size(d)
		rel := c - g.WorkerCoord[d]*g.Interior[d]
		for rel < -g.Ghost() {
			rel += n
		}
		for rel >= g.Interior[d]+g.Ghost() {
			rel -= n
		}
		if rel < -g.Ghost() {
			return 0, false
		}
		local[d] = rel + g.Ghost()
	}
	return g.Padded.Index(local, orb), true
}

// pairPhase is the accumulated vector-potential phase between two global
// cells: (g2−g1)·A·g1, the discretized Peierls line integral.
func pairPhase(gauge [][]float64, g1, g2 []int) float64 {
	phase := 0.0
	for a := range gauge {
		for b := range gauge[a] {
			phase += float64(g2[a]-g1[a]) * gauge[a][b] * float64(g1[b])
		}
	}
	return phase
}

func checkSite(g *lattice.Geometry, coord []int, orb int) error {
	if len(coord) != g.Dim() {
		return lattice.ErrDimension
	}
	for d, c := range coord {
		if c < 0 || c >= g.Global.Size(d) {
			return ErrSiteOutside
		}
	}
	if orb < 0 || orb >= g.Padded.Orbitals() {
		return ErrOrbital
	}
	return nil
}
