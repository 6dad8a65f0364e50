package operator

// Site names one lattice cell by global axis coordinates and orbital.
type Site struct {
	Coord []int
	Orb   int
}

// Hopping is one term of the periodic stencil: for every lattice site,
// amplitude Amp connects the row cell (site, Orbital) to the column cell
// (site+Offset, To). Hermiticity is the caller's responsibility: list
// both directions explicitly, as the engine never symmetrizes.
type Hopping struct {
	// Orbital is the row orbital the term applies to.
	Orbital int
	// To is the column orbital.
	To int
	// Offset is the row→column displacement per axis, bounded by the
	// ghost width.
	Offset []int
	// Amp is the hopping amplitude before spectral rescaling.
	Amp complex128
}

// DefectNode is one cell of a structural defect, relative to its anchor.
type DefectNode struct {
	Offset []int
	Orb    int
}

// DefectHop couples two nodes of a defect: the row node From receives
// Amp times the previous iterate at node To.
type DefectHop struct {
	From, To int
	Amp      complex128
}

// DefectOnSite adds an on-site energy at one node of a defect.
type DefectOnSite struct {
	Node   int
	Energy complex128
}

// Defect is a structural-disorder template plus the global anchor
// coordinates of its instances. Node 0 sits at the anchor.
type Defect struct {
	Nodes   []DefectNode
	Hops    []DefectHop
	OnSite  []DefectOnSite
	Anchors [][]int
}

// Model is the global, worker-independent Hamiltonian description.
// The zero values of ScaleA/ScaleB mean "no rescaling" (a=1, b=0).
type Model struct {
	// Dim is the number of spatial axes.
	Dim int
	// Stencil lists the periodic hopping terms.
	Stencil []Hopping
	// OnSite lists a constant on-site energy per orbital (nil for none).
	OnSite []complex128
	// AndersonWidth lists the uniform disorder width per orbital
	// (nil or zero entries for clean orbitals). Values are drawn in
	// [-w/2, w/2) per global site at realization time.
	AndersonWidth []float64
	// Vacancies lists structurally removed cells.
	Vacancies []Site
	// Defects lists structural-disorder templates and their instances.
	Defects []Defect
	// Gauge is the Dim×Dim vector-potential matrix for Peierls phases;
	// nil disables the magnetic field. Only Dim==2 is supported, as in
	// the source computation.
	Gauge [][]float64
	// ScaleA, ScaleB rescale the spectrum: H → (H − ScaleB)/ScaleA.
	ScaleA float64
	ScaleB float64
}

// scale returns the effective (a, b) pair.
func (m *Model) scale() (float64, float64) {
	a := m.ScaleA
	if a == 0 {
		a = 1
	}
	return a, m.ScaleB
}

// Range returns the longest per-axis hopping reach of the model, the
// lower bound on a valid ghost width.
func (m *Model) Range() int {
	r := 0
	for _, h := range m.Stencil {
		for _, o := range h.Offset {
			if o > r {
				r = o
			}
			if -o > r {
				r = -o
			}
		}
	}
	return r
}

// velocity returns the single-commutator weight of a hopping along one
// axis: −Δr_a·t for row→column displacement Δr. The sign convention is
// preserved exactly as observed in the source computation.
func velocity(offset []int, amp complex128, axis int) complex128 {
	return complex(float64(-offset[axis]), 0) * amp
}

// velocity2 returns the double-commutator weight Δr_a·Δr_b·t.
func velocity2(offset []int, amp complex128, a1, a2 int) complex128 {
	return complex(float64(offset[a1]*offset[a2]), 0) * amp
}
