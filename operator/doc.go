// Package operator describes the tight-binding Hamiltonian consumed by
// the Chebyshev iteration engine: the periodic hopping stencil, on-site
// and Anderson disorder, vacancies, structural defects and an optional
// gauge field, together with their per-worker realization.
//
// What:
//
//   - Model is the global, worker-independent description. It is built
//     once, validated, and spectrally rescaled (H → (H−b)/a) so that the
//     Chebyshev recursion stays bounded on [-1, 1].
//   - Table[T] is the model projected onto one worker's Geometry: linear
//     hopping offsets, per-site disorder values, per-tile vacancy and
//     defect lists, border ("broken") defect terms whose endpoints
//     straddle a domain boundary, and the cross-mosaic tile set. The
//     engine treats a Table purely as a queryable set of flat slices.
//   - Dense materializes the model as a gonum mat.CDense over the global
//     unpadded lattice, the reference every decomposed computation is
//     tested against.
//
// Why:
//
//   - The engine's hot loops must not branch on model structure; every
//     per-axis offset is pre-linearized, every amplitude pre-typed and
//     pre-rescaled, and every static Peierls phase folded into the
//     amplitude at table-build time. Only the row-dependent stencil phase
//     survives to run time.
//
// Velocity weights (sign contract, preserved from the observed source):
// for a hopping with row→column displacement Δr and amplitude t, the
// single-commutator weight along axis a is −Δr_a·t and the double
// commutator weight is Δr_a·Δr_b·t. No imaginary unit factor is applied;
// the commutator parity is tracked by the moment-accumulation caller.
//
// Errors (all at construction, never in the hot path):
//
//   - ErrStencilRange: a hopping reaches farther than the ghost width.
//   - ErrOrbital: an orbital index outside [0, Orbitals).
//   - ErrGauge: a gauge field on a lattice that is not two-dimensional,
//     or combined with a real-valued state type.
//   - ErrSiteOutside: a vacancy or defect anchor outside the lattice.
//   - ErrDefectRange: a broken defect endpoint beyond ghost reach.
//   - ErrScale: a non-positive spectral scale factor.
package operator
