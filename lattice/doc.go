// Package lattice defines the spatial model of a domain-decomposed
// tight-binding lattice: multi-dimensional extents with flat linear
// indexing, and the per-worker domain geometry (ghost padding, tiling,
// neighbor topology, boundary index tables) consumed by the Chebyshev
// iteration engine.
//
// What:
//
//   - Extent maps (axis coordinates, orbital) ↔ flat memory offset via
//     precomputed per-axis strides. The mapping is a bijection over the
//     padded box and performs no bounds checking (hot-path contract).
//   - Geometry is derived once per worker from the global lattice sizes,
//     the logical worker grid, the ghost width and the tile stride. It
//     precomputes everything the recursion and exchange loops need:
//     neighbor worker ids on the torus, publish/ghost index tables per
//     axis and side, tile origins and in-tile row offsets, and the
//     local↔global coordinate conversion.
//
// Why:
//
//   - Stencil application near a domain edge must never reach into a
//     neighboring worker's memory mid-computation; instead each domain is
//     padded with a ghost layer refreshed by a barrier-staged exchange.
//     All geometric invariants that make this safe are validated here,
//     exactly once, at construction.
//
// Invariants:
//
//   - Every per-axis interior size is a multiple of the tile stride.
//   - Ghost width ≥ the longest hopping used by the operator (validated
//     by the operator package against ErrGhostWidth semantics).
//   - Axes are exchanged in ascending order; the boundary layer of axis d
//     spans the full padded range of axes < d and the interior range of
//     axes > d, so corner cells propagate across successive exchanges.
//
// Errors:
//
//   - ErrDimension: global sizes and worker grid have different lengths,
//     or zero dimensions.
//   - ErrWorkerGrid: worker grid does not divide the global sizes, or the
//     worker id is outside the grid.
//   - ErrNotTileMultiple: a local interior size is not a multiple of the
//     tile stride.
//   - ErrGhostWidth: ghost width < 1 or exceeds a local interior size.
//   - ErrOrbitals: orbital count < 1.
//
// All errors are construction-time only; the index tables themselves are
// immutable after construction and safe for concurrent reads.
package lattice
