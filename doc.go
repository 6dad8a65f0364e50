// Package chebtile is a domain-decomposed Kernel Polynomial Method
// engine for tight-binding quantum lattices.
//
// A lattice of arbitrary dimension is split across a fixed grid of
// workers, one goroutine per spatial domain. Each worker owns a
// ghost-padded block of the global state vector and applies the
// Hamiltonian with cache-blocked tile traversal; between recursion
// steps the workers refresh their ghost layers through a barrier-staged
// shared buffer, axis by axis, so corner cells propagate without a
// diagonal exchange.
//
// Packages:
//
//   - lattice:  extents, flat indexing, per-worker domain geometry
//   - operator: Hamiltonian models realized into per-worker hop tables
//     (stencil, disorder, vacancies, structural defects, Peierls phases)
//   - kpm:      the Chebyshev iteration core: iterate rings, the tiled
//     apply engine, velocity operators, the boundary exchange
//   - moments:  accumulation, damping kernels, spectral reconstruction,
//     multi-operator moment tensors
//   - sim:      run orchestration across disorder and random-vector
//     realizations
//   - cmd/chebtile: the CLI
//
// The whole run is deterministic: random vectors and disorder fields
// are keyed by global site index, so the same seed gives the same
// physics for any worker grid over the same lattice.
//
// See examples/dos2d for a complete runnable measurement.
package chebtile
