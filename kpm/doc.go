// Package kpm implements the domain-decomposed Chebyshev iteration core
// of the Kernel Polynomial Method: the iterate ring buffer, the tiled
// apply engine, the velocity (commutator) operators and the
// barrier-staged boundary exchange that keeps every worker's ghost cells
// coherent between recursion steps.
//
// What:
//
//   - Vector[T] is a fixed-capacity ring of state-vector columns over
//     one worker's padded domain, with a cursor advanced modulo the
//     capacity on every recursion step. With capacity M ≥ 3 the columns
//     at index, index−1 and index−2 hold the newest, previous and
//     second-previous Chebyshev iterate; with M = 2 the slot being
//     overwritten is exactly the φ_{n−2} column, so the three-term
//     recursion still reads the right history in place.
//   - Engine[T] executes one recursion step over the local domain using
//     cache-blocked tile traversal: φ_next = −c·φ_{n−2} + (c+1)·H·φ_{n−1}
//     with c = 0 for the first application and c = 1 afterwards. Tiles
//     receiving structural-defect writes from a foreign anchor tile
//     ("cross-mosaic" tiles) are pre-initialized and excluded from the
//     general init pass, so their corrections survive traversal order.
//   - Exchange publishes each worker's boundary layers into a run-scoped
//     staging buffer and reads the neighbors' layers back into the local
//     ghost cells, one axis at a time, each phase separated by a
//     full-group barrier. After an exchange every ghost cell is a
//     bit-identical copy of the neighbor's interior.
//   - Context[T] owns the state shared by the fixed worker group for the
//     duration of a run: the staging buffer, the phase barrier and the
//     accumulator lock, with barrier-bracketed coordinator actions for
//     once-only resets.
//
// Concurrency model: a fixed pool of workers, one per spatial domain,
// created once per run and reused across every disorder and
// random-vector realization. The only suspension points are the exchange
// barriers and the accumulator critical section; a worker that stalls
// blocks the whole group at the next barrier (fail-stop, no partial
// results). Staging is written disjointly (own slot) and read disjointly
// (neighbor slots), so the barriers alone order the protocol.
//
// All validation happens at construction; ApplyStep, the velocity
// operators and Exchange never check geometry per call.
package kpm
