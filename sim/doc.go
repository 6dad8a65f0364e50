// Package sim orchestrates full KPM measurement runs: it builds every
// worker's geometry, operator table and engine, drives the fixed worker
// pool across disorder and random-vector realizations, and reduces
// per-worker partial moments into run-level averages.
//
// What:
//
//   - Config carries the run parameters (lattice sizes, worker grid,
//     expansion order, realization counts, seed) and validates them
//     once; lattice and operator parameters are validated by their own
//     packages at construction.
//   - Runner[T] owns one run: a uuid-tagged identity, a zap logger and
//     the measurement drivers. MeasureDOS computes the averaged
//     density-of-states moment vector; MeasureGamma computes an
//     arbitrary multi-operator moment tensor from a GammaPlan.
//
// Reduction protocol, per realization: every worker folds its partial
// estimate into a shared accumulator under the context lock, then the
// coordinator (worker 0) folds the completed sum into the run average
// and resets the shared buffer inside a barrier-bracketed section. No
// worker observes a half-applied fold.
//
// Cancellation: exchange barriers are not interruptible, so a naive
// per-worker context check would strand the group at the next barrier.
// Instead the coordinator samples the context once per realization and
// publishes the verdict inside the barrier bracket; every worker then
// leaves the loop on the same iteration.
//
// All construction happens sequentially before the pool starts, so a
// configuration error surfaces as a plain error return instead of a
// deadlocked barrier.
package sim
