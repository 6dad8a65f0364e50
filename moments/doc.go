// Package moments turns raw Chebyshev recursion output into physical
// estimates: running-average moment accumulation across random vectors
// and disorder realizations, damping kernels, density-of-states
// reconstruction, and the generalized multi-operator moment traversal.
//
// What:
//
//   - Accumulator[T] folds per-realization moment estimates into a
//     numerically stable running average, μ ← μ + (est − μ)/(k+1), and
//     sums per-worker partial estimates element-wise. Partial dot
//     products over disjoint domains add up to the undecomposed value,
//     so summing worker averages equals averaging full estimates.
//   - Jackson and Lorentz are the standard KPM damping kernels applied
//     to a truncated moment series before reconstruction.
//   - DOS evaluates the damped Chebyshev series on a rescaled energy
//     grid, ρ(x) = (g₀μ₀ + 2·Σ gₙμₙ·Tₙ(x)) / (π·√(1−x²)).
//   - Gamma walks the moment tensor Γ of a chain of velocity operators
//     interleaved with Chebyshev expansions, depth-first with one
//     iterate ring per depth. The walk is an explicit backtracking loop
//     over moment indices rather than a recursion, so the ring reuse
//     at each depth is visible in one place.
//
// Every worker of a run executes Gamma with the same plan; the embedded
// recursion steps and velocity applications synchronize at the usual
// exchange barriers, so the control flow must be identical group-wide.
//
// Errors:
//
//   - ErrOrder: non-positive moment count.
//   - ErrLength: estimate length does not match the accumulator.
//   - ErrEnergyRange: reconstruction energy outside (−1, 1).
//   - ErrPlan: empty gamma plan, or mismatched axes/output length.
package moments
