package moments

import "github.com/katalvlaran/chebtile/operator"

// Accumulator folds moment estimates into a running average. It is not
// concurrency-safe by itself; cross-worker merging happens under the run
// context's lock, per the coordinator protocol.
type Accumulator[T operator.Scalar] struct {
	mu    []T
	count int
}

// NewAccumulator allocates a zeroed accumulator for n moments.
func NewAccumulator[T operator.Scalar](n int) (*Accumulator[T], error) {
	if n < 1 {
		return nil, ErrOrder
	}
	return &Accumulator[T]{mu: make([]T, n)}, nil
}

// Len returns the moment count.
func (a *Accumulator[T]) Len() int { return len(a.mu) }

// Count returns the number of estimates folded in so far.
func (a *Accumulator[T]) Count() int { return a.count }

// Update folds one completed estimate into the running average:
// μ ← μ + (est − μ)/(k+1). The incremental form keeps the stored values
// at the magnitude of a single estimate regardless of how many
// realizations have been averaged.
func (a *Accumulator[T]) Update(est []T) error {
	if len(est) != len(a.mu) {
		return ErrLength
	}
	inv := operator.FromFloat[T](1 / float64(a.count+1))
	for i := range a.mu {
		a.mu[i] += (est[i] - a.mu[i]) * inv
	}
	a.count++
	return nil
}

// Sum adds a partial estimate element-wise, without touching the
// realization count. Workers reduce their domain-local averages into a
// shared accumulator this way: partial dot products over disjoint
// interiors sum to the undecomposed value.
func (a *Accumulator[T]) Sum(partial []T) error {
	if len(partial) != len(a.mu) {
		return ErrLength
	}
	for i := range a.mu {
		a.mu[i] += partial[i]
	}
	return nil
}

// Moments returns a copy of the current averages.
func (a *Accumulator[T]) Moments() []T {
	out := make([]T, len(a.mu))
	copy(out, a.mu)
	return out
}

// Reset zeroes the averages and the realization count.
func (a *Accumulator[T]) Reset() {
	for i := range a.mu {
		a.mu[i] = 0
	}
	a.count = 0
}
