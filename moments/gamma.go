package moments

import (
	"github.com/katalvlaran/chebtile/kpm"
	"github.com/katalvlaran/chebtile/operator"
)

// GammaPlan describes one multi-operator moment tensor: a chain of
// velocity applications interleaved with Chebyshev expansions.
// Axes[d] is the velocity axis applied before depth d's expansion, or
// −1 for the identity; Moments[d] is the expansion order at depth d.
//
// A single depth with axis −1 is the plain density-of-states moment
// vector μₙ = ⟨ψ|Tₙ(H)|ψ⟩; two depths with velocity axes give the
// conductivity tensor Γₙₘ = ⟨ψ|Vᵃ·Tₙ(H)·Vᵇ·Tₘ(H)|ψ⟩.
type GammaPlan struct {
	Moments []int
	Axes    []int
}

// Size returns the flattened tensor length, the product of the moment
// counts, with depth 0 slowest-varying.
func (p GammaPlan) Size() int {
	size := 1
	for _, n := range p.Moments {
		size *= n
	}
	return size
}

// Gamma fills out with this worker's partial moment tensor for the
// plan, walking the index space depth-first with one two-slot iterate
// ring per depth. The walk is an explicit backtracking loop: advancing
// the index at depth d reuses depth d's ring in place and re-seeds only
// the rings below it, so each tensor entry costs one recursion step at
// its own depth.
//
// psi must hold an exchanged snapshot in its current slot; it is never
// modified. Every worker of the group must call Gamma with the same
// plan, as the embedded steps synchronize at the exchange barriers.
func Gamma[T operator.Scalar](eng *kpm.Engine[T], psi *kpm.Vector[T], plan GammaPlan, out []T) error {
	depths := len(plan.Moments)
	if depths == 0 || len(plan.Axes) != depths {
		return ErrPlan
	}
	for _, n := range plan.Moments {
		if n < 1 {
			return ErrOrder
		}
	}
	if len(out) != plan.Size() {
		return ErrPlan
	}

	geom := eng.Geometry()
	rings := make([]*kpm.Vector[T], depths)
	for d := range rings {
		r, err := kpm.NewVector[T](geom, 2)
		if err != nil {
			return err
		}
		rings[d] = r
	}

	// seed writes the depth's order-0 iterate: the velocity operator (or
	// a plain copy) applied to the level above.
	seed := func(d int) error {
		src := psi
		if d > 0 {
			src = rings[d-1]
		}
		if err := rings[d].SetIndex(0); err != nil {
			return err
		}
		if plan.Axes[d] < 0 {
			rings[d].CopySlot(0, src, src.Index())
			return nil
		}
		return eng.ApplyVelocity(rings[d], src, plan.Axes[d])
	}
	step := func(d, n int) {
		kind := kpm.Subsequent
		if n == 1 {
			kind = kpm.First
		}
		eng.ApplyStep(rings[d], kind)
	}

	idx := make([]int, depths)
	for d := 0; d < depths; d++ {
		if err := seed(d); err != nil {
			return err
		}
	}

	last := depths - 1
	bra := psi.Current()
	for {
		for n := 0; n < plan.Moments[last]; n++ {
			if n > 0 {
				step(last, n)
			}
			idx[last] = n
			out[flatIndex(plan.Moments, idx)] = eng.Dot(bra, rings[last].Current())
		}

		// Backtrack to the deepest level that can still advance.
		d := last - 1
		for d >= 0 && idx[d]+1 == plan.Moments[d] {
			d--
		}
		if d < 0 {
			return nil
		}
		idx[d]++
		step(d, idx[d])
		for e := d + 1; e < depths; e++ {
			if err := seed(e); err != nil {
				return err
			}
			idx[e] = 0
		}
	}
}

func flatIndex(dims, idx []int) int {
	f := 0
	for d, n := range dims {
		f = f*n + idx[d]
	}
	return f
}
