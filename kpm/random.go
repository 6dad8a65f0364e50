package kpm

import (
	"math"
	"math/cmplx"

	"github.com/katalvlaran/chebtile/operator"
)

// SiteSource is a counter-based random source addressed by global cell
// index. Unlike a sequential stream, the value at a site depends only on
// (seed, site), so every worker of every decomposition of the same
// lattice draws an identical random field — the property the
// decomposition-invariance guarantee rests on.
type SiteSource struct {
	seed uint64
}

// NewSiteSource builds a source for one (realization, random-vector)
// pair; reseeding it is the re-seeding point of a new realization.
func NewSiteSource(seed uint64) *SiteSource {
	return &SiteSource{seed: seed}
}

// Uniform returns a deterministic value in [0, 1) for the global cell.
func (s *SiteSource) Uniform(site int) float64 {
	x := splitmix64(s.seed ^ (uint64(site)+0x9e3779b97f4a7c15)*0xbf58476d1ce4e5b9)
	return float64(x>>11) / float64(1<<53)
}

// Draw returns a unit-modulus random state amplitude for the global
// cell: a Rademacher ±1 for the real state type, a uniform phase
// e^{2πiθ} for the complex one. Unit modulus keeps the expected squared
// norm of the normalized initial vector exactly 1.
func Draw[T operator.Scalar](s *SiteSource, site int) T {
	u := s.Uniform(site)
	if !operator.IsComplex[T]() {
		if u < 0.5 {
			return operator.FromComplex[T](complex(-1, 0))
		}
		return operator.FromComplex[T](complex(1, 0))
	}
	return operator.FromComplex[T](cmplx.Exp(complex(0, 2*math.Pi*u)))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
