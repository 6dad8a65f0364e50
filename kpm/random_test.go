package kpm_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/chebtile/kpm"
)

func TestSiteSource_Deterministic(t *testing.T) {
	a := kpm.NewSiteSource(42)
	b := kpm.NewSiteSource(42)
	c := kpm.NewSiteSource(43)

	for site := 0; site < 64; site++ {
		u := a.Uniform(site)
		assert.Equal(t, u, b.Uniform(site), "site %d", site)
		assert.GreaterOrEqual(t, u, 0.0)
		assert.Less(t, u, 1.0)
	}
	// Different seeds decorrelate; identical streams would be a bug.
	same := 0
	for site := 0; site < 64; site++ {
		if a.Uniform(site) == c.Uniform(site) {
			same++
		}
	}
	assert.Zero(t, same)
}

func TestDraw_UnitModulus(t *testing.T) {
	src := kpm.NewSiteSource(7)
	for site := 0; site < 32; site++ {
		r := kpm.Draw[float64](src, site)
		assert.True(t, r == 1 || r == -1, "site %d: %v", site, r)

		z := kpm.Draw[complex128](src, site)
		mod := math.Hypot(real(z), imag(z))
		assert.InDelta(t, 1, mod, 1e-12, "site %d", site)
	}
}

func TestSiteSource_RoughlyUniform(t *testing.T) {
	src := kpm.NewSiteSource(1234)
	sum := 0.0
	const n = 4096
	for site := 0; site < n; site++ {
		sum += src.Uniform(site)
	}
	assert.InDelta(t, 0.5, sum/n, 0.02)
}
