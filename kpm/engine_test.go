package kpm_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/chebtile/kpm"
	"github.com/katalvlaran/chebtile/lattice"
	"github.com/katalvlaran/chebtile/operator"
)

func chainOptions(grid int) lattice.Options {
	return lattice.Options{
		GlobalSizes: []int{8},
		WorkerGrid:  []int{grid},
		Orbitals:    1,
		Ghost:       1,
		Tile:        2,
	}
}

func chainModel() *operator.Model {
	return &operator.Model{
		Dim: 1,
		Stencil: []operator.Hopping{
			{Orbital: 0, To: 0, Offset: []int{1}, Amp: 1},
			{Orbital: 0, To: 0, Offset: []int{-1}, Amp: 1},
		},
	}
}

func toC[T operator.Scalar](v T) complex128 {
	if x, ok := any(v).(float64); ok {
		return complex(x, 0)
	}
	return any(v).(complex128)
}

// runGroup builds the shared context and one engine per worker, then
// runs body concurrently, one goroutine per worker, as a real run does.
func runGroup[T operator.Scalar](t *testing.T, opt lattice.Options, m *operator.Model, body func(w int, eng *kpm.Engine[T])) {
	t.Helper()
	runCtx, err := kpm.NewContext[T](opt)
	require.NoError(t, err)
	engines := make([]*kpm.Engine[T], opt.Workers())
	for w := range engines {
		g, gerr := lattice.NewGeometry(opt, w)
		require.NoError(t, gerr)
		tbl, terr := operator.NewTable[T](m, g)
		require.NoError(t, terr)
		engines[w], err = kpm.NewEngine(tbl, runCtx)
		require.NoError(t, err)
	}
	var wg sync.WaitGroup
	for w := range engines {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			body(w, engines[w])
		}(w)
	}
	wg.Wait()
}

// gather copies one worker's interior cells into the global assembly.
// Interiors are disjoint across workers, so concurrent writes are to
// distinct elements.
func gather[T operator.Scalar](eng *kpm.Engine[T], col []T, dst []complex128) {
	g := eng.Geometry()
	for idx := 0; idx < g.Padded.Cells(); idx++ {
		coord, _ := g.Padded.Coord(idx)
		if !g.InteriorContains(coord) {
			continue
		}
		dst[g.GlobalIndex(idx)] = toC(col[idx])
	}
}

func matvec(h *mat.CDense, x []complex128) []complex128 {
	n, _ := h.Dims()
	y := make([]complex128, n)
	for i := 0; i < n; i++ {
		var s complex128
		for j := 0; j < n; j++ {
			s += h.At(i, j) * x[j]
		}
		y[i] = s
	}
	return y
}

func assertClose(t *testing.T, want, got []complex128, label string) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, real(want[i]), real(got[i]), 1e-12, "%s: re[%d]", label, i)
		assert.InDelta(t, imag(want[i]), imag(got[i]), 1e-12, "%s: im[%d]", label, i)
	}
}

// checkAgainstDense runs two recursion steps of the decomposed engine
// and compares each iterate with the explicit matrix recursion
// φ₁ = H·φ₀, φ₂ = 2H·φ₁ − φ₀ on the undecomposed lattice.
func checkAgainstDense[T operator.Scalar](t *testing.T, opt lattice.Options, m *operator.Model, seed uint64, disorder bool) {
	t.Helper()
	ext, err := lattice.NewExtent(opt.GlobalSizes, opt.Orbitals)
	require.NoError(t, err)
	var draw func(int) float64
	if disorder {
		draw = kpm.NewSiteSource(seed ^ 0x51ab33c0ffee).Uniform
	}
	h, err := operator.Dense(m, ext, draw)
	require.NoError(t, err)

	n := ext.Cells()
	x0 := make([]complex128, n)
	x1 := make([]complex128, n)
	x2 := make([]complex128, n)

	runGroup[T](t, opt, m, func(w int, eng *kpm.Engine[T]) {
		if disorder {
			eng.Table().Realize(draw)
		}
		phi, verr := kpm.NewVector[T](eng.Geometry(), 2)
		if verr != nil {
			return
		}
		eng.Initiate(phi, kpm.NewSiteSource(seed))
		eng.Exchange(phi)
		gather(eng, phi.Current(), x0)
		eng.ApplyStep(phi, kpm.First)
		gather(eng, phi.Current(), x1)
		eng.ApplyStep(phi, kpm.Subsequent)
		gather(eng, phi.Current(), x2)
	})

	assertClose(t, matvec(h, x0), x1, "first application")
	hx1 := matvec(h, x1)
	want2 := make([]complex128, n)
	for i := range want2 {
		want2[i] = 2*hx1[i] - x0[i]
	}
	assertClose(t, want2, x2, "subsequent application")
}

func TestEngine_MatchesDense_Chain(t *testing.T) {
	t.Run("single worker", func(t *testing.T) {
		checkAgainstDense[float64](t, chainOptions(1), chainModel(), 11, false)
	})
	t.Run("two workers", func(t *testing.T) {
		checkAgainstDense[float64](t, chainOptions(2), chainModel(), 11, false)
	})
	t.Run("four workers", func(t *testing.T) {
		checkAgainstDense[float64](t, chainOptions(4), chainModel(), 11, false)
	})
}

func TestEngine_MatchesDense_Disordered2D(t *testing.T) {
	opt := lattice.Options{
		GlobalSizes: []int{8, 8},
		WorkerGrid:  []int{2, 2},
		Orbitals:    1,
		Ghost:       1,
		Tile:        2,
	}
	m := &operator.Model{
		Dim: 2,
		Stencil: []operator.Hopping{
			{Orbital: 0, To: 0, Offset: []int{1, 0}, Amp: 1},
			{Orbital: 0, To: 0, Offset: []int{-1, 0}, Amp: 1},
			{Orbital: 0, To: 0, Offset: []int{0, 1}, Amp: 1},
			{Orbital: 0, To: 0, Offset: []int{0, -1}, Amp: 1},
		},
		OnSite:        []complex128{0.3},
		AndersonWidth: []float64{0.6},
		ScaleA:        4.5,
	}
	checkAgainstDense[float64](t, opt, m, 23, true)
}

func TestEngine_MatchesDense_Gauge(t *testing.T) {
	opt := lattice.Options{
		GlobalSizes: []int{8, 8},
		WorkerGrid:  []int{2, 2},
		Orbitals:    1,
		Ghost:       1,
		Tile:        2,
	}
	m := &operator.Model{
		Dim: 2,
		Stencil: []operator.Hopping{
			{Orbital: 0, To: 0, Offset: []int{1, 0}, Amp: 1},
			{Orbital: 0, To: 0, Offset: []int{-1, 0}, Amp: 1},
			{Orbital: 0, To: 0, Offset: []int{0, 1}, Amp: 1},
			{Orbital: 0, To: 0, Offset: []int{0, -1}, Amp: 1},
		},
		Gauge:  [][]float64{{0, 2 * math.Pi / 8}, {0, 0}},
		ScaleA: 4.5,
	}
	checkAgainstDense[complex128](t, opt, m, 37, false)
}

func TestEngine_MatchesDense_DefectsAndVacancies(t *testing.T) {
	m := chainModel()
	m.Vacancies = []operator.Site{{Coord: []int{6}, Orb: 0}}
	m.Defects = []operator.Defect{
		{
			// Fully inside worker 0, spanning its two tiles: exercises the
			// cross-mosaic pre-init path.
			Nodes:   []operator.DefectNode{{Offset: []int{0}}, {Offset: []int{1}}},
			Hops:    []operator.DefectHop{{From: 0, To: 1, Amp: 0.4}, {From: 1, To: 0, Amp: 0.4}},
			OnSite:  []operator.DefectOnSite{{Node: 0, Energy: 0.2}},
			Anchors: [][]int{{1}},
		},
		{
			// Straddles the domain boundary at site 4: exercises the broken
			// border-term path on both workers.
			Nodes:   []operator.DefectNode{{Offset: []int{0}}, {Offset: []int{1}}},
			Hops:    []operator.DefectHop{{From: 0, To: 1, Amp: 0.25}, {From: 1, To: 0, Amp: 0.25}},
			Anchors: [][]int{{3}},
		},
	}
	checkAgainstDense[float64](t, chainOptions(2), m, 5, false)
}

// The same seed over the same lattice must give the same moments for
// any worker grid: random draws are keyed by global site, disorder by
// global cell, and partial dot products add over disjoint interiors.
func TestEngine_DecompositionInvariance(t *testing.T) {
	m := chainModel()
	m.OnSite = []complex128{0.2}
	m.AndersonWidth = []float64{0.5}
	m.ScaleA = 3

	const nm = 6
	dsrc := kpm.NewSiteSource(0xd15)
	run := func(grid int) []float64 {
		est := make([]float64, nm)
		var mu sync.Mutex
		runGroup[float64](t, chainOptions(grid), m, func(w int, eng *kpm.Engine[float64]) {
			eng.Table().Realize(dsrc.Uniform)
			phi0, _ := kpm.NewVector[float64](eng.Geometry(), 1)
			phi, _ := kpm.NewVector[float64](eng.Geometry(), 2)
			eng.Initiate(phi, kpm.NewSiteSource(0x5eed))
			eng.Exchange(phi)
			phi0.CopySlot(0, phi, 0)
			local := make([]float64, nm)
			local[0] = eng.Dot(phi0.Col(0), phi.Current())
			for n := 1; n < nm; n++ {
				kind := kpm.Subsequent
				if n == 1 {
					kind = kpm.First
				}
				eng.ApplyStep(phi, kind)
				local[n] = eng.Dot(phi0.Col(0), phi.Current())
			}
			mu.Lock()
			for i := range est {
				est[i] += local[i]
			}
			mu.Unlock()
		})
		return est
	}

	one := run(1)
	two := run(2)
	four := run(4)
	assert.InDelta(t, 1, one[0], 1e-12, "normalized vector has unit norm")
	for n := 0; n < nm; n++ {
		assert.InDelta(t, one[n], two[n], 1e-12, "moment %d, 2 domains", n)
		assert.InDelta(t, one[n], four[n], 1e-12, "moment %d, 4 domains", n)
	}
}

// After an exchange every ghost cell holds a bit-identical copy of the
// owning worker's interior value.
func TestEngine_GhostBitIdentity(t *testing.T) {
	opt := lattice.Options{
		GlobalSizes: []int{8, 8},
		WorkerGrid:  []int{2, 2},
		Orbitals:    1,
		Ghost:       1,
		Tile:        2,
	}
	m := &operator.Model{
		Dim: 2,
		Stencil: []operator.Hopping{
			{Orbital: 0, To: 0, Offset: []int{1, 0}, Amp: 1},
			{Orbital: 0, To: 0, Offset: []int{-1, 0}, Amp: 1},
		},
	}
	src := kpm.NewSiteSource(0xcafe)
	norm := 1 / math.Sqrt(64)

	runGroup[float64](t, opt, m, func(w int, eng *kpm.Engine[float64]) {
		phi, _ := kpm.NewVector[float64](eng.Geometry(), 2)
		eng.Initiate(phi, src)
		eng.Exchange(phi)
		col := phi.Current()
		g := eng.Geometry()
		for _, idx := range g.GhostCells() {
			want := kpm.Draw[float64](src, g.GlobalIndex(idx)) * norm
			assert.Equal(t, want, col[idx], "worker %d ghost %d", w, idx)
		}
	})
}

// With the spectrum rescaled inside (-1, 1), |Tₙ(H)·φ| never exceeds
// the initial norm; a long run must not drift.
func TestEngine_NormBounded(t *testing.T) {
	m := chainModel()
	m.ScaleA = 3

	runGroup[float64](t, chainOptions(1), m, func(w int, eng *kpm.Engine[float64]) {
		phi, _ := kpm.NewVector[float64](eng.Geometry(), 2)
		eng.Initiate(phi, kpm.NewSiteSource(99))
		eng.Exchange(phi)
		eng.ApplyStep(phi, kpm.First)
		for n := 2; n <= 1000; n++ {
			eng.ApplyStep(phi, kpm.Subsequent)
			norm2 := eng.Dot(phi.Current(), phi.Current())
			assert.LessOrEqual(t, norm2, 1+1e-9, "step %d", n)
		}
	})
}

// Vacant cells must hold an exact zero after every recursion step, not
// just a small value: the masking is a projection, applied every sweep.
func TestEngine_VacancyStaysZero(t *testing.T) {
	m := chainModel()
	m.ScaleA = 3
	m.Vacancies = []operator.Site{{Coord: []int{2}, Orb: 0}, {Coord: []int{5}, Orb: 0}}

	runGroup[float64](t, chainOptions(2), m, func(w int, eng *kpm.Engine[float64]) {
		g := eng.Geometry()
		phi, _ := kpm.NewVector[float64](g, 2)
		eng.Initiate(phi, kpm.NewSiteSource(3))
		eng.Exchange(phi)
		for n := 1; n <= 20; n++ {
			kind := kpm.Subsequent
			if n == 1 {
				kind = kpm.First
			}
			eng.ApplyStep(phi, kind)
			col := phi.Current()
			for _, v := range m.Vacancies {
				if idx, mine := g.LocalIndex(v.Coord, v.Orb); mine {
					assert.Zero(t, col[idx], "worker %d step %d site %v", w, n, v.Coord)
				}
			}
		}
	})
}

func TestEngine_Velocity(t *testing.T) {
	opt := chainOptions(2)
	m := chainModel()
	m.ScaleA = 2

	ext, err := lattice.NewExtent(opt.GlobalSizes, opt.Orbitals)
	require.NoError(t, err)
	n := ext.Cells()

	// Dense single- and double-commutator references: -Δr·t and Δr²·t.
	vel := make([]complex128, n*n)
	vel2 := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		for _, o := range []int{1, -1} {
			j := ((i+o)%n + n) % n
			vel[i*n+j] += complex(float64(-o)*0.5, 0)
			vel2[i*n+j] += complex(float64(o*o)*0.5, 0)
		}
	}

	x0 := make([]complex128, n)
	y1 := make([]complex128, n)
	y2 := make([]complex128, n)
	runGroup[float64](t, opt, m, func(w int, eng *kpm.Engine[float64]) {
		phi, _ := kpm.NewVector[float64](eng.Geometry(), 1)
		dst, _ := kpm.NewVector[float64](eng.Geometry(), 1)
		eng.Initiate(phi, kpm.NewSiteSource(7))
		eng.Exchange(phi)
		gather(eng, phi.Current(), x0)
		if err := eng.ApplyVelocity(dst, phi, 0); err != nil {
			return
		}
		gather(eng, dst.Current(), y1)
		if err := eng.ApplyVelocity2(dst, phi, 0, 0); err != nil {
			return
		}
		gather(eng, dst.Current(), y2)
	})

	for i := 0; i < n; i++ {
		var w1, w2 complex128
		for j := 0; j < n; j++ {
			w1 += vel[i*n+j] * x0[j]
			w2 += vel2[i*n+j] * x0[j]
		}
		assert.InDelta(t, real(w1), real(y1[i]), 1e-12, "velocity row %d", i)
		assert.InDelta(t, real(w2), real(y2[i]), 1e-12, "velocity2 row %d", i)
	}

	runGroup[float64](t, opt, m, func(w int, eng *kpm.Engine[float64]) {
		phi, _ := kpm.NewVector[float64](eng.Geometry(), 1)
		dst, _ := kpm.NewVector[float64](eng.Geometry(), 1)
		eng.Initiate(phi, kpm.NewSiteSource(7))
		eng.Exchange(phi)
		if w == 0 {
			assert.ErrorIs(t, eng.ApplyVelocity(dst, phi, 1), lattice.ErrDimension)
			assert.ErrorIs(t, eng.ApplyVelocity2(dst, phi, 0, -1), lattice.ErrDimension)
		}
	})
}

// A velocity application seeds a ring that the recursion then extends:
// the usual shape of a conductivity measurement.
func TestEngine_VelocityThenRecursion(t *testing.T) {
	opt := chainOptions(2)
	m := chainModel()
	m.ScaleA = 3

	ext, err := lattice.NewExtent(opt.GlobalSizes, opt.Orbitals)
	require.NoError(t, err)
	h, err := operator.Dense(m, ext, nil)
	require.NoError(t, err)
	n := ext.Cells()

	x0 := make([]complex128, n)
	z0 := make([]complex128, n)
	z1 := make([]complex128, n)
	z2 := make([]complex128, n)
	runGroup[float64](t, opt, m, func(w int, eng *kpm.Engine[float64]) {
		phi, _ := kpm.NewVector[float64](eng.Geometry(), 1)
		dst, _ := kpm.NewVector[float64](eng.Geometry(), 2)
		eng.Initiate(phi, kpm.NewSiteSource(13))
		eng.Exchange(phi)
		gather(eng, phi.Current(), x0)
		assert.NoError(t, eng.ApplyVelocity(dst, phi, 0))
		gather(eng, dst.Current(), z0)
		eng.ApplyStep(dst, kpm.First)
		gather(eng, dst.Current(), z1)
		eng.ApplyStep(dst, kpm.Subsequent)
		gather(eng, dst.Current(), z2)
	})

	// Dense reference: z0 = V·x0, z1 = H·z0, z2 = 2H·z1 − z0, with the
	// velocity weight −Δr·t per hopping.
	wantZ0 := make([]complex128, n)
	for i := 0; i < n; i++ {
		for _, o := range []int{1, -1} {
			j := ((i+o)%n + n) % n
			wantZ0[i] += complex(float64(-o)/3, 0) * x0[j]
		}
	}
	assertClose(t, wantZ0, z0, "velocity seed")
	assertClose(t, matvec(h, z0), z1, "first step after velocity")
	hz1 := matvec(h, z1)
	want2 := make([]complex128, n)
	for i := range want2 {
		want2[i] = 2*hz1[i] - z0[i]
	}
	assertClose(t, want2, z2, "second step after velocity")
}

func TestNewEngine_RejectsForeignContext(t *testing.T) {
	runCtx, err := kpm.NewContext[float64](chainOptions(2))
	require.NoError(t, err)
	g, err := lattice.NewGeometry(chainOptions(1), 0)
	require.NoError(t, err)
	tbl, err := operator.NewTable[float64](chainModel(), g)
	require.NoError(t, err)
	_, err = kpm.NewEngine(tbl, runCtx)
	assert.ErrorIs(t, err, kpm.ErrWorkerCount)
}
