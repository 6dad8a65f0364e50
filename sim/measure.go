package sim

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/chebtile/kpm"
	"github.com/katalvlaran/chebtile/moments"
)

// stopFlag is the coordinator's per-realization cancellation verdict.
// Worker 0 writes it inside the barrier bracket of the fold; every
// worker reads it after the closing barrier, so the whole group leaves
// the loop on the same iteration and no barrier is left short.
type stopFlag struct {
	stop bool
}

// MeasureDOS runs the full density-of-states measurement: NumMoments
// Chebyshev moments averaged over NumRandom random vectors for each of
// NumDisorder disorder realizations, computed by one worker per domain.
// The returned vector is μₙ = ⟨ψ|Tₙ(H)|ψ⟩ averaged over realizations.
func (r *Runner[T]) MeasureDOS(ctx context.Context) ([]T, error) {
	runCtx, err := kpm.NewContext[T](r.cfg.Options())
	if err != nil {
		return nil, err
	}
	domains, err := r.buildDomains(runCtx)
	if err != nil {
		return nil, err
	}
	shared, err := moments.NewAccumulator[T](r.cfg.NumMoments)
	if err != nil {
		return nil, err
	}
	avg, _ := moments.NewAccumulator[T](r.cfg.NumMoments)

	r.log.Info("dos measurement started",
		zap.String("run_id", r.runID),
		zap.Ints("sizes", r.cfg.Sizes),
		zap.Ints("worker_grid", r.cfg.WorkerGrid),
		zap.Int("num_moments", r.cfg.NumMoments),
		zap.Int("num_random", r.cfg.NumRandom),
		zap.Int("num_disorder", r.cfg.NumDisorder))
	start := time.Now()

	flag := &stopFlag{}
	g, gctx := errgroup.WithContext(ctx)
	for w := range domains {
		dom := domains[w]
		worker := w
		g.Go(func() error {
			return r.dosWorker(gctx, runCtx, dom, worker, shared, avg, flag)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.log.Info("dos measurement finished",
		zap.String("run_id", r.runID),
		zap.Int("realizations", avg.Count()),
		zap.Duration("elapsed", time.Since(start)))
	return avg.Moments(), nil
}

func (r *Runner[T]) dosWorker(ctx context.Context, runCtx *kpm.Context[T], dom domain[T], w int,
	shared, avg *moments.Accumulator[T], flag *stopFlag) error {

	phi0, err := kpm.NewVector[T](dom.geom, 1)
	if err != nil {
		return err
	}
	phi, err := kpm.NewVector[T](dom.geom, 2)
	if err != nil {
		return err
	}
	est := make([]T, r.cfg.NumMoments)

	for d := 0; d < r.cfg.NumDisorder; d++ {
		dom.tbl.Realize(kpm.NewSiteSource(r.disorderSeed(d)).Uniform)
		for v := 0; v < r.cfg.NumRandom; v++ {
			src := kpm.NewSiteSource(r.vectorSeed(d, v))
			_ = phi.SetIndex(0)
			dom.eng.Initiate(phi, src)
			dom.eng.Exchange(phi)
			phi0.CopySlot(0, phi, 0)
			bra := phi0.Col(0)

			est[0] = dom.eng.Dot(bra, phi.Current())
			for n := 1; n < r.cfg.NumMoments; n++ {
				kind := kpm.Subsequent
				if n == 1 {
					kind = kpm.First
				}
				dom.eng.ApplyStep(phi, kind)
				est[n] = dom.eng.Dot(bra, phi.Current())
			}

			runCtx.Locked(func() {
				_ = shared.Sum(est)
			})
			runCtx.Coordinated(w, func() {
				_ = avg.Update(shared.Moments())
				shared.Reset()
				flag.stop = ctx.Err() != nil
			})
			if flag.stop {
				return ctx.Err()
			}
			if w == 0 {
				r.log.Debug("realization folded",
					zap.String("run_id", r.runID),
					zap.Int("disorder", d),
					zap.Int("vector", v))
			}
		}
	}
	return nil
}

// MeasureGamma runs an arbitrary multi-operator moment measurement over
// the same realization loop as MeasureDOS, returning the averaged
// flattened tensor of the plan.
func (r *Runner[T]) MeasureGamma(ctx context.Context, plan moments.GammaPlan) ([]T, error) {
	size := plan.Size()
	if len(plan.Moments) == 0 || len(plan.Axes) != len(plan.Moments) {
		return nil, moments.ErrPlan
	}
	runCtx, err := kpm.NewContext[T](r.cfg.Options())
	if err != nil {
		return nil, err
	}
	domains, err := r.buildDomains(runCtx)
	if err != nil {
		return nil, err
	}
	shared, err := moments.NewAccumulator[T](size)
	if err != nil {
		return nil, err
	}
	avg, _ := moments.NewAccumulator[T](size)

	r.log.Info("gamma measurement started",
		zap.String("run_id", r.runID),
		zap.Ints("moments", plan.Moments),
		zap.Ints("axes", plan.Axes))
	start := time.Now()

	flag := &stopFlag{}
	g, gctx := errgroup.WithContext(ctx)
	for w := range domains {
		dom := domains[w]
		worker := w
		g.Go(func() error {
			return r.gammaWorker(gctx, runCtx, dom, worker, plan, shared, avg, flag)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.log.Info("gamma measurement finished",
		zap.String("run_id", r.runID),
		zap.Int("realizations", avg.Count()),
		zap.Duration("elapsed", time.Since(start)))
	return avg.Moments(), nil
}

func (r *Runner[T]) gammaWorker(ctx context.Context, runCtx *kpm.Context[T], dom domain[T], w int,
	plan moments.GammaPlan, shared, avg *moments.Accumulator[T], flag *stopFlag) error {

	psi, err := kpm.NewVector[T](dom.geom, 1)
	if err != nil {
		return err
	}
	est := make([]T, plan.Size())

	for d := 0; d < r.cfg.NumDisorder; d++ {
		dom.tbl.Realize(kpm.NewSiteSource(r.disorderSeed(d)).Uniform)
		for v := 0; v < r.cfg.NumRandom; v++ {
			src := kpm.NewSiteSource(r.vectorSeed(d, v))
			dom.eng.Initiate(psi, src)
			dom.eng.Exchange(psi)

			if err := moments.Gamma(dom.eng, psi, plan, est); err != nil {
				return err
			}

			runCtx.Locked(func() {
				_ = shared.Sum(est)
			})
			runCtx.Coordinated(w, func() {
				_ = avg.Update(shared.Moments())
				shared.Reset()
				flag.stop = ctx.Err() != nil
			})
			if flag.stop {
				return ctx.Err()
			}
		}
	}
	return nil
}
