package sim

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/katalvlaran/chebtile/kpm"
	"github.com/katalvlaran/chebtile/lattice"
	"github.com/katalvlaran/chebtile/operator"
)

// Runner owns one measurement run over a fixed model and configuration.
type Runner[T operator.Scalar] struct {
	cfg   Config
	model *operator.Model
	log   *zap.Logger
	runID string
}

// NewRunner validates the configuration and tags the run with a fresh
// uuid. A nil logger disables logging.
func NewRunner[T operator.Scalar](cfg Config, m *operator.Model, log *zap.Logger) (*Runner[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner[T]{
		cfg:   cfg,
		model: m,
		log:   log,
		runID: uuid.NewString(),
	}, nil
}

// RunID returns the run's uuid tag.
func (r *Runner[T]) RunID() string { return r.runID }

// domain is one worker's fully constructed compute state.
type domain[T operator.Scalar] struct {
	geom *lattice.Geometry
	tbl  *operator.Table[T]
	eng  *kpm.Engine[T]
}

// buildDomains constructs geometry, table and engine for every worker
// sequentially, so configuration errors surface here instead of
// stranding a partially started pool at a barrier.
func (r *Runner[T]) buildDomains(runCtx *kpm.Context[T]) ([]domain[T], error) {
	opt := r.cfg.Options()
	domains := make([]domain[T], opt.Workers())
	for w := range domains {
		geom, err := lattice.NewGeometry(opt, w)
		if err != nil {
			return nil, err
		}
		tbl, err := operator.NewTable[T](r.model, geom)
		if err != nil {
			return nil, err
		}
		eng, err := kpm.NewEngine(tbl, runCtx)
		if err != nil {
			return nil, err
		}
		domains[w] = domain[T]{geom: geom, tbl: tbl, eng: eng}
	}
	return domains, nil
}

// disorderSeed derives the disorder stream of one realization.
func (r *Runner[T]) disorderSeed(d int) uint64 {
	return r.cfg.Seed ^ 0xd1f0e2b5c3a49786 ^ uint64(d)<<1
}

// vectorSeed derives the random-vector stream of one (disorder, vector)
// pair. Both streams are worker-independent, which is what makes the
// whole run invariant under re-decomposition.
func (r *Runner[T]) vectorSeed(d, v int) uint64 {
	return r.cfg.Seed ^ 0x5bf03e9d71c86a24 ^ uint64(d*r.cfg.NumRandom+v)<<1
}
