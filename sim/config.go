package sim

import (
	"github.com/katalvlaran/chebtile/lattice"
	"github.com/katalvlaran/chebtile/operator"
)

// Config bundles the run parameters. Lattice-geometric fields are
// re-validated by lattice.NewGeometry at construction; Validate only
// checks what is sim's own concern.
type Config struct {
	// Sizes lists the global lattice size per axis.
	Sizes []int `mapstructure:"sizes"`
	// WorkerGrid lists the domain count per axis.
	WorkerGrid []int `mapstructure:"worker_grid"`
	// Orbitals is the orbital count per site.
	Orbitals int `mapstructure:"orbitals"`
	// Ghost is the halo width; it must cover the model's hopping range.
	Ghost int `mapstructure:"ghost"`
	// Tile is the cache-blocking tile stride.
	Tile int `mapstructure:"tile"`
	// NumMoments is the Chebyshev expansion order.
	NumMoments int `mapstructure:"num_moments"`
	// NumRandom is the number of random vectors per disorder realization.
	NumRandom int `mapstructure:"num_random"`
	// NumDisorder is the number of disorder realizations.
	NumDisorder int `mapstructure:"num_disorder"`
	// Seed derives every random stream of the run; equal seeds give
	// bit-identical results for any worker grid of the same lattice.
	Seed uint64 `mapstructure:"seed"`
}

// Validate checks the sim-level parameters.
func (c Config) Validate() error {
	if c.NumMoments < 2 {
		return ErrMoments
	}
	if c.NumRandom < 1 || c.NumDisorder < 1 {
		return ErrRealizations
	}
	return nil
}

// Options derives the lattice options shared by every worker.
func (c Config) Options() lattice.Options {
	return lattice.Options{
		GlobalSizes: c.Sizes,
		WorkerGrid:  c.WorkerGrid,
		Orbitals:    c.Orbitals,
		Ghost:       c.Ghost,
		Tile:        c.Tile,
	}
}

// HoppingSpec is the file-format form of one stencil term; Amp and
// ImagAmp split the complex amplitude into two plain floats.
type HoppingSpec struct {
	Orbital int     `mapstructure:"orbital"`
	To      int     `mapstructure:"to"`
	Offset  []int   `mapstructure:"offset"`
	Amp     float64 `mapstructure:"amp"`
	ImagAmp float64 `mapstructure:"imag_amp"`
}

// VacancySpec names one removed cell.
type VacancySpec struct {
	Coord []int `mapstructure:"coord"`
	Orb   int   `mapstructure:"orb"`
}

// ModelSpec is the file-format form of an operator.Model, restricted to
// what a flat config file can express; structural defects stay an
// API-level feature.
type ModelSpec struct {
	Hoppings      []HoppingSpec `mapstructure:"hoppings"`
	OnSite        []float64     `mapstructure:"on_site"`
	AndersonWidth []float64     `mapstructure:"anderson_width"`
	Vacancies     []VacancySpec `mapstructure:"vacancies"`
	// GaugeB is the Landau-gauge field strength, the single nonzero
	// vector-potential entry A[0][1]; zero disables the field.
	GaugeB float64 `mapstructure:"gauge_b"`
	ScaleA float64 `mapstructure:"scale_a"`
	ScaleB float64 `mapstructure:"scale_b"`
}

// Complex reports whether the spec requires the complex state type.
func (s ModelSpec) Complex() bool {
	if s.GaugeB != 0 {
		return true
	}
	for _, h := range s.Hoppings {
		if h.ImagAmp != 0 {
			return true
		}
	}
	return false
}

// Model builds the operator model for a lattice of the given dimension.
func (s ModelSpec) Model(dim int) *operator.Model {
	m := &operator.Model{
		Dim:           dim,
		AndersonWidth: s.AndersonWidth,
		ScaleA:        s.ScaleA,
		ScaleB:        s.ScaleB,
	}
	for _, h := range s.Hoppings {
		m.Stencil = append(m.Stencil, operator.Hopping{
			Orbital: h.Orbital,
			To:      h.To,
			Offset:  h.Offset,
			Amp:     complex(h.Amp, h.ImagAmp),
		})
	}
	for _, e := range s.OnSite {
		m.OnSite = append(m.OnSite, complex(e, 0))
	}
	for _, v := range s.Vacancies {
		m.Vacancies = append(m.Vacancies, operator.Site{Coord: v.Coord, Orb: v.Orb})
	}
	if s.GaugeB != 0 {
		m.Gauge = [][]float64{{0, s.GaugeB}, {0, 0}}
	}
	return m
}
