package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/katalvlaran/chebtile/moments"
	"github.com/katalvlaran/chebtile/operator"
	"github.com/katalvlaran/chebtile/sim"
)

// fileConfig is the on-disk run description.
type fileConfig struct {
	Run   sim.Config    `mapstructure:"run"`
	Model sim.ModelSpec `mapstructure:"model"`
	// EnergyPoints sizes the reconstruction grid; 0 skips reconstruction
	// and reports raw moments only.
	EnergyPoints int `mapstructure:"energy_points"`
	// Lambda selects the Lorentz kernel when positive; Jackson otherwise.
	Lambda float64 `mapstructure:"lambda"`
}

// report is the JSON output of a run.
type report struct {
	RunID    string    `json:"run_id"`
	Moments  []float64 `json:"moments"`
	Energies []float64 `json:"energies,omitempty"`
	DOS      []float64 `json:"dos,omitempty"`
}

func newRunCmd() *cobra.Command {
	var cfgPath, outPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a density-of-states measurement",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			v.SetConfigFile(cfgPath)
			if err := v.ReadInConfig(); err != nil {
				return err
			}
			var fc fileConfig
			if err := v.Unmarshal(&fc); err != nil {
				return err
			}

			log, err := buildLogger(verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var rep *report
			if fc.Model.Complex() {
				rep, err = measure[complex128](ctx, fc, log)
			} else {
				rep, err = measure[float64](ctx, fc, log)
			}
			if err != nil {
				return err
			}
			return writeReport(outPath, rep)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "chebtile.yaml", "run configuration file")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "per-realization debug logging")
	return cmd
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// measure drives the run with the state type the model requires.
func measure[T operator.Scalar](ctx context.Context, fc fileConfig, log *zap.Logger) (*report, error) {
	model := fc.Model.Model(len(fc.Run.Sizes))
	runner, err := sim.NewRunner[T](fc.Run, model, log)
	if err != nil {
		return nil, err
	}
	mu, err := runner.MeasureDOS(ctx)
	if err != nil {
		return nil, err
	}

	rep := &report{RunID: runner.RunID(), Moments: moments.RealParts(mu)}
	if fc.EnergyPoints < 2 {
		return rep, nil
	}

	kernel := moments.Kernel(moments.Jackson)
	if fc.Lambda > 0 {
		kernel = moments.Lorentz(fc.Lambda)
	}
	grid := energyGrid(fc.EnergyPoints)
	rho, err := moments.DOS(rep.Moments, kernel, grid)
	if err != nil {
		return nil, err
	}
	a := fc.Model.ScaleA
	if a == 0 {
		a = 1
	}
	rep.Energies = make([]float64, len(grid))
	for i, x := range grid {
		rep.Energies[i] = a*x + fc.Model.ScaleB
	}
	rep.DOS = rho
	return rep, nil
}

// energyGrid spans the rescaled spectrum, clipped away from the band
// edges where the 1/√(1−x²) weight diverges.
func energyGrid(points int) []float64 {
	const cut = 0.99
	grid := make([]float64, points)
	for i := range grid {
		grid[i] = -cut + 2*cut*float64(i)/float64(points-1)
	}
	return grid
}

func writeReport(path string, rep *report) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
