package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chebtile",
		Short:         "Domain-decomposed KPM spectral computations",
		Long:          "chebtile runs Kernel Polynomial Method measurements (density of states,\nmulti-operator moment tensors) over tight-binding lattices decomposed\nacross a fixed worker grid.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newRunCmd())
	return cmd
}
