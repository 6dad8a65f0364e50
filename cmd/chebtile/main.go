// Command chebtile runs KPM measurements over a domain-decomposed
// tight-binding lattice described by a YAML configuration file and
// writes the reconstructed spectrum as JSON.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
