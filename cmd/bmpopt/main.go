// Command bmpopt runs the BMP-selection multi-objective optimization
// engine: it loads a watershed scenario, runs the PSO and ε-constraint
// drivers, and writes the resulting Pareto front.
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
