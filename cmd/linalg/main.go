// Package main provides the linalg command line tool: Matrix Market
// inspection, sparse products, conversions and transposes on a selectable
// executor.
package main

import (
	"fmt"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
