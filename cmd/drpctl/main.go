// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Command drpctl is a thin driver over the hashgraph engine, grounded on
// cmd/avalanche's signal-aware node entrypoint and generalized to cobra
// subcommands the way luxfi-consensus/cmd/consensus organizes its tools.
// It exercises the public object.Engine surface end to end: constructing
// an engine, applying local operations against the built-in counter
// fixture, and merging an externally-described vertex batch.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	v := viper.New()
	root := &cobra.Command{
		Use:   "drpctl",
		Short: "Drive a DRP hash-graph engine from the command line",
		Long: `drpctl constructs a hashgraph object engine and exercises it directly:
applying local operations against the built-in counter DRP, and merging a
vertex batch read from a file to demonstrate validation, conflict
resolution, and finality bookkeeping.`,
	}
	bindConfigFlags(root, v)
	root.AddCommand(applyCmd(v), mergeCmd(v))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
