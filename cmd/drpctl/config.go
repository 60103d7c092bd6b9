// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/drplabs/hashgraph/internal/config"
)

// bindConfigFlags registers the persistent flags every subcommand reads
// its engine config from and wires them through viper, so either a flag,
// an environment variable (DRPCTL_*), or a --config file can set them,
// following the precedence cobra+viper CLIs in the pack establish.
func bindConfigFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "path to a YAML config file")
	flags.Int("max-subgraph-size", 0, "cap on vertices walked per linearization (0 = built-in default)")
	flags.Duration("clock-skew-tolerance", 0, "allowed future-timestamp skew (0 = built-in default)")
	flags.String("log-level", "info", "zap log level: debug, info, warn, error")

	v.BindPFlag("max-subgraph-size", flags.Lookup("max-subgraph-size"))
	v.BindPFlag("clock-skew-tolerance", flags.Lookup("clock-skew-tolerance"))
	v.BindPFlag("log-level", flags.Lookup("log-level"))
	v.SetEnvPrefix("drpctl")
	v.AutomaticEnv()
}

// loadConfig resolves the --config file (if any) through viper and
// overlays it onto the engine's default configuration.
func loadConfig(v *viper.Viper, cmd *cobra.Command) (config.Config, string, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, "", fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if n := v.GetInt("max-subgraph-size"); n > 0 {
		cfg.MaxSubgraphSize = n
	}
	if d := v.GetDuration("clock-skew-tolerance"); d > 0 {
		cfg.ClockSkewTolerance = d
	}
	if err := cfg.Validate(); err != nil {
		return cfg, "", fmt.Errorf("invalid configuration: %w", err)
	}

	level := v.GetString("log-level")
	if level == "" {
		level = "info"
	}
	return cfg, level, nil
}
