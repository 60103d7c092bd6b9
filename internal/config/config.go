// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines the engine-wide tunables, loaded by cmd/drpctl
// via viper and validated with go-playground/validator/v10 struct tags,
// in the style of a typical JSON-tagged settings struct.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Config carries engine-wide safety bounds that are not part of the core
// algorithm but that a production embedder needs to tune.
type Config struct {
	// MaxSubgraphSize bounds the number of vertices a single LCA subgraph
	// walk may populate, guarding against a pathological merge batch
	// forcing an unbounded backward traversal.
	MaxSubgraphSize int `json:"maxSubgraphSize" mapstructure:"maxSubgraphSize" validate:"gt=0"`

	// ClockSkewTolerance is how far into the future a vertex's timestamp
	// may sit relative to wall-clock-now at admission before validation
	// rejects it, absorbing ordinary clock drift between peers.
	ClockSkewTolerance time.Duration `json:"clockSkewTolerance" mapstructure:"clockSkewTolerance" validate:"gte=0"`
}

// Default returns the configuration used when an embedder supplies none.
func Default() Config {
	return Config{
		MaxSubgraphSize:    100_000,
		ClockSkewTolerance: 5 * time.Second,
	}
}

var validate = validator.New()

// Validate checks c's struct tags, returning a validator.ValidationErrors
// on failure.
func (c Config) Validate() error {
	return validate.Struct(c)
}
