// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package testutil provides fixture DRPs used only by this module's own
// tests, grounded on luxfi-consensus/consensustest's Decidable fixture
// pattern. Specific DRPs are out of scope for the engine itself, so
// nothing here is part of the public engine surface.
package testutil

import (
	"fmt"

	"github.com/drplabs/hashgraph/internal/drp"
)

// Counter is a MULTIPLE-semantics DRP: concurrent increments always
// commute, so its resolver accepts every operation in the concurrent set
// unchanged.
type Counter struct {
	Value int
}

func (c *Counter) Semantics() drp.Semantics { return drp.Multiple }

func (c *Counter) ResolveConflicts(ops []drp.Operation) ([]drp.Operation, error) {
	return ops, nil
}

func (c *Counter) Operations() map[string]drp.OpDescriptor {
	return map[string]drp.OpDescriptor{
		"increment": {
			Name:     "increment",
			Mutating: true,
			Invoke: func(d drp.Object, args []any) (any, error) {
				self, ok := d.(*Counter)
				if !ok {
					return nil, fmt.Errorf("counter: Invoke called against %T", d)
				}
				if len(args) != 1 {
					return nil, fmt.Errorf("counter: increment wants 1 arg, got %d", len(args))
				}
				n, ok := args[0].(int)
				if !ok {
					return nil, fmt.Errorf("counter: increment wants an int arg")
				}
				self.Value += n
				return self.Value, nil
			},
		},
		"query_read": {
			Name:     "query_read",
			Mutating: false,
			Invoke: func(d drp.Object, _ []any) (any, error) {
				self, ok := d.(*Counter)
				if !ok {
					return nil, fmt.Errorf("counter: Invoke called against %T", d)
				}
				return self.Value, nil
			},
		},
	}
}

func (c *Counter) Clone() drp.Object { return &Counter{Value: c.Value} }

func (c *Counter) Attributes() map[string]any {
	return map[string]any{"value": c.Value}
}

func (c *Counter) LoadAttributes(attrs map[string]any) error {
	v, ok := attrs["value"]
	if !ok {
		c.Value = 0
		return nil
	}
	n, ok := v.(int)
	if !ok {
		return fmt.Errorf("counter: attribute \"value\" is %T, want int", v)
	}
	c.Value = n
	return nil
}
